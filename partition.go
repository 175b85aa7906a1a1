package rbcbench

import (
	"math"
)

// PartitionFromFloat64 generates a partitioner from a float value.
// rules:
// unbounded, every host at once: x == 0
// x percent of the hosts: 0 < x <= 1.0
// batch of floor(x) hosts: 1.0 < x < inf
func PartitionFromFloat64(p float64) Partitioner {
	switch {
	case p > 0 && p <= 1.0:
		return PercentPartitioner(p)
	case p > 1.0:
		return ConstantPartitioner(int(math.Floor(p)))
	default:
		return Unbounded{}
	}
}

// Partitioner determines how many hosts are contacted simultaneously
// based on the total number of hosts.
type Partitioner interface {
	Partition(length int) (size int)
}

// Unbounded contacts every host at once.
type Unbounded struct{}

// Partition implements Partitioner.
func (Unbounded) Partition(length int) int {
	return max(1, length)
}

// PercentPartitioner size is based on the percentage. has an upper bound of 1.0.
type PercentPartitioner float64

// Partition implements Partitioner.
func (t PercentPartitioner) Partition(length int) int {
	ratio := math.Min(float64(t), 1.0)
	return int(math.Max(math.Floor(float64(length)*ratio), 1.0))
}

// ConstantPartitioner partition will return the specified min(length, size).
type ConstantPartitioner int

// Partition implements Partitioner.
func (t ConstantPartitioner) Partition(length int) int {
	return max(1, min(length, int(t)))
}
