// Package topology selects the machines that host each authority of a run.
package topology

import (
	"fmt"

	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/stringsx"
)

// Kind of topology.
type Kind int

// Kind values.
const (
	Insufficient Kind = iota
	Collocated
	Separated
)

func (t Kind) String() string {
	switch t {
	case Collocated:
		return "collocated"
	case Separated:
		return "separated"
	default:
		return "insufficient"
	}
}

// Policy for placing an authority's primary and workers.
type Policy int

// Policy values.
const (
	// PolicyCollocate places the primary and its workers on the same machine.
	PolicyCollocate Policy = iota
	// PolicySeparate places the primary and each worker on its own machine within a single region.
	PolicySeparate
)

// PolicyFromCollocate converts the collocate flag of the run settings.
func PolicyFromCollocate(collocate bool) Policy {
	if collocate {
		return PolicyCollocate
	}
	return PolicySeparate
}

// Topology the outcome of a selection. the zero value is Insufficient.
type Topology struct {
	kind   Kind
	hosts  []string
	groups [][]string
}

// Kind of the topology.
func (t Topology) Kind() Kind {
	return t.kind
}

// Hosts one host per authority, only populated for collocated topologies.
func (t Topology) Hosts() []string {
	return t.hosts
}

// Groups one group per authority, the first host of each group runs the primary.
// only populated for separated topologies.
func (t Topology) Groups() [][]string {
	return t.groups
}

// Nodes the address of each authority's primary in authority order.
func (t Topology) Nodes() []string {
	switch t.kind {
	case Collocated:
		return t.hosts
	case Separated:
		nodes := make([]string, 0, len(t.groups))
		for _, g := range t.groups {
			nodes = append(nodes, g[0])
		}
		return nodes
	default:
		return nil
	}
}

// Machines every distinct host in the topology.
func (t Topology) Machines() []string {
	switch t.kind {
	case Collocated:
		return stringsx.Dedup(t.hosts...)
	case Separated:
		flat := make([]string, 0, len(t.groups))
		for _, g := range t.groups {
			flat = append(flat, g...)
		}
		return stringsx.Dedup(flat...)
	default:
		return nil
	}
}

func (t Topology) String() string {
	switch t.kind {
	case Collocated:
		return fmt.Sprintf("%s %v", t.kind, t.hosts)
	case Separated:
		return fmt.Sprintf("%s %v", t.kind, t.groups)
	default:
		return t.kind.String()
	}
}

// Select the hosts for a run of nodes authorities with the given number of workers each.
// returns an Insufficient topology when the fleet lacks the capacity.
func Select(p Policy, nodes, workers int, hosts fleet.Hosts) Topology {
	if nodes <= 0 || workers < 0 {
		return Topology{}
	}

	switch p {
	case PolicyCollocate:
		return collocate(nodes, hosts)
	case PolicySeparate:
		return separate(nodes, workers, hosts)
	default:
		return Topology{}
	}
}

// spread the authorities across regions, one host from each region in turn.
func collocate(nodes int, hosts fleet.Hosts) Topology {
	if hosts.Total() < nodes {
		return Topology{}
	}

	selected := make([]string, 0, nodes)
	for round := 0; len(selected) < nodes; round++ {
		for _, r := range hosts {
			if round >= len(r.Addresses) {
				continue
			}

			selected = append(selected, r.Addresses[round])
			if len(selected) == nodes {
				break
			}
		}
	}

	return Topology{kind: Collocated, hosts: selected}
}

// each authority lives within its own region.
func separate(nodes, workers int, hosts fleet.Hosts) Topology {
	size := workers + 1
	if len(hosts) < nodes {
		return Topology{}
	}

	groups := make([][]string, 0, nodes)
	for _, r := range hosts[:nodes] {
		if len(r.Addresses) < size {
			return Topology{}
		}

		groups = append(groups, append([]string(nil), r.Addresses[:size]...))
	}

	return Topology{kind: Separated, groups: groups}
}

// NewCollocated build a collocated topology from an explicit host list.
func NewCollocated(hosts ...string) Topology {
	if len(hosts) == 0 {
		return Topology{}
	}
	return Topology{kind: Collocated, hosts: hosts}
}
