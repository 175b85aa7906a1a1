// Package latency parses the latency reports emitted by the syncer and aggregates them
// by payload size.
package latency

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	record  = regexp.MustCompile(`ID (\d+)\s+\|\s+(?:(\d+)\s+bytes\s+\|\s+)?([\d.]+)\s+\|\s+\d+ latencies`)
	average = regexp.MustCompile(`^(\d+) bytes: ([\d.]+) ms`)
)

// Record the latency of a single message.
type Record struct {
	ID      int
	Bytes   int
	Latency float64 // milliseconds
}

// Stat aggregated latency of a payload size.
type Stat struct {
	Bytes int
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Parse every latency record within the reader, lines that are not records are ignored.
// records without a bytes column derive their size from the slot of the message id.
func Parse(r io.Reader) (records []Record, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		for _, m := range record.FindAllStringSubmatch(scanner.Text(), -1) {
			var (
				rec Record
			)

			if rec.ID, err = strconv.Atoi(m[1]); err != nil {
				continue
			}

			if m[2] == "" {
				var ok bool
				if rec.Bytes, ok = SlotSize(rec.ID); !ok {
					continue
				}
			} else if rec.Bytes, err = strconv.Atoi(m[2]); err != nil {
				continue
			}

			if rec.Latency, err = strconv.ParseFloat(m[3], 64); err != nil {
				continue
			}

			records = append(records, rec)
		}
	}

	return records, errors.Wrap(scanner.Err(), "failed to read latency records")
}

// Aggregate the records by payload size, ordered by ascending size.
func Aggregate(records []Record) []Stat {
	grouped := make(map[int][]float64, 8)
	for _, r := range records {
		grouped[r.Bytes] = append(grouped[r.Bytes], r.Latency)
	}

	return summarize(grouped)
}

func summarize(grouped map[int][]float64) []Stat {
	stats := make([]Stat, 0, len(grouped))
	for size, latencies := range grouped {
		s := Stat{Bytes: size, Count: len(latencies), Min: math.Inf(1), Max: math.Inf(-1)}
		total := 0.0
		for _, l := range latencies {
			total += l
			s.Min = math.Min(s.Min, l)
			s.Max = math.Max(s.Max, l)
		}
		s.Mean = total / float64(len(latencies))
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Bytes < stats[j].Bytes
	})

	return stats
}

// Sizes messages per node, each node broadcasts one message of each size.
const Sizes = 6

// Missing message ids without a record. node i broadcasts ids i*10000+1 through i*10000+Sizes.
func Missing(nodes int, records []Record) (missing []int) {
	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		seen[r.ID] = struct{}{}
	}

	for i := 0; i < nodes; i++ {
		for j := 1; j <= Sizes; j++ {
			id := i*10000 + j
			if _, ok := seen[id]; !ok {
				missing = append(missing, id)
			}
		}
	}

	return missing
}

// SlotSize the payload size of the message id, derived from its slot digit.
func SlotSize(id int) (int, bool) {
	switch id % 10 {
	case 1:
		return 256, true
	case 2:
		return 1024, true
	case 3:
		return 4096, true
	case 4:
		return 16384, true
	case 5:
		return 65536, true
	case 6:
		return 131072, true
	default:
		return 0, false
	}
}

// WriteSummary writes the tabular summary of the stats, rich summaries include the
// minimum and maximum latency.
func WriteSummary(w io.Writer, stats []Stat, rich bool) (err error) {
	header := "Message Size (bytes) | Avg Time (ms) | Count"
	if rich {
		header = "Message Size (bytes) | Avg Time (ms) | Min (ms) | Max (ms) | Count"
	}

	if _, err = fmt.Fprintf(w, "%s\n%s\n", header, strings.Repeat("-", len(header))); err != nil {
		return errors.WithStack(err)
	}

	for _, s := range stats {
		if rich {
			_, err = fmt.Fprintf(w, "%-21d %-14.3f %-9.3f %-9.3f %d\n", s.Bytes, s.Mean, s.Min, s.Max, s.Count)
		} else {
			_, err = fmt.Fprintf(w, "%-21d %-14.3f %d\n", s.Bytes, s.Mean, s.Count)
		}

		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// WriteAverages writes one `<bytes> bytes: <mean> ms` line per stat, the format
// consumed by ParseAverages.
func WriteAverages(w io.Writer, stats []Stat) error {
	for _, s := range stats {
		if _, err := fmt.Fprintf(w, "%d bytes: %.3f ms\n", s.Bytes, s.Mean); err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

// ParseAverages reads the per size averages of previous reports, lines that are
// not averages are ignored.
func ParseAverages(r io.Reader) (stats []Stat, err error) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		var (
			s Stat
		)

		m := average.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}

		if s.Bytes, err = strconv.Atoi(m[1]); err != nil {
			continue
		}

		if s.Mean, err = strconv.ParseFloat(m[2], 64); err != nil {
			continue
		}

		s.Count, s.Min, s.Max = 1, s.Mean, s.Mean
		stats = append(stats, s)
	}

	return stats, errors.Wrap(scanner.Err(), "failed to read averages")
}

// Combine the averages of multiple reports, count is the number of reports per size.
func Combine(reports ...[]Stat) []Stat {
	grouped := make(map[int][]float64, 8)
	for _, report := range reports {
		for _, s := range report {
			grouped[s.Bytes] = append(grouped[s.Bytes], s.Mean)
		}
	}

	return summarize(grouped)
}
