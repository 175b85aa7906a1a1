package latency

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
)

// Table renders the stats for a terminal.
func Table(stats []Stat) (string, error) {
	data := pterm.TableData{
		{"Message Size (bytes)", "Avg Time (ms)", "Min (ms)", "Max (ms)", "Count"},
	}

	for _, s := range stats {
		data = append(data, []string{
			strconv.Itoa(s.Bytes),
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.Min),
			fmt.Sprintf("%.3f", s.Max),
			strconv.Itoa(s.Count),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
