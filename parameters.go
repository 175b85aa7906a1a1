package rbcbench

import (
	"strings"

	"github.com/pkg/errors"
)

// RunSettings the parameters of a single benchmark run.
type RunSettings struct {
	Faults    int    `yaml:"faults"`
	Nodes     []int  `yaml:"nodes"`
	Workers   int    `yaml:"workers"`
	Collocate bool   `yaml:"collocate"`
	Rate      []int  `yaml:"rate"`
	TxSize    int    `yaml:"tx_size"`
	Duration  int    `yaml:"duration"`
	Runs      int    `yaml:"runs"`
	Protocol  string `yaml:"protocol"`
	BFile     string `yaml:"bfile"`
	Byzantine bool   `yaml:"byzantine"`
	Crash     bool   `yaml:"crash"`
}

// MaxNodes the number of nodes a run deploys.
func (t RunSettings) MaxNodes() (n int) {
	for _, x := range t.Nodes {
		if x > n {
			n = x
		}
	}

	return n
}

// Validate the run settings.
func (t RunSettings) Validate() error {
	if len(t.Nodes) == 0 {
		return Configuration(errors.New("missing number of nodes"))
	}

	for _, n := range t.Nodes {
		if n <= 0 {
			return Configuration(errors.Errorf("invalid number of nodes: %d", n))
		}

		if t.Faults >= n {
			return Configuration(errors.Errorf("faults (%d) must be smaller than the number of nodes (%d)", t.Faults, n))
		}
	}

	if t.Faults < 0 {
		return Configuration(errors.Errorf("invalid number of faults: %d", t.Faults))
	}

	if t.Workers < 0 {
		return Configuration(errors.Errorf("invalid number of workers: %d", t.Workers))
	}

	for _, r := range t.Rate {
		if r < 0 {
			return Configuration(errors.Errorf("invalid rate: %d", r))
		}
	}

	if t.TxSize <= 0 {
		return Configuration(errors.Errorf("invalid transaction size: %d", t.TxSize))
	}

	if t.Duration < 0 || t.Runs < 0 {
		return Configuration(errors.Errorf("invalid duration (%d) or runs (%d)", t.Duration, t.Runs))
	}

	if t.Protocol == "" {
		return Configuration(errors.New("missing protocol"))
	}

	if t.BFile == "" {
		return Configuration(errors.New("missing message size test vector file (bfile)"))
	}

	// both are interpolated into quoted tmux commands.
	if strings.ContainsAny(t.Protocol+t.BFile, "\"'`$ \t\n") {
		return Configuration(errors.Errorf("protocol (%s) and bfile (%s) must be plain words", t.Protocol, t.BFile))
	}

	return nil
}

// NodeParameters protocol parameters shared by every node.
type NodeParameters struct {
	HeaderSize     int `yaml:"header_size" json:"header_size"`
	MaxHeaderDelay int `yaml:"max_header_delay" json:"max_header_delay"`
	GCDepth        int `yaml:"gc_depth" json:"gc_depth"`
	SyncRetryDelay int `yaml:"sync_retry_delay" json:"sync_retry_delay"`
	SyncRetryNodes int `yaml:"sync_retry_nodes" json:"sync_retry_nodes"`
	BatchSize      int `yaml:"batch_size" json:"batch_size"`
	MaxBatchDelay  int `yaml:"max_batch_delay" json:"max_batch_delay"`
}

// Validate the node parameters.
func (t NodeParameters) Validate() error {
	values := []struct {
		name  string
		value int
	}{
		{"header_size", t.HeaderSize},
		{"max_header_delay", t.MaxHeaderDelay},
		{"gc_depth", t.GCDepth},
		{"sync_retry_delay", t.SyncRetryDelay},
		{"sync_retry_nodes", t.SyncRetryNodes},
		{"batch_size", t.BatchSize},
		{"max_batch_delay", t.MaxBatchDelay},
	}

	for _, v := range values {
		if v.value <= 0 {
			return Configuration(errors.Errorf("invalid node parameter %s: %d", v.name, v.value))
		}
	}

	return nil
}

// Parameters the content of a benchmark parameters file.
type Parameters struct {
	Bench RunSettings    `yaml:"bench"`
	Node  NodeParameters `yaml:"node"`
}

// Validate both the run settings and node parameters.
func (t Parameters) Validate() error {
	if err := t.Bench.Validate(); err != nil {
		return errors.Wrap(err, "invalid bench parameters")
	}

	return errors.Wrap(t.Node.Validate(), "invalid node parameters")
}

// ParametersOption overrides individual parameters.
type ParametersOption func(*Parameters)

// ParametersOptionProtocol sets the protocol to benchmark.
func ParametersOptionProtocol(p string) ParametersOption {
	return func(c *Parameters) {
		c.Bench.Protocol = p
	}
}

// ParametersOptionNodes sets the node counts.
func ParametersOptionNodes(n ...int) ParametersOption {
	return func(c *Parameters) {
		c.Bench.Nodes = n
	}
}

// ParametersOptionFaults sets the number of faulty nodes.
func ParametersOptionFaults(n int) ParametersOption {
	return func(c *Parameters) {
		c.Bench.Faults = n
	}
}

// NewParameters the default benchmark parameters with the options applied.
func NewParameters(options ...ParametersOption) Parameters {
	p := Parameters{
		Bench: RunSettings{
			Faults:    0,
			Nodes:     []int{16},
			Workers:   1,
			Collocate: true,
			Rate:      []int{10_000, 110_000},
			TxSize:    512,
			Duration:  300,
			Runs:      2,
			Protocol:  "addrbc",
			BFile:     "longer_test_msgs.txt",
		},
		Node: NodeParameters{
			HeaderSize:     1_000,
			MaxHeaderDelay: 200,
			GCDepth:        50,
			SyncRetryDelay: 10_000,
			SyncRetryNodes: 3,
			BatchSize:      500_000,
			MaxBatchDelay:  200,
		},
	}

	for _, opt := range options {
		opt(&p)
	}

	return p
}

// LoadParameters reads the parameters file at path on top of the defaults and validates the result.
func LoadParameters(path string, options ...ParametersOption) (p Parameters, err error) {
	p = NewParameters()
	if err = ExpandAndDecodeFile(path, &p); err != nil {
		return p, Configuration(err)
	}

	for _, opt := range options {
		opt(&p)
	}

	return p, p.Validate()
}
