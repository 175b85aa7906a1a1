package configure

import (
	"encoding/json"
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench/topology"
)

// Authority the addresses of a single authority.
type Authority struct {
	Primary string   `json:"primary"`
	Workers []string `json:"workers"`
}

// Committee the authorities of a run keyed by node id.
type Committee struct {
	Authorities map[string]Authority `json:"authorities"`
}

// NewCommittee assigns ports to every authority of the topology. primaries listen on
// base+i, workers are allocated after every primary port.
func NewCommittee(t topology.Topology, workers, base int) Committee {
	nodes := t.Nodes()
	c := Committee{Authorities: make(map[string]Authority, len(nodes))}

	for i, primary := range nodes {
		hosts := make([]string, 0, workers)
		switch t.Kind() {
		case topology.Separated:
			hosts = append(hosts, t.Groups()[i][1:]...)
		default:
			for j := 0; j < workers; j++ {
				hosts = append(hosts, primary)
			}
		}

		a := Authority{
			Primary: net.JoinHostPort(primary, strconv.Itoa(base+i)),
			Workers: make([]string, 0, len(hosts)),
		}

		for j, h := range hosts {
			port := base + len(nodes) + i*len(hosts) + j
			a.Workers = append(a.Workers, net.JoinHostPort(h, strconv.Itoa(port)))
		}

		c.Authorities[strconv.Itoa(i)] = a
	}

	return c
}

// Size number of authorities.
func (t Committee) Size() int {
	return len(t.Authorities)
}

// Primaries primary addresses in node id order.
func (t Committee) Primaries() []string {
	addresses := make([]string, 0, len(t.Authorities))
	for i := 0; i < len(t.Authorities); i++ {
		addresses = append(addresses, t.Authorities[strconv.Itoa(i)].Primary)
	}
	return addresses
}

func writeJSON(path string, v interface{}) (err error) {
	var (
		encoded []byte
	)

	if encoded, err = json.MarshalIndent(v, "", "  "); err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}

	return errors.Wrapf(os.WriteFile(path, encoded, 0644), "failed to write %s", path)
}
