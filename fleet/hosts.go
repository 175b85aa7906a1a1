package fleet

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Region a group of hosts sharing a data center.
type Region struct {
	Name      string   `yaml:"region"`
	Addresses []string `yaml:"addresses"`
}

// Hosts grouped by region, regions keep their declared order.
type Hosts []Region

// Regions returns the region names in order.
func (t Hosts) Regions() []string {
	names := make([]string, 0, len(t))
	for _, r := range t {
		names = append(names, r.Name)
	}
	return names
}

// Total number of hosts across every region.
func (t Hosts) Total() (n int) {
	for _, r := range t {
		n += len(r.Addresses)
	}
	return n
}

// Flatten the hosts into a single list, region by region.
func (t Hosts) Flatten() []string {
	flat := make([]string, 0, t.Total())
	for _, r := range t {
		flat = append(flat, r.Addresses...)
	}
	return flat
}

// Add appends the address to the named region, creating the region if necessary.
func (t Hosts) Add(region string, addresses ...string) Hosts {
	for idx := range t {
		if t[idx].Name == region {
			t[idx].Addresses = append(t[idx].Addresses, addresses...)
			return t
		}
	}

	return append(t, Region{Name: region, Addresses: addresses})
}

// Static hosts provided directly by the settings.
type Static Hosts

// Hosts implements Provider.
func (t Static) Hosts(ctx context.Context) (Hosts, error) {
	return Hosts(t), nil
}

// File a yaml snapshot of the hosts.
type File struct {
	Path string
}

// Hosts - reads hosts from a file.
func (t File) Hosts(ctx context.Context) (results Hosts, err error) {
	var (
		data []byte
	)

	if data, err = os.ReadFile(t.Path); err != nil {
		return results, errors.Wrapf(err, "failed to read hosts from file: %s", t.Path)
	}

	err = errors.Wrap(yaml.Unmarshal(data, &results), "failed to load hosts from file")
	return results, err
}

// Snapshot - writes hosts to a file.
func (t File) Snapshot(hosts Hosts) error {
	var (
		err  error
		data []byte
	)

	if data, err = yaml.Marshal(hosts); err != nil {
		return errors.Wrap(err, "failed to marshal hosts")
	}

	if err = os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return errors.Wrapf(err, "failed to create directory: %s", filepath.Dir(t.Path))
	}

	return errors.Wrapf(os.WriteFile(t.Path, data, 0600), "failed to write file: %s", t.Path)
}
