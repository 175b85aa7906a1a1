// Package configure generates the configuration of a run on the local machine and
// distributes it to the selected hosts.
package configure

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/archive"
	"github.com/james-lawrence/rbcbench/commands"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/systemx"
	"github.com/james-lawrence/rbcbench/remote"
	"github.com/james-lawrence/rbcbench/shell"
	"github.com/james-lawrence/rbcbench/topology"
)

// Local executes commands on the local machine.
type Local interface {
	Execute(ctx context.Context, cmds ...shell.Exec) error
}

// Remote executes commands and transfers files to hosts.
type Remote interface {
	Group(ctx context.Context, hosts []string, cmd string, options ...remote.GroupOption) error
	Push(ctx context.Context, host string, paths ...string) error
}

// Option customize the distributor.
type Option func(*Distributor)

// OptionDir the local working directory, generated files are written here.
func OptionDir(dir string) Option {
	return func(d *Distributor) {
		d.dir = dir
	}
}

// New distributor.
func New(s fleet.Settings, l Local, r Remote, options ...Option) Distributor {
	d := Distributor{
		settings: s,
		local:    l,
		remote:   r,
		dir:      ".",
	}

	for _, opt := range options {
		opt(&d)
	}

	return d
}

// Distributor generates and distributes run configuration.
type Distributor struct {
	settings fleet.Settings
	local    Local
	remote   Remote
	dir      string
}

func (t Distributor) path(name string) string {
	return filepath.Join(t.dir, name)
}

// Configure generates the configuration for the topology and pushes it to every
// non faulty authority.
func (t Distributor) Configure(ctx context.Context, topo topology.Topology, run rbcbench.RunSettings, params rbcbench.NodeParameters) (c Committee, err error) {
	if c, err = t.Generate(ctx, topo, run, params); err != nil {
		return c, err
	}

	return c, t.Distribute(ctx, topo.Nodes(), run.Faults)
}

// Generate the configuration files of the run within the local working directory.
func (t Distributor) Generate(ctx context.Context, topo topology.Topology, run rbcbench.RunSettings, params rbcbench.NodeParameters) (c Committee, err error) {
	nodes := topo.Nodes()
	if len(nodes) == 0 {
		return c, errors.New("unable to configure an empty topology")
	}

	log.Println("generating configuration files for", len(nodes), "node(s)")

	if err = t.local.Execute(ctx, shell.Lenient(commands.Cleanup())); err != nil {
		return c, err
	}

	if t.settings.LocalCompile {
		if err = t.Prepare(ctx); err != nil {
			return c, err
		}
	}

	gencmd := commands.GenerateConfigFiles(t.settings.BasePort, t.settings.ClientBasePort, t.settings.ClientRunPort, len(nodes))
	if err = t.local.Execute(ctx, shell.Strict(gencmd)); err != nil {
		return c, errors.Wrap(err, "failed to generate configuration files")
	}

	if err = WriteAddressBooks(t.dir, nodes, t.settings.BasePort, t.settings.ClientBasePort, t.settings.ClientRunPort); err != nil {
		return c, err
	}

	c = NewCommittee(topo, run.Workers, t.settings.BasePort)
	if err = writeJSON(t.path(rbcbench.CommitteeFile), c); err != nil {
		return c, err
	}

	if err = writeJSON(t.path(rbcbench.ParametersFile), params); err != nil {
		return c, err
	}

	return c, t.ensureKeys()
}

// Prepare recompiles the protocol locally and links the binaries into the working directory.
func (t Distributor) Prepare(ctx context.Context) error {
	err := t.local.Execute(
		ctx,
		shell.Strict(commands.Compile()).InDir(t.settings.NodeCrate),
		shell.Lenient(commands.AliasBinaries(t.settings.LocalBinaries)),
	)

	return errors.Wrap(err, "failed to compile")
}

// pack the keys directory when the bundle is missing.
func (t Distributor) ensureKeys() error {
	bundle := t.path(t.settings.Bundles.Keys)
	if systemx.FileExists(bundle) {
		return nil
	}

	dir := t.path(t.settings.Bundles.KeysDir)
	if !systemx.DirExists(dir) {
		log.Println("keys bundle is missing and no keys directory is available", bundle)
		return nil
	}

	log.Println("packing keys", dir, "->", bundle)
	return archive.Bundle(bundle, dir)
}

// Distribute pushes the generated configuration to every node except the last faults,
// one host at a time. the first node also receives the syncer address book.
func (t Distributor) Distribute(ctx context.Context, nodes []string, faults int) (err error) {
	if faults < 0 || faults > len(nodes) {
		return rbcbench.Configuration(errors.Errorf("invalid number of faults %d for %d node(s)", faults, len(nodes)))
	}

	healthy := nodes[:len(nodes)-faults]
	for i, host := range healthy {
		log.Printf("uploading configuration %d/%d: %s\n", i+1, len(healthy), host)

		if err = t.remote.Group(ctx, []string{host}, commands.Lenient(commands.Cleanup()), remote.GroupOptionIgnoreStderr); err != nil {
			return errors.Wrapf(err, "failed to clean %s", host)
		}

		paths := make([]string, 0, 5)
		if i == 0 {
			paths = append(paths, t.path(rbcbench.SyncerFile))
		}

		paths = append(
			paths,
			t.path(rbcbench.KeyFile(i)),
			t.path(t.settings.Bundles.Keys),
			t.path(t.settings.Bundles.Testdata),
			t.path(rbcbench.IPFile),
		)

		if err = t.remote.Push(ctx, host, paths...); err != nil {
			return err
		}
	}

	return nil
}

// AddressBook the ip_file contents, one address per node followed by the client
// endpoint on the first node.
func AddressBook(nodes []string, base, clientRun int) string {
	b := strings.Builder{}
	for i, n := range nodes {
		fmt.Fprintf(&b, "%s:%d\n", n, base+i)
	}

	if len(nodes) > 0 {
		fmt.Fprintf(&b, "%s:%d\n", nodes[0], clientRun)
	}

	return b.String()
}

// SyncerBook the syncer contents, one address per node.
func SyncerBook(nodes []string, clientBase int) string {
	b := strings.Builder{}
	for i, n := range nodes {
		fmt.Fprintf(&b, "%s:%d\n", n, clientBase+i)
	}
	return b.String()
}

// WriteAddressBooks writes the ip_file and syncer files into dir.
func WriteAddressBooks(dir string, nodes []string, base, clientBase, clientRun int) (err error) {
	ipfile := filepath.Join(dir, rbcbench.IPFile)
	if err = os.WriteFile(ipfile, []byte(AddressBook(nodes, base, clientRun)), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", ipfile)
	}

	syncer := filepath.Join(dir, rbcbench.SyncerFile)
	if err = os.WriteFile(syncer, []byte(SyncerBook(nodes, clientBase)), 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", syncer)
	}

	return nil
}
