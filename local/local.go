// Package local runs a benchmark on the local machine, every node listens on the loopback
// interface and runs within its own tmux session.
package local

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/archive"
	"github.com/james-lawrence/rbcbench/commands"
	"github.com/james-lawrence/rbcbench/configure"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/systemx"
	"github.com/james-lawrence/rbcbench/shell"
)

// Ports used by local runs.
const (
	BasePort       = 9000
	ClientBasePort = 10000
	ClientRunPort  = 9500
	Address        = "127.0.0.1"
)

// Option customize the local benchmark.
type Option func(*Bench)

// OptionDir the working directory.
func OptionDir(dir string) Option {
	return func(b *Bench) {
		b.dir = dir
	}
}

// New local benchmark.
func New(s fleet.Settings, l configure.Local, p rbcbench.Parameters, options ...Option) Bench {
	b := Bench{
		settings:   s,
		local:      l,
		parameters: p,
		dir:        ".",
	}

	for _, opt := range options {
		opt(&b)
	}

	return b
}

// Bench runs the protocol on the local machine.
type Bench struct {
	settings   fleet.Settings
	local      configure.Local
	parameters rbcbench.Parameters
	dir        string
}

// Run kills any previous run, rebuilds the protocol, generates the configuration and launches
// the syncer followed by one primary per node. on failure every session is killed.
func (t Bench) Run(ctx context.Context) (err error) {
	if err = t.parameters.Validate(); err != nil {
		return err
	}

	if err = t.Kill(ctx); err != nil {
		return err
	}

	if err = t.run(ctx); err != nil {
		if kerr := t.Kill(ctx); kerr != nil {
			log.Println("failed to kill local sessions", kerr)
		}

		return errors.Wrap(err, "failed to run benchmark")
	}

	return nil
}

func (t Bench) run(ctx context.Context) (err error) {
	var (
		run   = t.parameters.Bench
		nodes = make([]string, run.MaxNodes())
	)

	for i := range nodes {
		nodes[i] = Address
	}

	log.Println("setting up local testbed with", len(nodes), "node(s)")

	err = t.local.Execute(
		ctx,
		shell.Lenient(commands.Sequence(commands.CleanLogs(), commands.Cleanup())),
		shell.Strict(commands.Compile()).InDir(t.settings.NodeCrate),
		shell.Lenient(commands.AliasBinaries(t.settings.LocalBinaries)),
	)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Join(t.dir, rbcbench.DefaultLogsDir), 0755); err != nil {
		return errors.WithStack(err)
	}

	if err = configure.WriteAddressBooks(t.dir, nodes, BasePort, ClientBasePort, ClientRunPort); err != nil {
		return err
	}

	if err = t.local.Execute(ctx, shell.Strict(commands.GenerateConfigFiles(BasePort, ClientBasePort, ClientRunPort, len(nodes)))); err != nil {
		return err
	}

	// the fleet extracts the staged bundle with tar before booting, do the same locally.
	if staged := filepath.Join(t.dir, t.settings.Bundles.Staged); systemx.FileExists(staged) {
		log.Println("extracting", staged)
		if err = archive.Extract(staged, t.dir); err != nil {
			return err
		}
	}

	launches := make([]shell.Exec, 0, len(nodes)+1)
	launches = append(launches, shell.Strict(commands.Background(
		commands.RunSyncer(rbcbench.KeyFile(0), t.settings.Bundles.Testdata, run.Byzantine),
		rbcbench.SyncerLogFile(),
	)))

	for i := range nodes {
		launches = append(launches, shell.Strict(commands.Background(
			commands.RunPrimary(rbcbench.KeyFile(i), run.Protocol, run.BFile, run.Byzantine, run.Crash),
			rbcbench.PrimaryLogFile(i),
		)))
	}

	return t.local.Execute(ctx, launches...)
}

// Kill every local session.
func (t Bench) Kill(ctx context.Context) error {
	return errors.Wrap(t.local.Execute(ctx, shell.Lenient(commands.Kill())), "failed to kill testbed")
}
