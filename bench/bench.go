// Package bench orchestrates benchmark runs across the fleet. every phase completes on
// every host before the next phase starts.
package bench

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/commands"
	"github.com/james-lawrence/rbcbench/configure"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/iox"
	"github.com/james-lawrence/rbcbench/latency"
	"github.com/james-lawrence/rbcbench/remote"
	"github.com/james-lawrence/rbcbench/shell"
	"github.com/james-lawrence/rbcbench/topology"
	"github.com/james-lawrence/rbcbench/ux"
	"github.com/james-lawrence/rbcbench/vcsinfo"
)

// Executor runs commands on the fleet.
type Executor interface {
	Output(ctx context.Context, host, cmd string) (string, error)
	Group(ctx context.Context, hosts []string, cmd string, options ...remote.GroupOption) error
	Detached(ctx context.Context, host, cmd, logfile string) error
	Pull(ctx context.Context, host, remote, local string) error
}

// Configurer generates and distributes the configuration of a run.
type Configurer interface {
	Configure(ctx context.Context, t topology.Topology, run rbcbench.RunSettings, params rbcbench.NodeParameters) (configure.Committee, error)
}

// Resolver resolves the commit of the branch deployed to the fleet, an empty
// commit deploys the branch head.
type Resolver func(ctx context.Context, url, branch string) string

// Option customize the orchestrator.
type Option func(*Orchestrator)

// OptionPrinter set the operator output.
func OptionPrinter(p ux.Printer) Option {
	return func(o *Orchestrator) {
		o.printer = p
	}
}

// OptionResolver set how the deployed commit is resolved.
func OptionResolver(r Resolver) Option {
	return func(o *Orchestrator) {
		o.resolve = r
	}
}

// OptionDir the local working directory results and logs are written into.
func OptionDir(dir string) Option {
	return func(o *Orchestrator) {
		o.dir = dir
	}
}

// OptionRichSummary include min and max latencies in the result summary.
func OptionRichSummary(o *Orchestrator) {
	o.rich = true
}

// OptionRunID set the identifier of the invocation.
func OptionRunID(id string) Option {
	return func(o *Orchestrator) {
		o.RunID = id
	}
}

// New orchestrator.
func New(s fleet.Settings, p fleet.Provider, e Executor, c Configurer, params rbcbench.Parameters, options ...Option) Orchestrator {
	o := Orchestrator{
		RunID:     rbcbench.NewRunID(),
		Bench:     params.Bench,
		Node:      params.Node,
		settings:  s,
		provider:  p,
		exec:      e,
		configure: c,
		printer:   ux.New(),
		resolve:   vcsinfo.MaybeRemoteCommitish,
		dir:       ".",
	}

	for _, opt := range options {
		opt(&o)
	}

	return o
}

// Orchestrator drives the fleet through a run: install, update, select, configure, boot.
type Orchestrator struct {
	RunID     string
	Bench     rbcbench.RunSettings
	Node      rbcbench.NodeParameters
	settings  fleet.Settings
	provider  fleet.Provider
	exec      Executor
	configure Configurer
	printer   ux.Printer
	resolve   Resolver
	dir       string
	rich      bool
}

func (t Orchestrator) validate() error {
	if err := (rbcbench.Parameters{Bench: t.Bench, Node: t.Node}).Validate(); err != nil {
		return errors.Wrap(err, "invalid nodes or bench parameters")
	}

	return t.settings.Validate()
}

func (t Orchestrator) hosts(ctx context.Context) (fleet.Hosts, error) {
	hosts, err := t.provider.Hosts(ctx)
	return hosts, errors.Wrap(err, "failed to retrieve hosts")
}

// Install the toolchain and clone the repository on every host of the fleet.
func (t Orchestrator) Install(ctx context.Context) (err error) {
	var (
		hosts fleet.Hosts
		repo  = t.settings.Repository
	)

	if err = t.settings.Validate(); err != nil {
		return err
	}

	if hosts, err = t.hosts(ctx); err != nil {
		return err
	}

	t.printer.Info("installing rust and cloning the repo...")

	cmd := commands.And(
		"if command -v apt-get &>/dev/null; then "+
			"sudo apt-get update && sudo apt-get -y upgrade && sudo apt-get -y autoremove && "+
			"sudo apt-get -y install build-essential cmake libgmp-dev clang tmux pkg-config libssl-dev; "+
			"else "+
			"sudo yum update -y && sudo yum install -y gcc gcc-c++ make cmake git curl clang gmp-devel tmux pkgconfig openssl-devel; "+
			"fi",
		`curl --proto "=https" --tlsv1.2 -sSf https://sh.rustup.rs | sh -s -- -y`,
		"source $HOME/.cargo/env",
		fmt.Sprintf("rustup install %s", t.settings.Toolchain),
		fmt.Sprintf("rustup override set %s", t.settings.Toolchain),
		fmt.Sprintf("(git clone %s || (cd %s ; git pull))", repo.URL, repo.Name),
	)

	flat := hosts.Flatten()
	if err = t.exec.Group(ctx, flat, cmd, remote.GroupOptionIgnoreStderr); err != nil {
		return errors.Wrap(phase(PhaseInstall, err), "failed to install repo on testbed")
	}

	t.printer.Heading("initialized testbed of %d nodes", len(flat))
	return nil
}

// Select the hosts for the run.
func (t Orchestrator) Select(ctx context.Context) (topo topology.Topology, err error) {
	var (
		hosts fleet.Hosts
	)

	if hosts, err = t.hosts(ctx); err != nil {
		return topo, err
	}

	topo = topology.Select(topology.PolicyFromCollocate(t.Bench.Collocate), t.Bench.MaxNodes(), t.Bench.Workers, hosts)
	log.Println("selected", topo)

	return topo, nil
}

// Run a full benchmark. returns nil without contacting any host when the fleet lacks
// capacity for the run.
func (t Orchestrator) Run(ctx context.Context) (err error) {
	return t.run(ctx, "starting remote benchmark", true)
}

// Rerun boots the previously configured run after updating the code.
func (t Orchestrator) Rerun(ctx context.Context) (err error) {
	return t.run(ctx, "restarting remote benchmark", false)
}

func (t Orchestrator) run(ctx context.Context, heading string, generate bool) (err error) {
	var (
		topo topology.Topology
	)

	t.printer.Heading(heading)
	log.Println("run", t.RunID)

	if err = t.validate(); err != nil {
		return err
	}

	if topo, err = t.Select(ctx); err != nil {
		return err
	}

	if topo.Kind() == topology.Insufficient {
		t.printer.Warn("%s", rbcbench.ErrSelectionExhausted)
		return nil
	}

	if err = t.Update(ctx, topo); err != nil {
		return t.abort(ctx, topo, err)
	}

	if generate {
		t.printer.Info("generating configuration files...")
		if _, err = t.configure.Configure(ctx, topo, t.Bench, t.Node); err != nil {
			return t.abort(ctx, topo, phase(PhaseConfigure, err))
		}
	}

	t.Boot(ctx, topo)

	return nil
}

// the hosts were contacted, stop anything that may have started before reporting.
func (t Orchestrator) abort(ctx context.Context, topo topology.Topology, cause error) error {
	if err := t.Kill(ctx, topo.Machines(), false); err != nil {
		log.Println("failed to kill nodes after failure", err)
	}

	return cause
}

// Update fetches the configured branch and rebuilds the binaries on every machine of the topology.
func (t Orchestrator) Update(ctx context.Context, topo topology.Topology) (err error) {
	var (
		environ  []string
		repo     = t.settings.Repository
		machines = topo.Machines()
	)

	t.printer.Info("updating %d machines (branch %q)...", len(machines), repo.Branch)

	if environ, err = shell.EnvironFromFile(t.settings.Environ); err != nil {
		return rbcbench.Configuration(errors.Wrapf(err, "invalid environment file: %s", t.settings.Environ))
	}

	cmds := []string{
		commands.InDir(repo.Name, "git fetch -f"),
		commands.InDir(repo.Name, fmt.Sprintf("git checkout -f %s", repo.Branch)),
		commands.InDir(repo.Name, "git pull -f"),
	}

	if commit := t.resolve(ctx, repo.URL, repo.Branch); commit != "" {
		log.Println("deploying commit", commit)
		cmds = append(cmds, commands.InDir(repo.Name, fmt.Sprintf("git checkout -f %s", commit)))
	}

	cmds = append(cmds, "source $HOME/.cargo/env")
	if len(environ) > 0 {
		cmds = append(cmds, commands.Export(environ...))
	}

	cmds = append(
		cmds,
		commands.InDir(repo.Name, commands.Compile()),
		commands.AliasBinaries("./"+t.settings.BinaryPath()),
	)

	// git and cargo report progress on stderr.
	return phase(PhaseUpdate, t.exec.Group(ctx, machines, commands.And(cmds...), remote.GroupOptionIgnoreStderr))
}

// Boot launches the syncer on the first node then the bundle extraction and primary on
// every node. a failed launch is reported and the remaining launches continue.
func (t Orchestrator) Boot(ctx context.Context, topo topology.Topology) {
	var (
		nodes = topo.Nodes()
	)

	t.printer.Info("booting primaries...")

	if len(nodes) == 0 {
		return
	}

	launch := func(host, cmd, logfile string) {
		if err := t.exec.Detached(ctx, host, cmd, logfile); err != nil {
			t.printer.Warn("%v", phase(PhaseBoot, err))
		}
	}

	launch(nodes[0], commands.RunSyncer(rbcbench.KeyFile(0), t.settings.Bundles.Testdata, t.Bench.Byzantine), rbcbench.SyncerLogFile())

	for i, host := range nodes {
		launch(host, commands.Unzip(t.settings.Bundles.Staged), rbcbench.UnzipLog)
		launch(
			host,
			commands.RunPrimary(rbcbench.KeyFile(i), t.Bench.Protocol, t.Bench.BFile, t.Bench.Byzantine, t.Bench.Crash),
			rbcbench.PrimaryLogFile(i),
		)
	}
}

// Kill every session on the hosts, defaults to the entire fleet. optionally clears the logs.
func (t Orchestrator) Kill(ctx context.Context, hosts []string, deleteLogs bool) (err error) {
	if len(hosts) == 0 {
		var all fleet.Hosts
		if all, err = t.hosts(ctx); err != nil {
			return err
		}
		hosts = all.Flatten()
	}

	clean := "true"
	if deleteLogs {
		clean = commands.CleanLogs()
	}

	cmd := commands.And(clean, commands.Lenient(commands.Kill()))

	// tmux reports a missing server on stderr.
	if err = t.exec.Group(ctx, hosts, cmd, remote.GroupOptionIgnoreStderr); err != nil {
		return phase(PhaseKill, err)
	}

	return nil
}

// Logs computes the latency summary on the first node, writes it into the results directory
// and returns the per size statistics.
func (t Orchestrator) Logs(ctx context.Context) (stats []latency.Stat, err error) {
	var (
		topo    topology.Topology
		output  string
		records []latency.Record
		nodes   = t.Bench.MaxNodes()
	)

	t.printer.Heading("fetching latency logs...")

	if topo, err = t.Select(ctx); err != nil {
		return stats, err
	}

	if topo.Kind() == topology.Insufficient {
		return stats, rbcbench.ErrSelectionExhausted
	}

	host := topo.Nodes()[0]
	t.printer.Info("running latency script on: %s", host)

	if output, err = t.exec.Output(ctx, host, commands.LatencySummary(t.settings.Repository.Name, nodes)); err != nil {
		return stats, phase(PhaseLogs, err)
	}

	if records, err = latency.Parse(strings.NewReader(output)); err != nil {
		return stats, err
	}

	if missing := latency.Missing(nodes, records); len(missing) > 0 {
		t.printer.Warn("not all message ids found. missing: %v", missing)
	}

	stats = latency.Aggregate(records)

	if table, terr := latency.Table(stats); terr == nil {
		t.printer.Info("%s", table)
	} else {
		log.Println("unable to render latency table", terr)
	}

	return stats, t.writeResults(stats)
}

func (t Orchestrator) writeResults(stats []latency.Stat) (err error) {
	var (
		b    strings.Builder
		path = filepath.Join(t.dir, rbcbench.ResultFile(t.RunID))
	)

	if err = latency.WriteSummary(&b, stats, t.rich); err != nil {
		return err
	}

	if err = iox.WriteFile(path, strings.NewReader(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "failed to write results: %s", path)
	}

	t.printer.Info("results written to %s", path)
	return nil
}

// PullLogs downloads the syncer log from the first node into dir.
func (t Orchestrator) PullLogs(ctx context.Context, dir string) (path string, err error) {
	var (
		topo topology.Topology
	)

	if topo, err = t.Select(ctx); err != nil {
		return "", err
	}

	if topo.Kind() == topology.Insufficient {
		return "", rbcbench.ErrSelectionExhausted
	}

	path = filepath.Join(dir, rbcbench.SyncerLogFile())
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.WithStack(err)
	}

	host := topo.Nodes()[0]
	t.printer.Info("fetching syncer log from %s", host)

	if err = t.exec.Pull(ctx, host, rbcbench.SyncerLogFile(), path); err != nil {
		return "", phase(PhaseLogs, err)
	}

	return path, nil
}
