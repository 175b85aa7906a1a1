package main

import (
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/bench"
	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
	"github.com/james-lawrence/rbcbench/configure"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/errorsx"
	"github.com/james-lawrence/rbcbench/internal/x/systemx"
	"github.com/james-lawrence/rbcbench/remote"
	"github.com/james-lawrence/rbcbench/shell"
)

// FleetOptions options for commands that reach the fleet.
type FleetOptions struct {
	cmdopts.Files
	SSHKey      string  `name:"ssh-key" help:"private key used to reach the fleet, overrides the settings" env:"${env_rbcbench_ssh_key}" predictor:"file"`
	Concurrency float64 `name:"concurrency" help:"hosts contacted at once. 0: every host, (0, 1]: percentage of the hosts, > 1: batch size" default:"0"`
}

func (t FleetOptions) settings() (fleet.Settings, error) {
	var (
		options []fleet.SettingsOption
	)

	if t.SSHKey != "" {
		options = append(options, fleet.SettingsOptionKeyPath(t.SSHKey))
	}

	return fleet.LoadSettings(t.Settings, options...)
}

func (t FleetOptions) orchestrator(options ...bench.Option) (o bench.Orchestrator, err error) {
	var (
		s      fleet.Settings
		params rbcbench.Parameters
		d      remote.SSHDialer
		dir    = systemx.WorkingDirectoryOrDefault(".")
	)

	if s, err = t.settings(); err != nil {
		return o, errorsx.UserFriendly(err)
	}

	if params, err = rbcbench.LoadParameters(t.Parameters); err != nil {
		return o, errorsx.UserFriendly(err)
	}

	if d, err = remote.NewSSHDialer(s.User, s.KeyPath, remote.SSHOptionPort(s.SSHPort)); err != nil {
		return o, rbcbench.Configuration(errors.Wrap(err, "unable to configure ssh"))
	}

	e := remote.New(d, remote.OptionPartitioner(rbcbench.PartitionFromFloat64(t.Concurrency)))
	c := configure.New(s, shell.NewContext(shell.OptionDir(dir)), e, configure.OptionDir(dir))

	return bench.New(s, fleet.NewProvider(s), e, c, params, append([]bench.Option{bench.OptionDir(dir)}, options...)...), nil
}

type cmdInstall struct {
	FleetOptions
}

func (t cmdInstall) Run(gctx *cmdopts.Global) (err error) {
	var (
		o bench.Orchestrator
	)

	if o, err = t.orchestrator(); err != nil {
		return err
	}

	return o.Install(gctx.Context)
}

type cmdRemote struct {
	FleetOptions
}

func (t cmdRemote) Run(gctx *cmdopts.Global) (err error) {
	var (
		o bench.Orchestrator
	)

	if o, err = t.orchestrator(); err != nil {
		return err
	}

	return o.Run(gctx.Context)
}

type cmdRerun struct {
	FleetOptions
}

func (t cmdRerun) Run(gctx *cmdopts.Global) (err error) {
	var (
		o bench.Orchestrator
	)

	if o, err = t.orchestrator(); err != nil {
		return err
	}

	return o.Rerun(gctx.Context)
}

type cmdKill struct {
	FleetOptions
	Hosts      []string `arg:"" optional:"" help:"hosts to stop, defaults to the entire fleet" predictor:"rbcbench.hosts"`
	DeleteLogs bool     `name:"delete-logs" help:"remove the logs of the stopped nodes"`
	Yes        bool     `name:"yes" short:"y" help:"do not ask for confirmation"`
}

func (t cmdKill) Run(gctx *cmdopts.Global) (err error) {
	var (
		o bench.Orchestrator
	)

	if len(t.Hosts) == 0 && !t.Yes {
		_, err := (&promptui.Prompt{
			Label:     "stop every node of the fleet",
			IsConfirm: true,
		}).Run()

		// declined.
		if err != nil {
			return nil
		}
	}

	if o, err = t.orchestrator(); err != nil {
		return err
	}

	return o.Kill(gctx.Context, t.Hosts, t.DeleteLogs)
}

type cmdLogs struct {
	FleetOptions
	Rich bool   `name:"rich" help:"include minimum and maximum latencies in the results file"`
	Pull string `name:"pull" help:"download the syncer log into the directory" placeholder:"DIRECTORY"`
}

func (t cmdLogs) Run(gctx *cmdopts.Global) (err error) {
	var (
		o       bench.Orchestrator
		options []bench.Option
	)

	if t.Rich {
		options = append(options, bench.OptionRichSummary)
	}

	if o, err = t.orchestrator(options...); err != nil {
		return err
	}

	if _, err = o.Logs(gctx.Context); err != nil {
		return err
	}

	if t.Pull == "" {
		return nil
	}

	_, err = o.PullLogs(gctx.Context, t.Pull)
	return err
}
