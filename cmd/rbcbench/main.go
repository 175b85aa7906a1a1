// Package main rbcbench deploys and benchmarks the reliable broadcast protocols on a fleet of machines.
package main

import (
	"context"
	"log"
	"os"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/cmd/autocomplete"
	"github.com/james-lawrence/rbcbench/cmd/commandutils"
	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
	"github.com/james-lawrence/rbcbench/internal/x/debugx"
	"github.com/james-lawrence/rbcbench/internal/x/systemx"
)

func main() {
	var shellCli struct {
		cmdopts.Global
		Version            cmdVersion                   `cmd:"" help:"display versioning information"`
		Local              cmdLocal                     `cmd:"" help:"run a benchmark on the local machine"`
		Install            cmdInstall                   `cmd:"" help:"install the toolchain and clone the repository on every host"`
		Remote             cmdRemote                    `cmd:"" help:"run a benchmark on the fleet"`
		Rerun              cmdRerun                     `cmd:"" help:"update and restart the previously configured benchmark"`
		Kill               cmdKill                      `cmd:"" help:"stop every node of the fleet"`
		Logs               cmdLogs                      `cmd:"" help:"summarize the latencies of the last run"`
		Summarize          cmdSummarize                 `cmd:"" help:"combine latency averages of multiple runs"`
		Info               cmdInfo                      `cmd:"" help:"display the hosts of the fleet"`
		InstallCompletions kongplete.InstallCompletions `cmd:"" help:"install shell completions"`
	}

	var (
		err error
		ctx *kong.Context
	)

	shellCli.Context, shellCli.Shutdown = context.WithCancel(context.Background())
	shellCli.Cleanup = &sync.WaitGroup{}

	log.SetFlags(log.Flags() | log.Lshortfile)
	go debugx.DumpOnSignal(shellCli.Context, syscall.SIGUSR2)
	go systemx.Cleanup(shellCli.Context, shellCli.Shutdown, shellCli.Cleanup, os.Kill, os.Interrupt)(func() {
		log.Println("waiting for systems to shutdown")
	})

	parser := kong.Must(
		&shellCli,
		kong.Name("rbcbench"),
		kong.Description("benchmark orchestrator for reliable broadcast protocols"),
		kong.Vars{
			"vars_rbcbench_default_settings":   rbcbench.DefaultSettingsFile,
			"vars_rbcbench_default_parameters": rbcbench.DefaultParametersFile,
			"env_rbcbench_settings":            rbcbench.EnvSettings,
			"env_rbcbench_parameters":          rbcbench.EnvParameters,
			"env_rbcbench_ssh_key":             rbcbench.EnvSSHKey,
		},
		kong.UsageOnError(),
		kong.Bind(&shellCli.Global),
	)

	kongplete.Complete(parser,
		kongplete.WithPredictor("rbcbench.hosts", complete.PredictFunc(autocomplete.Hosts)),
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	if ctx, err = parser.Parse(os.Args[1:]); err != nil {
		commandutils.LogCause(err)
		os.Exit(1)
	}

	if err = commandutils.LogCause(ctx.Run()); err != nil {
		shellCli.Shutdown()
	}

	shellCli.Cleanup.Wait()
	if err != nil {
		os.Exit(1)
	}
}
