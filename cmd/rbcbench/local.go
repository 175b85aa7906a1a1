package main

import (
	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/cmd/rbcbench/cmdopts"
	"github.com/james-lawrence/rbcbench/fleet"
	"github.com/james-lawrence/rbcbench/internal/x/systemx"
	"github.com/james-lawrence/rbcbench/local"
	"github.com/james-lawrence/rbcbench/shell"
)

type cmdLocal struct {
	Run  cmdLocalRun  `cmd:"" default:"1" help:"launch the syncer and one primary per node on the loopback interface"`
	Kill cmdLocalKill `cmd:"" help:"stop the local sessions"`
}

type cmdLocalRun struct {
	cmdopts.Files
	Nodes int `name:"nodes" help:"overrides the number of nodes" default:"0"`
}

func (t cmdLocalRun) Run(gctx *cmdopts.Global) (err error) {
	var (
		s       fleet.Settings
		params  rbcbench.Parameters
		options []rbcbench.ParametersOption
		dir     = systemx.WorkingDirectoryOrDefault(".")
	)

	if t.Nodes > 0 {
		options = append(options, rbcbench.ParametersOptionNodes(t.Nodes))
	}

	if s, err = fleet.LoadSettings(t.Settings); err != nil {
		return err
	}

	if params, err = rbcbench.LoadParameters(t.Parameters, options...); err != nil {
		return err
	}

	return local.New(s, shell.NewContext(shell.OptionDir(dir)), params, local.OptionDir(dir)).Run(gctx.Context)
}

type cmdLocalKill struct{}

func (t cmdLocalKill) Run(gctx *cmdopts.Global) (err error) {
	return local.New(fleet.NewSettings(), shell.NewContext(), rbcbench.NewParameters()).Kill(gctx.Context)
}
