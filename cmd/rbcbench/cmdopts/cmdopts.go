// Package cmdopts options shared by every command.
package cmdopts

import (
	"context"
	"sync"

	"github.com/james-lawrence/rbcbench/cmd/commandutils"
)

// Global options and process wide state.
type Global struct {
	Verbosity int                `help:"increase verbosity of logging" short:"v" type:"counter" default:"0"`
	Context   context.Context    `kong:"-"`
	Shutdown  context.CancelFunc `kong:"-"`
	Cleanup   *sync.WaitGroup    `kong:"-"`
}

// BeforeApply configures logging before any command runs.
func (t Global) BeforeApply() error {
	commandutils.LogEnv(t.Verbosity)
	return nil
}

// Files the settings and parameters of a run.
type Files struct {
	Settings   string `name:"settings" help:"path to the fleet settings" default:"${vars_rbcbench_default_settings}" env:"${env_rbcbench_settings}" predictor:"file"`
	Parameters string `name:"parameters" help:"path to the benchmark parameters" default:"${vars_rbcbench_default_parameters}" env:"${env_rbcbench_parameters}" predictor:"file"`
}
