// Package shell executes commands on the local machine, the ones used to generate
// configuration and run local benchmarks.
package shell

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
)

// Exec a single command.
type Exec struct {
	Command string
	Lenient bool   // failures are reported and ignored.
	Dir     string // relative to the context directory.
}

// Lenient command, failures are ignored.
func Lenient(cmd string) Exec {
	return Exec{Command: cmd, Lenient: true}
}

// Strict command, failures abort execution.
func Strict(cmd string) Exec {
	return Exec{Command: cmd}
}

// InDir runs the command within dir.
func (t Exec) InDir(dir string) Exec {
	t.Dir = dir
	return t
}

func (t Exec) execute(ctx context.Context, sctx Context) error {
	cmd := exec.CommandContext(ctx, sctx.Shell, "-c", t.Command)
	cmd.Env = sctx.Environ
	cmd.Stdout = sctx.output
	cmd.Stderr = sctx.output
	cmd.Dir = sctx.Dir
	if t.Dir != "" {
		cmd.Dir = filepath.Join(sctx.Dir, t.Dir)
	}

	return t.lenient(sctx, cmd.Run())
}

func (t Exec) lenient(ctx Context, err error) error {
	if (t.Lenient || ctx.lenient) && err != nil {
		fmt.Fprintln(ctx.output, "command failed, ignoring", t.Command, err)
		return nil
	}

	return err
}

// Option context option.
type Option func(*Context)

// OptionLogger write command output to the logger line by line.
func OptionLogger(l *log.Logger) Option {
	return func(ctx *Context) {
		ctx.output = newLogging(l)
	}
}

// OptionOutput write command output to w.
func OptionOutput(w io.Writer) Option {
	return func(ctx *Context) {
		ctx.output = w
	}
}

// OptionEnviron set the environment for shell commands.
func OptionEnviron(environ ...string) Option {
	return func(ctx *Context) {
		ctx.Environ = environ
	}
}

// OptionDir set the working directory.
func OptionDir(dir string) Option {
	return func(ctx *Context) {
		ctx.Dir = dir
	}
}

// OptionLenient ignore failures of every command.
func OptionLenient(ctx *Context) {
	ctx.lenient = true
}

// NewContext for the current machine using /bin/sh, applies the options.
func NewContext(options ...Option) Context {
	ctx := Context{
		Shell:   "/bin/sh",
		Environ: os.Environ(),
		output:  io.Discard,
	}

	for _, opt := range options {
		opt(&ctx)
	}

	return ctx
}

// Context the environment commands are executed within.
type Context struct {
	Shell   string
	Environ []string
	Dir     string
	output  io.Writer
	lenient bool
}

// Execute the commands in order, stopping at the first failure.
func (t Context) Execute(ctx context.Context, commands ...Exec) error {
	return Execute(ctx, t, commands...)
}

// Execute the commands in order, stopping at the first failure.
func Execute(ctx context.Context, sctx Context, commands ...Exec) error {
	for _, c := range commands {
		fmt.Fprintln(sctx.output, "executing", sctx.Shell, "-c", c.Command)
		if err := c.execute(ctx, sctx); err != nil {
			return errors.Wrapf(err, "failed to execute: '%s'", c.Command)
		}
		fmt.Fprintln(sctx.output, "completed", sctx.Shell, "-c", c.Command)
	}

	return nil
}
