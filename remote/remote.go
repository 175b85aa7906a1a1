// Package remote executes commands on the fleet. group commands contact every host
// concurrently and block until all of them respond.
package remote

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/james-lawrence/rbcbench"
	"github.com/james-lawrence/rbcbench/commands"
	"github.com/james-lawrence/rbcbench/internal/x/debugx"
	"github.com/james-lawrence/rbcbench/internal/x/iox"
)

// Option customize the executor.
type Option func(*Executor)

// OptionPartitioner bounds the number of hosts contacted simultaneously by group commands.
func OptionPartitioner(p rbcbench.Partitioner) Option {
	return func(e *Executor) {
		e.partitioner = p
	}
}

// OptionProgress set how frequently group commands report the hosts still outstanding.
func OptionProgress(every time.Duration) Option {
	return func(e *Executor) {
		e.progress = rate.Every(every)
	}
}

// New executor dialing hosts with the given dialer.
func New(d Dialer, options ...Option) Executor {
	e := Executor{
		dialer:      d,
		partitioner: rbcbench.Unbounded{},
		progress:    rate.Every(5 * time.Second),
	}

	for _, opt := range options {
		opt(&e)
	}

	return e
}

// Executor runs commands on hosts.
type Executor struct {
	dialer      Dialer
	partitioner rbcbench.Partitioner
	progress    rate.Limit
}

func (t Executor) exec(ctx context.Context, host, cmd string, strict bool) (stdout string, err error) {
	var (
		conn   Conn
		outbuf = bytes.NewBuffer(nil)
		errbuf = bytes.NewBuffer(nil)
	)

	if conn, err = t.dialer.Dial(ctx, host); err != nil {
		return "", ExecutionError{Host: host, cause: err}
	}
	defer conn.Close()

	debugx.Println(host, "executing", cmd)
	if err = conn.Run(ctx, cmd, nil, outbuf, errbuf); err != nil {
		return outbuf.String(), ExecutionError{Host: host, Stderr: errbuf.String(), cause: err}
	}

	if strict && strings.TrimSpace(errbuf.String()) != "" {
		return outbuf.String(), ExecutionError{Host: host, Stderr: errbuf.String(), cause: errors.New("unexpected output on stderr")}
	}

	return outbuf.String(), nil
}

// Run the command on a single host and return its stdout. a non-zero exit status or any
// output on stderr is a failure.
func (t Executor) Run(ctx context.Context, host, cmd string) (string, error) {
	return t.exec(ctx, host, cmd, true)
}

// Output runs the command on a single host and returns its stdout. only the exit status
// determines failure.
func (t Executor) Output(ctx context.Context, host, cmd string) (string, error) {
	return t.exec(ctx, host, cmd, false)
}

// GroupOption customize a group command.
type GroupOption func(*group)

// GroupOptionIgnoreStderr only the exit status determines failure.
func GroupOptionIgnoreStderr(g *group) {
	g.strict = false
}

type group struct {
	strict bool
}

// Group runs the command on every host concurrently and waits for all of them.
// failures are aggregated into a GroupError.
func (t Executor) Group(ctx context.Context, hosts []string, cmd string, options ...GroupOption) error {
	var (
		wg        sync.WaitGroup
		m         sync.Mutex
		g         = group{strict: true}
		failures  = &GroupError{}
		remaining = len(hosts)
		limiter   = rate.NewLimiter(t.progress, 1)
		sem       = make(chan struct{}, t.partitioner.Partition(len(hosts)))
	)

	for _, opt := range options {
		opt(&g)
	}

	// consume the initial token, the first progress report is delayed.
	limiter.Allow()

	for _, host := range hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if _, err := t.exec(ctx, host, cmd, g.strict); err != nil {
				failures.record(err)
			}

			m.Lock()
			remaining--
			n := remaining
			m.Unlock()

			if n > 0 && limiter.Allow() {
				log.Println("waiting on", n, "host(s)")
			}
		}(host)
	}

	wg.Wait()

	return failures.errorOrNil()
}

// Detached launches the command in a detached session named after logfile and returns
// once the session exists. the output of the command is copied into logfile.
func (t Executor) Detached(ctx context.Context, host, cmd, logfile string) error {
	_, err := t.Run(ctx, host, commands.Detached(cmd, logfile))
	return err
}

// Push copies the local files into the working directory of the host. files keep their basename.
func (t Executor) Push(ctx context.Context, host string, paths ...string) (err error) {
	var (
		conn Conn
	)

	if conn, err = t.dialer.Dial(ctx, host); err != nil {
		return TransferError{Host: host, Path: strings.Join(paths, ","), cause: err}
	}
	defer conn.Close()

	for _, path := range paths {
		if err = push(ctx, conn, path); err != nil {
			return TransferError{Host: host, Path: path, cause: err}
		}
	}

	return nil
}

func push(ctx context.Context, conn Conn, path string) (err error) {
	var (
		src    *os.File
		errbuf = bytes.NewBuffer(nil)
	)

	if src, err = os.Open(path); err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	if err = conn.Run(ctx, "cat > "+filepath.Base(path), src, io.Discard, errbuf); err != nil {
		return errors.Wrap(err, strings.TrimSpace(errbuf.String()))
	}

	return nil
}

// Pull copies the remote file from the host into the local path.
func (t Executor) Pull(ctx context.Context, host, remote, local string) (err error) {
	var (
		conn   Conn
		outbuf = bytes.NewBuffer(nil)
		errbuf = bytes.NewBuffer(nil)
	)

	if conn, err = t.dialer.Dial(ctx, host); err != nil {
		return TransferError{Host: host, Path: remote, cause: err}
	}
	defer conn.Close()

	if err = conn.Run(ctx, "cat "+remote, nil, outbuf, errbuf); err != nil {
		return TransferError{Host: host, Path: remote, cause: errors.Wrap(err, strings.TrimSpace(errbuf.String()))}
	}

	if err = iox.WriteFile(local, outbuf, 0644); err != nil {
		return TransferError{Host: host, Path: local, cause: err}
	}

	return nil
}
