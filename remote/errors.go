package remote

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/james-lawrence/rbcbench"
)

// ExecutionError a command failed on a single host, either it exited with a non-zero
// status or it wrote to stderr.
type ExecutionError struct {
	Host   string
	Stderr string
	cause  error
}

func (t ExecutionError) Error() string {
	if msg := strings.TrimSpace(t.Stderr); msg != "" {
		return fmt.Sprintf("%s: %s", t.Host, msg)
	}

	return fmt.Sprintf("%s: %v", t.Host, t.cause)
}

// Kind implements the error kind classification.
func (t ExecutionError) Kind() rbcbench.ErrorKind {
	return rbcbench.ErrKindExecution
}

// Unwrap the underlying failure.
func (t ExecutionError) Unwrap() error {
	return t.cause
}

// GroupError aggregates the failures of a group command. the message is the
// most recently recorded failure.
type GroupError struct {
	m      sync.Mutex
	merr   *multierror.Error
	latest error
}

func (t *GroupError) record(err error) {
	t.m.Lock()
	defer t.m.Unlock()
	t.merr = multierror.Append(t.merr, err)
	t.latest = err
}

func (t *GroupError) errorOrNil() error {
	t.m.Lock()
	defer t.m.Unlock()
	if t.merr.ErrorOrNil() == nil {
		return nil
	}

	return t
}

// Errors every failure recorded by the group.
func (t *GroupError) Errors() []error {
	t.m.Lock()
	defer t.m.Unlock()
	if t.merr == nil {
		return nil
	}

	return append([]error(nil), t.merr.Errors...)
}

func (t *GroupError) Error() string {
	t.m.Lock()
	defer t.m.Unlock()
	if t.latest == nil {
		return "group command failed"
	}

	return t.latest.Error()
}

// Kind implements the error kind classification.
func (t *GroupError) Kind() rbcbench.ErrorKind {
	return rbcbench.ErrKindGroupExecution
}

// Details every failure, one per line.
func (t *GroupError) Details() string {
	t.m.Lock()
	defer t.m.Unlock()
	if t.merr == nil {
		return ""
	}

	return t.merr.Error()
}

// TransferError a file failed to move between the local machine and a host.
type TransferError struct {
	Host  string
	Path  string
	cause error
}

func (t TransferError) Error() string {
	return fmt.Sprintf("%s: failed to transfer %s: %v", t.Host, t.Path, t.cause)
}

// Kind implements the error kind classification.
func (t TransferError) Kind() rbcbench.ErrorKind {
	return rbcbench.ErrKindTransfer
}

// Unwrap the underlying failure.
func (t TransferError) Unwrap() error {
	return t.cause
}
