package rbcbench

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies the failures a benchmark run can surface.
type ErrorKind uint8

// Known error kinds.
const (
	ErrKindUnknown ErrorKind = iota
	ErrKindConfiguration
	ErrKindExecution
	ErrKindGroupExecution
	ErrKindTransfer
	ErrKindSelectionExhausted
)

func (t ErrorKind) String() string {
	switch t {
	case ErrKindConfiguration:
		return "configuration"
	case ErrKindExecution:
		return "execution"
	case ErrKindGroupExecution:
		return "group execution"
	case ErrKindTransfer:
		return "transfer"
	case ErrKindSelectionExhausted:
		return "selection exhausted"
	default:
		return "unknown"
	}
}

type kinded interface {
	Kind() ErrorKind
}

// KindOf returns the kind of the first classified error in the chain.
func KindOf(err error) ErrorKind {
	var (
		k kinded
	)

	if errors.As(err, &k) {
		return k.Kind()
	}

	return ErrKindUnknown
}

// ErrSelectionExhausted not enough hosts are available for the requested topology.
// reported as a warning, runs treat it as a no-op.
const ErrSelectionExhausted = exhausted("there are not enough instances available")

type exhausted string

func (t exhausted) Error() string {
	return string(t)
}

func (t exhausted) Kind() ErrorKind {
	return ErrKindSelectionExhausted
}

// Configuration marks err as a configuration failure, detected before any remote action.
func Configuration(err error) error {
	if err == nil {
		return nil
	}

	return configuration{error: err}
}

type configuration struct {
	error
}

func (t configuration) Kind() ErrorKind {
	return ErrKindConfiguration
}

func (t configuration) Unwrap() error {
	return t.error
}

func (t configuration) Cause() error {
	return t.error
}
