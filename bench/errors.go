package bench

import (
	"fmt"
)

// Phases of a run that contact hosts.
const (
	PhaseInstall   = "install"
	PhaseUpdate    = "update"
	PhaseConfigure = "configure"
	PhaseBoot      = "boot"
	PhaseKill      = "kill"
	PhaseLogs      = "harvest"
)

// PhaseError a phase of the run failed.
type PhaseError struct {
	Phase string
	cause error
}

func (t PhaseError) Error() string {
	return fmt.Sprintf("failed to %s nodes: %v", t.Phase, t.cause)
}

// Unwrap the failure of the phase.
func (t PhaseError) Unwrap() error {
	return t.cause
}

// Cause the failure of the phase.
func (t PhaseError) Cause() error {
	return t.cause
}

func phase(name string, err error) error {
	if err == nil {
		return nil
	}

	return PhaseError{Phase: name, cause: err}
}
