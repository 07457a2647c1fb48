package bridge

import (
	"fmt"

	"github/chapool/go-bridge/internal/errs"
)

// StepError reports the failed step of a saga together with the steps already committed.
// Remediation of committed steps is left to the caller.
type StepError struct {
	Step  string
	Trace *Trace
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("[%s] %s step failed after %v: %v", errs.KindWorkflowStep, e.Step, e.Trace.Completed(), e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// Is matches errs.ErrWorkflowStep; the cause stays reachable through Unwrap.
func (e *StepError) Is(target error) bool {
	t, ok := target.(*errs.Error) //nolint:errorlint
	return ok && t.Kind() == errs.KindWorkflowStep
}
