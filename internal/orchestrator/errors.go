package orchestrator

import "fmt"

// Step names used in diagnostics.
const (
	StepBindings = "generate bindings"
	StepSource   = "acquire source"
	StepNative   = "build native library"
	StepLink     = "plan link"
	StepResource = "compile resources"
	StepEmit     = "emit link plan"
	StepCheck    = "check artifacts"
)

// StepError reports which step of a run failed. The wrapped error keeps
// its kind, so errors.Is works against runner.ErrToolMissing and friends.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func fail(step string, err error) error {
	return &StepError{Step: step, Err: err}
}
