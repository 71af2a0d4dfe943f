package progress

import "fmt"

const (
	StepHistory = "history"
	StepStats   = "stats"
)

// RecordingError is a failed recording step. It is logged, never returned to a caller.
type RecordingError struct {
	Step string
	Err  error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("record %s: %v", e.Step, e.Err)
}

func (e *RecordingError) Unwrap() error { return e.Err }

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("recovered panic: %v", p.value) }
