package orchestrator

import "errors"

// Outcome summarises how Run ended.
type Outcome int

const (
	// OutcomeCancelled means the context ended before the engine started.
	OutcomeCancelled Outcome = iota
	// OutcomeRunning means the engine was serving when the context ended.
	OutcomeRunning
	// OutcomeFatal means the engine failed and will not be retried.
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeRunning:
		return "running"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Errors reported in Result.Err.
var (
	ErrRetriesExhausted = errors.New("port retries exhausted")
	ErrEngineClosed     = errors.New("engine event stream closed")
	ErrAlreadyRun       = errors.New("orchestrator already run")
)

// Result is returned by Run. The caller decides the process exit status
// from it.
type Result struct {
	Outcome  Outcome
	State    State
	Port     int
	Attempts int
	Retries  int
	Err      error
}

// OK reports whether the run ended without a fatal failure.
func (r Result) OK() bool {
	return r.Outcome != OutcomeFatal
}
