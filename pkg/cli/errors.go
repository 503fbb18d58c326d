package cli

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// exitError carries an exit code out of a cobra RunE. reported is set when
// the cause was already printed.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
