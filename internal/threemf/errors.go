package threemf

import "fmt"

// WriteError reports a failure to create or finalise the output archive.
// No partially written file replaces Path.
type WriteError struct {
	Path string
	Op   string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write 3MF %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
