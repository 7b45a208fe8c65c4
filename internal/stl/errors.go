package stl

import "fmt"

// InputNotFoundError is returned when the source mesh does not exist
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("STL file not found: %s", e.Path)
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}

// FormatError reports malformed mesh data
type FormatError struct {
	Format Format
	Line   int // 1-based, ascii only
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid %s STL at line %d: %s", e.Format, e.Line, e.Reason)
	}
	return fmt.Sprintf("invalid %s STL: %s", e.Format, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
