package converter

import "errors"

// ErrKind classifies a conversion failure for the HTTP layer.
type ErrKind string

const (
	KindValidation ErrKind = "validation" // bad request input, no work started
	KindCapacity   ErrKind = "capacity"   // upload exceeds the size ceiling
	KindTool       ErrKind = "tool"       // external tool missing, nonzero exit, or timeout
	KindIO         ErrKind = "io"         // disk read/write failure
)

// Error is the single failure outcome of a conversion. Message is the
// user-visible text; for tool failures it already carries the bounded
// diagnostic tail.
type Error struct {
	Kind    ErrKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf extracts the failure kind, defaulting to an I/O error for
// anything untyped.
func KindOf(err error) ErrKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindIO
}
