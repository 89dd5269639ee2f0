package capture

import (
	"errors"
	"fmt"
)

// Kind classifies a capture failure.
type Kind string

const (
	KindPermissionDenied Kind = "permission-denied"
	KindDeviceNotFound   Kind = "device-not-found"
	KindUnsupported      Kind = "unsupported-context"
	KindDeviceInUse      Kind = "device-in-use"
	KindConstraint       Kind = "constraint-unsatisfiable"
	KindInterrupted      Kind = "interrupted"
	KindUnknown          Kind = "unknown"
)

// Op is the operation that was being attempted when a capture error
// occurred.
type Op string

const (
	OpStart  Op = "start"
	OpPhoto  Op = "photo"
	OpVideo  Op = "video"
	OpSwitch Op = "switch"
)

// Sentinel errors a Camera or Stream implementation returns to signal
// platform conditions. Classify maps them onto the Kind taxonomy.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrDeviceNotFound   = errors.New("camera device not found")
	ErrUnsupported      = errors.New("capture not supported in this context")
	ErrDeviceInUse      = errors.New("camera device in use")
	ErrConstraint       = errors.New("camera constraints cannot be satisfied")
	ErrInterrupted      = errors.New("capture interrupted")
)

// Error is a classified capture failure carrying the attempted operation.
type Error struct {
	Kind Kind
	Op   Op
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capture %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps err as an *Error with the matching Kind. An err that is
// already classified keeps its kind but gains the operation context.
func Classify(op Op, err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return &Error{Kind: ce.Kind, Op: op, Err: ce.Err}
	}

	kind := KindUnknown
	switch {
	case errors.Is(err, ErrPermissionDenied):
		kind = KindPermissionDenied
	case errors.Is(err, ErrDeviceNotFound):
		kind = KindDeviceNotFound
	case errors.Is(err, ErrUnsupported):
		kind = KindUnsupported
	case errors.Is(err, ErrDeviceInUse):
		kind = KindDeviceInUse
	case errors.Is(err, ErrConstraint):
		kind = KindConstraint
	case errors.Is(err, ErrInterrupted):
		kind = KindInterrupted
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
