package binvec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType is returned when a typed buffer does not hold one-byte components.
	ErrUnsupportedType = errors.New("unsupported numeric type")

	// ErrNotSupported is returned when an optional capability is absent on the backend.
	ErrNotSupported = errors.New("operation not supported")

	// ErrNotImplemented is returned when the backend does not implement reconstruction or range search.
	ErrNotImplemented = errors.New("operation not implemented")

	// ErrIncompatibleMerge is returned when two indexes cannot be merged.
	ErrIncompatibleMerge = errors.New("indexes are not compatible for merge")

	// ErrNotTrained is returned when an operation requires a trained index.
	ErrNotTrained = errors.New("index is not trained")

	// ErrInvalidArgument is returned for malformed dimensions, counts or buffers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an identifier is not stored in the index.
	ErrNotFound = errors.New("not found")
)

// ErrorKind classifies every error surfaced by an Index.
type ErrorKind int

// Error kinds, one per sentinel error.
const (
	KindUnknown ErrorKind = iota
	KindUnsupportedType
	KindNotSupported
	KindNotImplemented
	KindIncompatibleMerge
	KindNotTrained
	KindInvalidArgument
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedType:
		return "UnsupportedType"
	case KindNotSupported:
		return "NotSupported"
	case KindNotImplemented:
		return "NotImplemented"
	case KindIncompatibleMerge:
		return "IncompatibleMerge"
	case KindNotTrained:
		return "NotTrained"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindUnsupportedType:
		return ErrUnsupportedType
	case KindNotSupported:
		return ErrNotSupported
	case KindNotImplemented:
		return ErrNotImplemented
	case KindIncompatibleMerge:
		return ErrIncompatibleMerge
	case KindNotTrained:
		return ErrNotTrained
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// OpError describes a failed index operation.
//
// errors.Is matches the sentinel of its Kind, and errors.Unwrap returns the
// backend error that caused it (if any).
type OpError struct {
	Op   string
	Kind ErrorKind
	Msg  string

	cause error
}

func (e *OpError) Error() string {
	s := e.Op + ": "
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		s += sentinel.Error()
	} else {
		s += "failed"
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Is reports whether target is the sentinel error of e's kind.
func (e *OpError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *OpError) Unwrap() error { return e.cause }

// KindOf returns the ErrorKind carried by err, or KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	for k := KindUnsupportedType; k <= KindNotFound; k++ {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}
	return KindUnknown
}

func newError(op string, kind ErrorKind, format string, args ...any) error {
	return &OpError{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// wrapBackend classifies a backend error. Errors already carrying a kind keep it.
func wrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	return &OpError{Op: op, Kind: KindOf(err), Msg: "backend", cause: err}
}
