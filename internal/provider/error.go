package provider

import "fmt"

// ErrorKind enumerates decoder failure classes.
type ErrorKind uint8

const (
	// ErrUnrecognizedLayout indicates a structural field the decoder expects
	// is missing: the value uses a layout version this build does not know.
	ErrUnrecognizedLayout ErrorKind = iota + 1
	// ErrIndexOutOfRange indicates a ChildAt index outside [0, ChildCount()).
	ErrIndexOutOfRange
	// ErrTypeResolve indicates an element or pair type that could not be
	// resolved to a concrete sized layout.
	ErrTypeResolve
	// ErrCountMismatch indicates the scanned occupied-slot count disagrees
	// with the table header's item count.
	ErrCountMismatch
	// ErrRead indicates the host's memory-read primitive failed.
	ErrRead
)

// DecodeError is the typed failure every provider operation reports.
type DecodeError struct {
	Kind     ErrorKind
	TypeName string
	Field    string // for ErrUnrecognizedLayout
	Index    int    // for ErrIndexOutOfRange
	Count    int    // for ErrIndexOutOfRange and ErrCountMismatch (scanned)
	Declared int    // for ErrCountMismatch
	Err      error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnrecognizedLayout:
		if e.Err != nil {
			return fmt.Sprintf("unrecognized layout of %q: %v", e.TypeName, e.Err)
		}
		return fmt.Sprintf("unrecognized layout of %q: missing %q", e.TypeName, e.Field)
	case ErrIndexOutOfRange:
		return fmt.Sprintf("child index %d out of range [0, %d)", e.Index, e.Count)
	case ErrTypeResolve:
		if e.Err != nil {
			return fmt.Sprintf("cannot resolve element type of %q: %v", e.TypeName, e.Err)
		}
		return fmt.Sprintf("cannot resolve element type of %q", e.TypeName)
	case ErrCountMismatch:
		return fmt.Sprintf("table %q declares %d items but %d occupied slots were scanned", e.TypeName, e.Declared, e.Count)
	case ErrRead:
		return fmt.Sprintf("memory read failed decoding %q: %v", e.TypeName, e.Err)
	default:
		return fmt.Sprintf("decode error kind=%d type=%q", e.Kind, e.TypeName)
	}
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
