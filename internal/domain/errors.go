package domain

import "errors"

// Kind classifies a pipeline failure. The write path distinguishes "never
// recorded" (validation or raw-store failure) from "partially recorded"
// (relational failure after a durable raw write); callers rely on that
// distinction.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation marks malformed or out-of-range input. No store was
	// touched.
	KindValidation
	// KindRawStore marks a failed write-ahead insert. The event is not
	// recorded anywhere.
	KindRawStore
	// KindRelationalWrite marks a failed projection after the raw write
	// already succeeded. The raw log is authoritative for the event.
	KindRelationalWrite
	// KindQuery marks a read-path store failure.
	KindQuery
	// KindUnavailable marks a failed health probe of an external dependency.
	KindUnavailable
)

// Error tags an underlying store or validation error with its Kind and the
// operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with a kind and operation label.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
