package refactor

import "fmt"

// ErrorKind classifies why an operation stopped.
type ErrorKind string

const (
	// KindPrecondition covers requests that cannot apply: no document, an
	// unsupported language, no symbol at the cursor, the wrong kind of
	// symbol, or a const member asked for a setter.
	KindPrecondition ErrorKind = "precondition"
	// KindNotFound covers missing counterparts: no paired file, no
	// definition, no insertion position.
	KindNotFound ErrorKind = "not found"
	// KindInternal covers resolver defects such as positions outside the
	// document or edits computed against a stale snapshot.
	KindInternal ErrorKind = "internal"
)

// Error is a terminal outcome of one operation. It is never fatal to the
// process; the next operation starts fresh.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound)
// works for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrPrecondition = &Error{Kind: KindPrecondition, Msg: "precondition not met"}
	ErrNotFound     = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInternal     = &Error{Kind: KindInternal, Msg: "internal error"}
)

func preconditionf(format string, args ...any) error {
	return &Error{Kind: KindPrecondition, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}
