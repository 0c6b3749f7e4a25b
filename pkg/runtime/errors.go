package runtime

import "fmt"

// ErrorCode classifies runtime failures so hosts and tests can distinguish
// them without parsing messages.
type ErrorCode string

const (
	ErrUndefinedVariable ErrorCode = "UndefinedVariable"
	ErrNotCallable       ErrorCode = "NotCallable"
	ErrArityMismatch     ErrorCode = "ArityMismatch"
	ErrInvalidSuperclass ErrorCode = "InvalidSuperclass"
	ErrUndefinedProperty ErrorCode = "UndefinedProperty"
	ErrTypeMismatch      ErrorCode = "TypeMismatch"
	ErrStackOverflow     ErrorCode = "StackOverflow"
	ErrInternal          ErrorCode = "Internal"
)

// Error is a runtime failure attributed to a source line. Line is zero when
// the failure surfaced outside the evaluator (for example an environment
// lookup issued by the host); the interpreter fills it in before the error
// propagates.
type Error struct {
	Code    ErrorCode
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[line %d] runtime error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("runtime error: %s", e.Message)
}

// NewError builds a runtime error without position information.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At returns the error with its line set, leaving an already-attributed
// line untouched.
func (e *Error) At(line int) *Error {
	if e.Line == 0 {
		e.Line = line
	}
	return e
}
