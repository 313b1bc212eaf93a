package state

import "fmt"

// Code is the machine-readable error code reported to callers.
type Code string

const (
	// CodeConfigNotFound means the project document is missing; the caller
	// must initialize the project first.
	CodeConfigNotFound Code = "CONFIG_NOT_FOUND"

	// CodeSchemaValidation means a computed new state failed validation.
	// The write is blocked entirely.
	CodeSchemaValidation Code = "SCHEMA_VALIDATION"

	// CodeInvalidArgument means a required parameter is missing or a value
	// falls outside a closed enum.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeNotFound means a referenced rule or branch id does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodePrecondition means an operation precondition failed (memo too
	// short, protected root branch, branch not in required status).
	CodePrecondition Code = "PRECONDITION_FAILED"

	// CodePathTraversal means a resolved path escapes the expected project
	// root. A security check, not a business error.
	CodePathTraversal Code = "PATH_TRAVERSAL"

	// CodeInternal covers unexpected I/O or encoding failures.
	CodeInternal Code = "INTERNAL"
)

// Error is the structured failure every engine operation reports: a short
// human-readable reason plus enough detail for the caller to self-correct.
type Error struct {
	Code    Code     `json:"code"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Allowed []string `json:"allowed,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code, so sentinel comparisons via
// errors.Is work across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError builds a coded error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code to an underlying cause.
func WrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// WithField annotates the error with the offending field.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithAllowed annotates the error with the closed set of allowed values.
func (e *Error) WithAllowed(values ...string) *Error {
	e.Allowed = values
	return e
}

// Sentinels for errors.Is matching by code.
var (
	ErrConfigNotFound   = &Error{Code: CodeConfigNotFound, Message: "project state not found"}
	ErrSchemaValidation = &Error{Code: CodeSchemaValidation, Message: "state failed schema validation"}
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrPrecondition     = &Error{Code: CodePrecondition, Message: "precondition failed"}
	ErrPathTraversal    = &Error{Code: CodePathTraversal, Message: "path escapes project root"}
)
