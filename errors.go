package fdw

import "fmt"

// SQLSTATE-style condition codes attached to wrapper errors. The host maps
// these onto its own error report mechanism.
const (
	ErrcodeFdwError                 = "HV000"
	ErrcodeFdwInvalidColumnName     = "HV007"
	ErrcodeFdwInvalidStringFormat   = "HV00A"
	ErrcodeFdwInvalidOptionName     = "HV00D"
	ErrcodeFdwFunctionSequenceError = "HV010"
	ErrcodeFdwInvalidAttributeValue = "HV024"
)

// Error is a fatal, user-visible wrapper error. Returning one from an entry
// point aborts the host statement that triggered the call; nothing at this
// layer retries.
type Error struct {
	Code    string
	Message string
	Hint    string
}

func (e *Error) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an Error with the given condition code.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithHint returns a copy of the error carrying a hint for the user.
func (e *Error) WithHint(format string, args ...any) *Error {
	clone := *e
	clone.Hint = fmt.Sprintf(format, args...)
	return &clone
}
