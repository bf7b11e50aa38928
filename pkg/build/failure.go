package build

import "fmt"

// Failure is the outcome of a failed build step. A silent failure has
// already been communicated to the user; anything else carries the message
// that still needs to be shown. No step is allowed to leak a raw panic or
// unwrapped low-level error past the per-unit boundary.
type Failure struct {
	msg string
}

// Silent returns a failure that needs no further reporting.
func Silent() *Failure {
	return &Failure{}
}

// FailMsgf returns a failure carrying a user-facing message.
func FailMsgf(format string, args ...any) *Failure {
	return &Failure{msg: fmt.Sprintf(format, args...)}
}

// IsSilent reports whether the failure was already communicated.
func (f *Failure) IsSilent() bool {
	return f.msg == ""
}

// Message is the user-facing text, empty for silent failures.
func (f *Failure) Message() string {
	return f.msg
}

func (f *Failure) Error() string {
	if f.IsSilent() {
		return "build failed"
	}
	return f.msg
}
