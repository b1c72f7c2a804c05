package evaluator

import "fmt"

// RuntimeError is a fatal evaluation failure: an undefined identifier, an
// operand-kind mismatch in a strict position, or a failed assertion. The
// CLI shell translates it to the exit code it carries (always 70 for the
// tree-walk evaluator, per spec.md §6/§7).
type RuntimeError struct {
	Message  string
	ExitCode int
	// Frames is the call stack at the point of failure, outermost first,
	// named by function/method name; supplements the plain-sentence
	// error text the original design calls for with enough context to
	// locate the failure without a debugger.
	Frames []string
}

func (e *RuntimeError) Error() string { return e.Message }

func newRuntimeError(frames []string, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Message:  fmt.Sprintf(format, args...),
		ExitCode: 70,
		Frames:   append([]string(nil), frames...),
	}
}
