package functions

import (
	"errors"
	"fmt"
)

// ErrUnknownFunction is returned when evaluation reaches a call to a
// name the Registry does not hold (Lookup reports such a name with
// false). The parser rejects unknown names with a Syntax error of its
// own before evaluation starts.
var ErrUnknownFunction = errors.New("jsonpath: unknown function")

// ErrEvaluation roots every runtime function-evaluation failure
// (regex compilation failure, regex timeout) so callers can
// errors.Is against it regardless of which function raised it.
var ErrEvaluation = errors.New("jsonpath: evaluation error")

func evaluationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEvaluation, fmt.Sprintf(format, args...))
}
