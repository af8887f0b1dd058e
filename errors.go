package jsonpath

import (
	"errors"
	"fmt"

	"go.pathkit.dev/jsonpath/internal/functions"
	"go.pathkit.dev/jsonpath/internal/syntax"
)

// ErrSyntax roots every Parse failure. Use errors.As for the
// SyntaxError carrying the offending position.
var ErrSyntax = syntax.ErrSyntax

// ErrEvaluation roots every dynamic failure raised while evaluating a
// Path (currently: a match()/search() regex that failed to compile,
// exceeded its timeout or exceeded the regex budget, or an error
// returned by a registered function). Use errors.As for
// EvaluationError.
var ErrEvaluation = functions.ErrEvaluation

// SyntaxError reports a malformed query and the byte offset within it
// where the lexer or parser gave up.
type SyntaxError struct {
	Position int
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsonpath: syntax error at position %d: %s", e.Position, e.Message)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// EvaluationError reports a failure raised while evaluating a Path
// against a document.
type EvaluationError struct {
	Message string
	Cause   error
}

func (e *EvaluationError) Error() string { return "jsonpath: evaluation error: " + e.Message }

func (e *EvaluationError) Unwrap() error { return e.Cause }

// Is makes every EvaluationError match ErrEvaluation, whatever its Cause.
func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

func wrapSyntaxError(err error) error {
	var se *syntax.Error
	if errors.As(err, &se) {
		return &SyntaxError{Position: se.Position, Message: se.Reason}
	}
	return err
}

func wrapEvaluationError(err error) error {
	if err == nil {
		return nil
	}
	return &EvaluationError{Message: err.Error(), Cause: err}
}
