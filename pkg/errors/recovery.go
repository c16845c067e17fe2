package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error created from a recovered panic. Estimator
// implementations live in third-party libraries, and a panic inside Fit or
// Predict must surface as an error on that model's run instead of taking
// down the whole batch.
type PanicError struct {
	PanicValue interface{}
	StackTrace string
	Operation  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// String includes the stack trace captured at panic time.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s", e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a PanicError for the given operation and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error. Use with defer and a pointer to
// the named error return:
//
//	func (t *Trainer) Fit(...) (err error) {
//	    defer errors.Recover(&err, "Trainer.Fit")
//	    ...
//	}
//
// An error already set by the function body is preserved; the panic error
// wraps it.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)
		if *err != nil {
			*err = Wrapf(*err, "additionally recovered from panic: %v", r)
			return
		}
		*err = WithStack(panicErr)
	}
}
