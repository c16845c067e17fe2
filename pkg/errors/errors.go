// Package errors provides structured error handling for the loan ROI
// pipeline. Error types carry enough context to be logged as structured
// events and are built on cockroachdb/errors so every error created here
// has a stack trace attached.
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NotFittedError is returned when Predict is called on an estimator that
// has not been trained yet.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("loanroi: %s: estimator is not fitted. Call Fit() before %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the shape of a matrix or vector does not
// match what an operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("loanroi: %s: dimension mismatch on %s. Expected %d, got %d", e.Op, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// SchemaError is returned when the column set of a feature matrix drifts
// from the one the estimator was trained on. Feature misalignment is a
// configuration error, never something to paper over at predict time.
type SchemaError struct {
	Op       string
	Expected []string
	Got      []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("loanroi: %s: feature schema mismatch. Expected [%s], got [%s]",
		e.Op, strings.Join(e.Expected, ","), strings.Join(e.Got, ","))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Strs("expected", e.Expected).
		Strs("got", e.Got).
		Str("type", "SchemaError")
}

// NewSchemaError creates a SchemaError with a stack trace.
func NewSchemaError(op string, expected, got []string) error {
	err := &SchemaError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// MissingTargetError is returned when a loan selected for training has no
// realized ROI in the outcome map.
type MissingTargetError struct {
	LoanID int64
}

func (e *MissingTargetError) Error() string {
	return fmt.Sprintf("loanroi: loan %d has no realized ROI in the outcome map", e.LoanID)
}

// NewMissingTargetError creates a MissingTargetError with a stack trace.
func NewMissingTargetError(loanID int64) error {
	err := &MissingTargetError{LoanID: loanID}
	return errors.WithStack(err)
}

// ValidationError is returned when an input parameter or data table fails
// validation before any work is attempted.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("loanroi: validation failed for '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an existing error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an existing error with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData is returned when an operation receives an empty table or matrix.
	ErrEmptyData = New("empty data")
)
