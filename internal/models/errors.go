// Package models defines the data structures for the homebuyer lead engine.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors
var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidPhone   = errors.New("phone number must have 10 to 15 digits")
	ErrMissingName    = errors.New("name cannot be empty")
	ErrLeadNotFound   = errors.New("lead not found")
	ErrInvalidLocale  = errors.New("unsupported locale")
	ErrMissingAnswers = errors.New("wizard answers are required")
)

// Validation codes reported in FieldError.Code.
const (
	CodeRequired         = "required"
	CodeMustBePositive   = "mustBePositive"
	CodeCannotBeNegative = "cannotBeNegative"
	CodeOutOfRange       = "outOfRange"
	CodeInvalid          = "invalid"
	CodeConflict         = "conflict"
)

// FieldError is a validation failure on a single form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFieldError builds a FieldError with the default message for code.
func NewFieldError(field, code string) *FieldError {
	var msg string
	switch code {
	case CodeRequired:
		msg = "is required"
	case CodeMustBePositive:
		msg = "must be greater than zero"
	case CodeCannotBeNegative:
		msg = "cannot be negative"
	case CodeOutOfRange:
		msg = "is out of range"
	case CodeConflict:
		msg = "only one representation may be provided"
	default:
		msg = "is invalid"
	}
	return &FieldError{Field: field, Code: code, Message: msg}
}

// ValidationErrors collects every field failure found during finalization.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for i := range v {
		parts = append(parts, v[i].Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns a field -> message map, the shape the form layer renders inline.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Message
	}
	return out
}

// Add appends err, unwrapping a *FieldError when possible.
func (v *ValidationErrors) Add(err error) {
	var fe *FieldError
	if errors.As(err, &fe) {
		*v = append(*v, *fe)
		return
	}
	*v = append(*v, FieldError{Field: "form", Code: CodeInvalid, Message: err.Error()})
}
