package errors

import (
	"fmt"
	"strings"
)

// Problem is a single validation failure within a batch.
type Problem struct {
	Field   string // e.g. "edges[3].from"
	Message string
}

func (p Problem) String() string {
	if p.Field == "" {
		return p.Message
	}
	return p.Field + ": " + p.Message
}

// ValidationError aggregates every problem found while validating an input
// batch. Validation runs to completion before any mutation, so callers see
// all problems at once.
type ValidationError struct {
	Code     Code
	Subject  string
	Problems []Problem
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.summary())
}

func (e *ValidationError) summary() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	noun := "problem"
	if len(e.Problems) != 1 {
		noun = "problems"
	}
	return fmt.Sprintf("invalid %s (%d %s): %s", e.Subject, len(e.Problems), noun, strings.Join(parts, "; "))
}

// Validator collects problems for one subject.
//
//	v := errors.NewValidator(errors.ErrCodeInvalidGraph, "graph")
//	if len(nodes) == 0 {
//	    v.Add("nodes", "must not be empty")
//	}
//	return v.Err()
type Validator struct {
	code     Code
	subject  string
	problems []Problem
}

// NewValidator creates a validator that reports under code.
func NewValidator(code Code, subject string) *Validator {
	return &Validator{code: code, subject: subject}
}

// Add records a problem for field.
func (v *Validator) Add(field, format string, args ...any) {
	v.problems = append(v.problems, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Len returns the number of recorded problems.
func (v *Validator) Len() int { return len(v.problems) }

// Err returns nil if no problem was recorded, otherwise a *ValidationError.
func (v *Validator) Err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{
		Code:     v.code,
		Subject:  v.subject,
		Problems: append([]Problem(nil), v.problems...),
	}
}
