package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidImage = errors.New("uploaded file is not a valid image")
)

// FieldErrors maps a field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// ValidationError reports rejected input. Fields holds top-level messages;
// Tickets holds one entry per requested ticket when a booking is rejected.
type ValidationError struct {
	Fields  FieldErrors
	Tickets []FieldErrors
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{Fields: FieldErrors{}}
	v.Fields.Add(field, message)
	return v
}

func newTicketsError(n int) *ValidationError {
	v := &ValidationError{Fields: FieldErrors{}, Tickets: make([]FieldErrors, n)}
	for i := range v.Tickets {
		v.Tickets[i] = FieldErrors{}
	}
	return v
}

// TicketError builds an error for entry i of an n-ticket request.
func TicketError(n, i int, field, message string) *ValidationError {
	v := newTicketsError(n)
	v.Tickets[i].Add(field, message)
	return v
}

// TicketErrors collects per-entry problems of an n-ticket request.
type TicketErrors struct {
	err *ValidationError
	bad bool
}

func NewTicketErrors(n int) *TicketErrors {
	return &TicketErrors{err: newTicketsError(n)}
}

func (t *TicketErrors) Add(i int, field, message string) {
	t.err.Tickets[i].Add(field, message)
	t.bad = true
}

// Has reports whether entry i already failed.
func (t *TicketErrors) Has(i int) bool {
	return len(t.err.Tickets[i]) > 0
}

// Err returns nil when nothing was added.
func (t *TicketErrors) Err() error {
	if !t.bad {
		return nil
	}
	return t.err
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, field := range sortedKeys(e.Fields) {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], "; ")))
	}
	for i, fe := range e.Tickets {
		for _, field := range sortedKeys(fe) {
			parts = append(parts, fmt.Sprintf("tickets[%d].%s: %s", i, field, strings.Join(fe[field], "; ")))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Detail is the JSON body returned to API callers.
func (e *ValidationError) Detail() map[string]any {
	out := make(map[string]any, len(e.Fields)+1)
	for field, msgs := range e.Fields {
		out[field] = msgs
	}
	if e.Tickets != nil {
		out["tickets"] = e.Tickets
	}
	return out
}

func sortedKeys(f FieldErrors) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
