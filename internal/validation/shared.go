package validation

import (
	"fmt"
	"slices"
	"strings"
)

// Error collects field-level validation failures.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	return strings.Join(e.list(true), "; ")
}

// Messages returns the human-readable failures, ordered by field name.
func (e *Error) Messages() []string {
	return e.list(false)
}

func (e *Error) list(withField bool) []string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		if withField {
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
		} else {
			msgs = append(msgs, e.Fields[field])
		}
	}
	return msgs
}
