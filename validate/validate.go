// Package validate checks decoded form fields against declarative
// schemas: a schema is just a map from field name to its constraint set,
// interpreted by Check.
package validate

import (
	"fmt"
	"regexp"
	"sort"
)

// Format names a syntactic constraint on a field value.
type Format int

// Supported field formats.
const (
	FormatNone Format = iota
	FormatEmail
)

// Matches the mailbox@domain.tld shape. Deliberately loose; we only need
// to reject obviously broken addresses, not implement RFC 5322.
var matchEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Field describes the constraints on a single form field.
type Field struct {
	Required bool
	MinLen   int
	MaxLen   int
	Format   Format
	OneOf    []string
}

// Schema maps field names to their constraints.
type Schema map[string]Field

// FieldError reports one constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the full list of violations for a submission. The first
// entry is the one surfaced to the client.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	return fmt.Sprintf("%s: %s", e[0].Field, e[0].Message)
}

// Check validates fields against schema. Validation is all-or-nothing:
// a non-nil return means the submission is rejected outright. Fields are
// checked in sorted name order so the error surfaced to the client is
// the same on every run.
func Check(schema Schema, fields map[string]string) Errors {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)
	var errs Errors
	for _, name := range names {
		constraints := schema[name]
		value := fields[name]
		if value == "" {
			if constraints.Required {
				errs = append(errs, FieldError{name, "is required"})
			}
			continue
		}
		if constraints.MinLen > 0 && len(value) < constraints.MinLen {
			errs = append(errs, FieldError{name,
				fmt.Sprintf("must be at least %d characters", constraints.MinLen)})
			continue
		}
		if constraints.MaxLen > 0 && len(value) > constraints.MaxLen {
			errs = append(errs, FieldError{name,
				fmt.Sprintf("must be at most %d characters", constraints.MaxLen)})
			continue
		}
		if constraints.Format == FormatEmail && !matchEmail.MatchString(value) {
			errs = append(errs, FieldError{name, "must be a valid email address"})
			continue
		}
		if len(constraints.OneOf) > 0 && !contains(constraints.OneOf, value) {
			errs = append(errs, FieldError{name, "is not a recognized value"})
		}
	}
	return errs
}

func contains(list []string, value string) bool {
	for _, element := range list {
		if element == value {
			return true
		}
	}
	return false
}
