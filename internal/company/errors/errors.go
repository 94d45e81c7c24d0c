package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrMalformedID  = fmt.Errorf("malformed id")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.Fields[k]))
	}
	return "Company validation failed: " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrInvalidInput) match validation failures.
func (v *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
