// Package validator accumulates field errors for configuration checks.
package validator

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Validator collects errors keyed by field name.
type Validator struct {
	FieldErrors    map[string][]string `json:"fieldErrors,omitempty"`
	NonFieldErrors []string            `json:"nonFieldErrors,omitempty"`
}

// Validatable is implemented by values that can check themselves.
type Validatable interface {
	Validate(v *Validator)
}

// Valid reports whether no errors were recorded.
func (v *Validator) Valid() bool {
	return len(v.FieldErrors) == 0 && len(v.NonFieldErrors) == 0
}

// AddFieldError records message for key.
func (v *Validator) AddFieldError(key, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string][]string)
	}
	v.FieldErrors[key] = append(v.FieldErrors[key], message)
}

// AddNonFieldError records an error not tied to a single field.
func (v *Validator) AddNonFieldError(message string) {
	v.NonFieldErrors = append(v.NonFieldErrors, message)
}

// CheckField records message for key unless ok.
func (v *Validator) CheckField(ok bool, key, message string) {
	if !ok {
		v.AddFieldError(key, message)
	}
}

// JSON returns the recorded errors as JSON.
func (v *Validator) JSON() []byte {
	b, _ := json.Marshal(v)
	return b
}

// Err returns nil when valid, otherwise an error listing every recorded
// message in field order.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}

	keys := make([]string, 0, len(v.FieldErrors))
	for k := range v.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, msg := range v.FieldErrors[k] {
			parts = append(parts, k+": "+msg)
		}
	}
	parts = append(parts, v.NonFieldErrors...)
	return fmt.Errorf("validation failed: %s", strings.Join(parts, "; "))
}

// Validate runs req.Validate on a fresh Validator.
func Validate(req Validatable) error {
	v := &Validator{}
	req.Validate(v)
	return v.Err()
}

// NotBlank returns true if value contains non-whitespace characters.
func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Blank returns true if value is empty or whitespace only.
func Blank(value string) bool {
	return !NotBlank(value)
}

// MinInt returns true if value >= n.
func MinInt(value, n int64) bool {
	return value >= n
}

// MinFloat returns true if value >= n.
func MinFloat(value, n float64) bool {
	return value >= n
}

// MinDuration returns true if d >= n.
func MinDuration(d, n time.Duration) bool {
	return d >= n
}

// PermittedValue returns true if value is one of permitted.
func PermittedValue[T comparable](value T, permitted ...T) bool {
	return slices.Contains(permitted, value)
}

// Unique returns true if values contains no duplicates.
func Unique[T comparable](values []T) bool {
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}
