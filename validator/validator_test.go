package validator

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestValidatorBasic(t *testing.T) {
	v := &Validator{}
	if !v.Valid() {
		t.Errorf("expected empty validator to be valid")
	}
	if v.Err() != nil {
		t.Errorf("expected nil error from empty validator")
	}

	v.AddFieldError("addr", "cannot be blank")
	if v.Valid() {
		t.Errorf("expected validator with field error to be invalid")
	}

	v.AddNonFieldError("general failure")

	jsonData := v.JSON()
	var decoded Validator
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Errorf("failed to unmarshal JSON: %v", err)
	}
	if len(decoded.FieldErrors) == 0 || len(decoded.NonFieldErrors) == 0 {
		t.Errorf("expected JSON to contain errors")
	}
}

func TestErrListsFieldsInOrder(t *testing.T) {
	v := &Validator{}
	v.CheckField(false, "b", "second")
	v.CheckField(false, "a", "first")
	v.CheckField(true, "c", "never")
	v.AddNonFieldError("last")

	err := v.Err()
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "validation failed: a: first; b: second; last"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

type fake struct{ name string }

func (f fake) Validate(v *Validator) {
	v.CheckField(NotBlank(f.name), "name", "cannot be blank")
}

func TestValidate(t *testing.T) {
	if err := Validate(fake{name: "ok"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := Validate(fake{name: "  "})
	if err == nil || !strings.Contains(err.Error(), "name: cannot be blank") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStringValidators(t *testing.T) {
	if !NotBlank("hello") {
		t.Errorf("expected NotBlank to be true")
	}
	if NotBlank("   ") {
		t.Errorf("expected NotBlank to be false for spaces")
	}
	if !Blank("   ") {
		t.Errorf("expected Blank to be true for spaces")
	}
	if Blank("hi") {
		t.Errorf("expected Blank to be false")
	}
}

func TestNumericValidators(t *testing.T) {
	if !MinInt(5, 3) || MinInt(2, 3) {
		t.Errorf("MinInt failed")
	}
	if !MinFloat(3.5, 3.0) || MinFloat(2.9, 3.0) {
		t.Errorf("MinFloat failed")
	}
	if !MinDuration(5*time.Second, 3*time.Second) || MinDuration(2*time.Second, 3*time.Second) {
		t.Errorf("MinDuration failed")
	}
}

func TestPermittedValue(t *testing.T) {
	if !PermittedValue("a", "a", "b", "c") {
		t.Errorf("expected value to be permitted")
	}
	if PermittedValue("z", "a", "b", "c") {
		t.Errorf("expected value not to be permitted")
	}
	if !PermittedValue(10, 5, 10, 15) {
		t.Errorf("expected int to be permitted")
	}
}

func TestUnique(t *testing.T) {
	if !Unique([]string{"/static/", "/geojson/"}) {
		t.Errorf("expected distinct values to be unique")
	}
	if Unique([]string{"/static/", "/static/"}) {
		t.Errorf("expected duplicates to be reported")
	}
}
