package validation

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	PositiveFloat("qty", 0, v)
	RangeFloat("rate", 120, 0, 100, v)
	BankAccount("bank", "19-2000145398/0800", v)
	OneOf("method", "cheque", []string{"cash", "card"}, v)

	want := map[string]string{
		"name":   "required",
		"qty":    "must_be_positive",
		"rate":   "out_of_range",
		"bank":   "invalid_bank_account",
		"method": "invalid_choice",
	}
	for k, code := range want {
		if v[k] != code {
			t.Errorf("%s = %q, want %q", k, v[k], code)
		}
	}
}

func TestValidatorsAccept(t *testing.T) {
	v := make(Violations)
	Required("name", "Acme", v)
	PositiveFloat("qty", 1, v)
	RangeFloat("rate", 21, 0, 100, v)
	BankAccount("bank", "19-2000145399/0800", v)
	BankAccount("empty", "", v)
	OneOf("method", "cash", []string{"cash", "card"}, v)
	if !v.Empty() {
		t.Fatalf("unexpected violations: %v", v)
	}
	if v.Err() != nil {
		t.Fatalf("Err() should be nil when empty")
	}
}

func TestDate(t *testing.T) {
	fallback := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	v := make(Violations)
	if got := Date("d", "", fallback, v); !got.Equal(fallback) {
		t.Errorf("empty date = %v, want fallback", got)
	}
	if got := Date("d", "2025-03-15", fallback, v); got.Day() != 15 || got.Month() != time.March {
		t.Errorf("parsed date = %v", got)
	}
	Date("bad", "15.3.2025", fallback, v)
	if v["bad"] != "invalid_date" {
		t.Errorf("expected invalid_date, got %v", v)
	}
}

func TestViolationsAsError(t *testing.T) {
	v := Violations{Indexed("items", 1, "description"): "required"}
	var err error = v
	var got Violations
	if !errors.As(err, &got) {
		t.Fatalf("errors.As failed")
	}
	if got["items[1].description"] != "required" {
		t.Errorf("unexpected key set: %v", got)
	}
	if err.Error() != "validation failed: items[1].description: required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFinite(t *testing.T) {
	v := make(Violations)
	Finite("inf", math.Inf(1), v)
	Finite("nan", math.NaN(), v)
	Finite("ok", 1e300, v)
	if v["inf"] != "invalid" || v["nan"] != "invalid" {
		t.Fatalf("violations = %v", v)
	}
	if _, ok := v["ok"]; ok {
		t.Fatal("finite value rejected")
	}
}
