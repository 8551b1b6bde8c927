package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty history", nil, "2025-001"},
		{"highest suffix wins", []string{"2025-001", "2025-009", "2025-002"}, "2025-010"},
		{"prefix and width kept", []string{"F2025-009"}, "F2025-010"},
		{"width grows on carry", []string{"2025-999"}, "2025-1000"},
		{"no trailing digits skipped", []string{"draft", "2024-007", "n/a"}, "2024-008"},
		{"only unparseable falls back", []string{"draft", "x-"}, "2025-001"},
		{"pure digits", []string{"0042"}, "0043"},
		{"longest digit group", []string{"INV2025007"}, "INV2025008"},
		{"overflowing suffix skipped", []string{"99999999999999999999999", "A-5"}, "A-6"},
		{"max uint64 suffix skipped", []string{"F-18446744073709551615", "A-5"}, "A-6"},
		{"only max uint64 suffix", []string{"F-18446744073709551615"}, "2025-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextNumber(tt.existing, 2025))
		})
	}
}

func TestNextNumber_LastTieWins(t *testing.T) {
	assert.Equal(t, "B-0010", NextNumber([]string{"A-9", "B-0009"}, 2025))
	assert.Equal(t, "A-10", NextNumber([]string{"B-0009", "A-9"}, 2025))
}

func TestNextNumber_DoesNotMutateInput(t *testing.T) {
	in := []string{"2025-003", "2025-001"}
	NextNumber(in, 2025)
	assert.Equal(t, []string{"2025-003", "2025-001"}, in)
}

func TestVariableSymbol(t *testing.T) {
	assert.Equal(t, "2025001", VariableSymbol("F2025-001"))
	assert.Equal(t, "", VariableSymbol("draft"))
	assert.Equal(t, "", VariableSymbol(""))
}
