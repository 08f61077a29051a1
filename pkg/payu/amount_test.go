package payu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountsEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		equal bool
	}{
		{"identical strings", "100.00", "100.00", true},
		{"trailing zero difference", "100.0", "100.00", true},
		{"no decimal point", "100", "100.00", true},
		{"different values", "100.00", "100.01", false},
		{"both empty", "", "", true},
		{"one side empty", "", "5.00", false},
		{"other side empty", "5.00", "", false},
		{"unparseable falls back to string compare", "abc", "abc", true},
		{"unparseable unequal strings", "abc", "abd", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, AmountsEqual(tt.a, tt.b))
		})
	}
}

func TestRoundedCost(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		charges  string
		expected string
	}{
		{"plain amount", "100.00", "", "100.00"},
		{"with charges", "100.00", "5.00", "105.00"},
		{"half up rounding", "100.005", "", "100.01"},
		{"half up on sum", "99.995", "0.01", "100.01"},
		{"integer input", "100", "", "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RoundedCost(tt.amount, tt.charges)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := RoundedCost("not-a-number", "")
	assert.Error(t, err)
}

func TestSurcharge(t *testing.T) {
	got, err := Surcharge("100.00", 2.5)
	require.NoError(t, err)
	assert.Equal(t, "2.50", got)

	got, err = Surcharge("100.00", 0)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// 取整规则同入账金额
	got, err = Surcharge("99.99", 2.5)
	require.NoError(t, err)
	assert.Equal(t, "2.50", got)
}
