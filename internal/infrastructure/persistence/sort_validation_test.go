package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{"ASC", "ASC"},
		{" asc ", "ASC"},
		{"desc", "DESC"},
		{"DESC", "DESC"},
		{"", "DESC"},
		{"sideways", "DESC"},
		{"asc; DROP TABLE raw_gold_lots", "DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	allowed := map[string]bool{
		"created_at":      true,
		"weight_received": true,
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"allowed field passes through", "weight_received", "weight_received"},
		{"empty falls back to default", "", "created_at"},
		{"whitespace falls back to default", "   ", "created_at"},
		{"unknown column falls back to default", "branch_id", "created_at"},
		{"sql expression falls back to default", "(SELECT count(*) FROM sqlite_master)", "created_at"},
		{"stacked statement falls back to default", "created_at; DELETE FROM raw_gold_lots", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowed, "created_at"))
		})
	}
}
