package match

import (
	"slices"
	"testing"
)

func TestResourceKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Nightly ETL", "nightly_etl"},
		{"  Daily -- Report (v2) ", "daily_report_v2"},
		{"already_snake", "already_snake"},
		{"__Leading and trailing__", "leading_and_trailing"},
		{"Café Sales", "café_sales"},
		{"Cafe\u0301 Sales", "café_sales"},
		{"job.with.dots", "job_with_dots"},
		{"123 Numbers", "123_numbers"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ResourceKey(tt.input); got != tt.expected {
				t.Errorf("ResourceKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"IngestOrders", "ingestorders"},
		{"ingest_orders", "ingestorders"},
		{"ingest-orders.py", "ingestorderspy"},
		{"SQLTables", "sqltables"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeIdent(tt.input); got != tt.expected {
				t.Errorf("NormalizeIdent(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenizeCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"IngestOrders", []string{"Ingest", "Orders"}},
		{"load_SQLTables", []string{"load", "SQL", "Tables"}},
		{"orderID", []string{"order", "ID"}},
		{"simple", []string{"simple"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := tokenizeCamelCase(tt.input); !slices.Equal(got, tt.expected) {
				t.Errorf("tokenizeCamelCase(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
