package formatting_test

import (
	"testing"

	"github.com/JaimeStill/aligner/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"kilobytes", "1KB", 1024, false},
		{"upload limit", "10MB", 10 * 1024 * 1024, false},
		{"lowercase with space", "50 mb", 50 * 1024 * 1024, false},
		{"fractional", "1.5KB", 1536, false},
		{"surrounding whitespace", "  2GB ", 2 * 1024 * 1024 * 1024, false},
		{"empty", "", 0, true},
		{"binary spelling", "2MiB", 2 * 1024 * 1024, false},
		{"single letter", "512k", 512 * 1024, false},
		{"unknown unit", "10XB", 0, true},
		{"unit only", "MB", 0, true},
		{"overflow", "9000000EB", 0, true},
		{"negative", "-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBytes(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseBytes(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n         int64
		precision int
		want      string
	}{
		{0, 2, "0 B"},
		{500, 0, "500 B"},
		{10 * 1024 * 1024, 0, "10 MB"},
		{1536 * 1024, 1, "1.5 MB"},
		{1024, -1, "1 KB"},
		{1023, 3, "1023 B"},
		{75 * 1024 * 1024, 1, "75.0 MB"},
	}

	for _, tt := range tests {
		if got := formatting.FormatBytes(tt.n, tt.precision); got != tt.want {
			t.Errorf("FormatBytes(%d, %d) = %q, want %q", tt.n, tt.precision, got, tt.want)
		}
	}
}
