package extract

import "testing"

func TestContentText(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"simple show", "BT /F1 12 Tf (Hello) Tj ET", "Hello"},
		{"positioning breaks words", "BT (Access) Tj 10 0 Td (Control) Tj ET", "Access Control"},
		{"kerning gap", "BT [(Risk) -300 (Manage) 20 (ment)] TJ ET", "Risk Management"},
		{"hex string", "BT <48656C6C6F> Tj ET", "Hello"},
		{"utf16 hex string", "BT <FEFF00410042> Tj ET", "AB"},
		{"escapes and nesting", `BT (a\(b\) (c) \101) Tj ET`, "a(b) (c) A"},
		{"quote operator starts line", "BT (first) Tj (second) ' ET", "first\nsecond"},
		{"comments ignored", "% header\nBT (text) Tj ET", "text"},
		{"separate text objects", "BT (A) Tj ET BT (B) Tj ET", "A B"},
		{"dictionary skipped", "/Span << /MCID 0 >> BDC BT (tagged) Tj ET EMC", "tagged"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeSpace(contentText([]byte(tt.stream)))
			if got != tt.want {
				t.Errorf("contentText(%q) = %q, want %q", tt.stream, got, tt.want)
			}
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  leading and   trailing  ", "leading and trailing"},
		{"line\n\n  next", "line\nnext"},
		{"bell\x07gone", "bellgone"},
	}

	for _, tt := range tests {
		if got := normalizeSpace(tt.in); got != tt.want {
			t.Errorf("normalizeSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
