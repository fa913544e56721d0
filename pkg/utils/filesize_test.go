package utils

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"zero", 0, "0 B"},
		{"negative", -5, "0 B"},
		{"bytes", 512, "512 B"},
		{"kilobytes", 2048, "2.00 KB"},
		{"megabytes", 5 * MB, "5.00 MB"},
		{"gigabytes", 3 * GB, "3.00 GB"},
		{"terabytes", 2 * TB, "2.00 TB"},
		{"fractional MB", MB + MB/2, "1.50 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBytes(tt.input); got != tt.expected {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"bare bytes", "1024", 1024},
		{"kilobytes", "100KB", 100 * KB},
		{"megabytes", "10MB", 10 * MB},
		{"gigabytes", "2GB", 2 * GB},
		{"terabytes", "1TB", TB},
		{"short unit", "5M", 5 * MB},
		{"lowercase", "10mb", 10 * MB},
		{"mixed case", "10Mb", 10 * MB},
		{"fractional", "5.5GB", int64(5.5 * GB)},
		{"with space", "10 MB", 10 * MB},
		{"surrounding space", " 100KB ", 100 * KB},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if err != nil {
				t.Fatalf("ParseSize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSizeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only spaces", "   "},
		{"only unit", "MB"},
		{"unknown unit", "10XB"},
		{"garbage", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSize(tt.input); err == nil {
				t.Errorf("ParseSize(%q) expected error, got nil", tt.input)
			}
		})
	}
}
