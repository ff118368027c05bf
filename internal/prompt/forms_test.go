package prompt

import "testing"

func TestParseYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"", 2025, false},
		{"  ", 2025, false},
		{"2024", 2024, false},
		{" 1900 ", 1900, false},
		{"2100", 2100, false},
		{"1899", 0, true},
		{"2101", 0, true},
		{"24", 0, true},
		{"20x4", 0, true},
		{"02024", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseYear(tt.in, 2025)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseYear(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseYear(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		`"/tmp/in box"`: "/tmp/in box",
		" '/tmp/a' ":    "/tmp/a",
		"/tmp/b\t":      "/tmp/b",
		"  ":            "",
	}
	for in, want := range tests {
		if got := cleanPath(in); got != want {
			t.Errorf("cleanPath(%q) = %q, want %q", in, got, want)
		}
	}
}
