package quantity

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 1},
		{"   ", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"-0.5", 1},
		{"1", 1},
		{"6", 6},
		{"1.5", 1.5},
		{"1,5", 1.5},
		{"0,25", 0.25},
		{" 2 ", 2},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(0); got != 1 {
		t.Errorf("Normalize(0) = %v, want 1", got)
	}
	if got := Normalize(-2); got != 1 {
		t.Errorf("Normalize(-2) = %v, want 1", got)
	}
	if got := Normalize(0.5); got != 0.5 {
		t.Errorf("Normalize(0.5) = %v, want 0.5", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(6); got != "6" {
		t.Errorf("Format(6) = %q, want %q", got, "6")
	}
	if got := Format(1.5); got != "1.5" {
		t.Errorf("Format(1.5) = %q, want %q", got, "1.5")
	}
}
