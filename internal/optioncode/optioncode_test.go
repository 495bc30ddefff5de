package optioncode

import (
	"strings"
	"testing"
)

func TestDerive(t *testing.T) {
	cases := []struct {
		name  string
		label string
		want  string
	}{
		{"simple", "Star High", "STAR_HIGH"},
		{"already upper", "HS1", "HS1"},
		{"punctuation collapsed", "Bright -- High!!", "BRIGHT_HIGH"},
		{"leading and trailing junk", "  ***Alpha*** ", "ALPHA"},
		{"digits kept", "Grade 10b", "GRADE_10B"},
		{"cjk preserved", "第一中学", "第一中学"},
		{"mixed cjk", "北京 No.1", "北京_NO_1"},
		{"empty", "", ""},
		{"only junk", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.label); got != tc.want {
				t.Fatalf("Derive(%q) = %q, want %q", tc.label, got, tc.want)
			}
		})
	}
}

func TestDeriveTruncates(t *testing.T) {
	long := strings.Repeat("ab ", 40)
	got := Derive(long)
	if len([]rune(got)) > MaxLength {
		t.Fatalf("derived code %q exceeds %d runes", got, MaxLength)
	}
	if strings.HasSuffix(got, "_") {
		t.Fatalf("derived code %q has trailing underscore after truncation", got)
	}
}

func TestValidSetCode(t *testing.T) {
	valid := []string{"school", "program_2024", "a", "x9_y"}
	for _, code := range valid {
		if !ValidSetCode(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}
	invalid := []string{"", "School", "9lives", "_lead", "has-dash", "has space"}
	for _, code := range invalid {
		if ValidSetCode(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}
