package normalize

import "testing"

func TestStudentNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "S001", "S001"},
		{"lower case", "s001", "S001"},
		{"surrounding space", "  S012 ", "S012"},
		{"persian digits", "S۰۲۳", "S023"},
		{"arabic-indic digits", "S٠٠٧", "S007"},
		{"full width", "Ｓ００１", "S001"},
		{"zero width non joiner", "S0\u200c01", "S001"},
		{"demo account", "demo", "DEMO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StudentNumber(tt.input); got != tt.want {
				t.Errorf("StudentNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNationalCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "929986644", "929986644"},
		{"leading zero stripped", "0921111111", "921111111"},
		{"persian digits with leading zero", "۰۹۲۱۱۱۱۱۱۱", "921111111"},
		{"dashes and spaces", "092-111 1111", "921111111"},
		{"right to left mark", "\u200f0929916913", "929916913"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NationalCode(tt.input); got != tt.want {
				t.Errorf("NationalCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("۱۲۳ ٤٥٦"); got != "123456" {
		t.Errorf("Digits() = %q, want 123456", got)
	}
}
