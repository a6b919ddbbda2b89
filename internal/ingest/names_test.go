package ingest

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"Иванов", "Иванов", true},
		{"  Петров \t", "Петров", true},
		{"", "", false},
		{"   ", "", false},
		{"null", "", false},
		{"NULL", "", false},
		{" None ", "", false},
		{"нул", "", false},
		{"НУЛ", "", false},
		{"nullify", "nullify", true},
		{"иванов", "иванов", true},
	}

	for _, tt := range tests {
		got, ok := NormalizeName(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeName(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
