package encoding

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii", "Smile", "Smile"},
		{"composed kana", "\u304c", "\u304c"},
		{"decomposed kana", "\u304b\u3099", "\u304c"},
		{"decomposed latin", "e\u0301", "\u00e9"},
		{"nul padding", "Blink\x00\x00", "Blink"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if got := NormalizePath(`Armature\Head\Face`); got != "Armature/Head/Face" {
		t.Errorf("NormalizePath = %q", got)
	}
}
