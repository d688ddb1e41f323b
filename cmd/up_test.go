package cmd

import "testing"

func TestShortGen(t *testing.T) {
	tests := []struct {
		name string
		gen  string
		want string
	}{
		{"full uuid", "2f1c9a40-9a3e-4d0f-8f2a-1c2d3e4f5a6b", "2f1c9a40"},
		{"short value kept", "abc", "abc"},
		{"empty", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shortGen(tt.gen); got != tt.want {
				t.Errorf("shortGen(%q) = %q, want %q", tt.gen, got, tt.want)
			}
		})
	}
}
