package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs string
	}{
		{"bare", "quit", "quit", ""},
		{"with args", "search hello world", "search", "hello world"},
		{"uppercase name", "QUIT", "quit", ""},
		{"surrounding space", "  pair  ", "pair", ""},
		{"args trimmed", "alias u-1   Bob", "alias", "u-1   Bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCommand(tt.input)
			if got.Name != tt.wantName || got.Args != tt.wantArgs {
				t.Errorf("ParseCommand(%q) = %+v, want {%s %s}", tt.input, got, tt.wantName, tt.wantArgs)
			}
		})
	}
}
