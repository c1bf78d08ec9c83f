package pairing

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := Code{UserID: "u-1", DisplayName: "Alice", Avatar: "a.png"}
	s, err := Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s, "aa:pair:v1:") {
		t.Errorf("encoded code = %q, want aa:pair:v1: prefix", s)
	}

	got, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}
}

func TestEncodeRequiresUserID(t *testing.T) {
	if _, err := Encode(Code{DisplayName: "nobody"}); err == nil {
		t.Error("Encode without user id should fail")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong prefix", "aa:link:v1:abc"},
		{"bad base64", "aa:pair:v1:!!!"},
		{"bad json", "aa:pair:v1:bm90anNvbg"},
		{"empty user id", "aa:pair:v1:e30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.input); err == nil {
				t.Errorf("Decode(%q) should fail", tt.input)
			}
		})
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	s, err := Encode(Code{UserID: "u-1", DisplayName: "Alice"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode("  " + s + "\n"); err != nil {
		t.Errorf("Decode with surrounding whitespace: %v", err)
	}
}
