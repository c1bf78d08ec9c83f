// Package pairing handles the out-of-band pairing code exchange: encoding
// the local identity as a shareable code and registering codes received
// from peers as contacts. The handshake that verifies the pairing happens
// at the transport layer, outside this package.
package pairing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// codePrefix versions the pairing code format.
const codePrefix = "aa:pair:v1:"

// Code is the identity payload exchanged when two users pair.
type Code struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// Encode serializes a pairing code to its shareable string form,
// suitable for QR rendering or copy-paste.
func Encode(c Code) (string, error) {
	if c.UserID == "" {
		return "", fmt.Errorf("pairing code requires a user id")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode pairing code: %w", err)
	}
	return codePrefix + base64.RawURLEncoding.EncodeToString(payload), nil
}

// Decode parses a shareable pairing code string.
func Decode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, codePrefix)
	if !ok {
		return Code{}, fmt.Errorf("not a pairing code: missing %q prefix", codePrefix)
	}
	payload, err := base64.RawURLEncoding.DecodeString(rest)
	if err != nil {
		return Code{}, fmt.Errorf("malformed pairing code: %w", err)
	}
	var c Code
	if err := json.Unmarshal(payload, &c); err != nil {
		return Code{}, fmt.Errorf("malformed pairing code: %w", err)
	}
	if c.UserID == "" {
		return Code{}, fmt.Errorf("malformed pairing code: empty user id")
	}
	return c, nil
}
