package utils

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of randomness, got %d", len(raw))
	}

	other, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if token == other {
		t.Fatal("two generated tokens collided")
	}
}

func TestGenerateActivationCode(t *testing.T) {
	code, err := GenerateActivationCode(12)
	if err != nil {
		t.Fatalf("GenerateActivationCode: %v", err)
	}
	if len(code) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(code))
	}
	for _, char := range code {
		if !strings.ContainsRune(codeAlphabet, char) {
			t.Fatalf("character %q outside code alphabet", char)
		}
	}
}
