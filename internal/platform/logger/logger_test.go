package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValueRedactsSecrets(t *testing.T) {
	cases := []string{"token", "api_key", "Authorization", "user_email", "jwt_secret"}
	for _, key := range cases {
		got := sanitizeValue(strings.ToLower(key), "abc")
		if got != "[REDACTED]" {
			t.Fatalf("%s: expected redaction, got %v", key, got)
		}
	}
}

func TestSanitizeValueHashesOwner(t *testing.T) {
	got, ok := sanitizeValue("owner_id", "7f1c").(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hash output: %v", got)
	}
	if again := sanitizeValue("owner_id", "7f1c"); again != got {
		t.Fatalf("hash is not stable: %v vs %v", again, got)
	}
}

func TestSanitizeValueRedactsJWTLookingStrings(t *testing.T) {
	jwtLike := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("detail", jwtLike); got != "[REDACTED]" {
		t.Fatalf("expected jwt-looking value to be redacted, got %v", got)
	}
	if got := sanitizeValue("detail", "plain"); got != "plain" {
		t.Fatalf("unexpected change to plain value: %v", got)
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.With("service", "x").Info("hello", "token", "secret")
	l.Sync()
}

func TestSanitizeValueShortensDataURIs(t *testing.T) {
	uri := "data:image/png;base64," + strings.Repeat("A", 4096)
	got, ok := sanitizeValue("image", uri).(string)
	if !ok || got != "data:image/png;base64,[4118 bytes]" {
		t.Fatalf("unexpected data uri rendering: %v", got)
	}
	if got := sanitizeValue("url", "https://example.com/a.png"); got != "https://example.com/a.png" {
		t.Fatalf("plain url changed: %v", got)
	}
}
