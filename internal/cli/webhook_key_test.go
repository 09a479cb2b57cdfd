package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/terraincognita07/kpitracker/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func TestWebhookKeyGeneratesVerifiableHash(t *testing.T) {
	var out bytes.Buffer
	if err := runWebhookKeyCommand(&out, "", 4); err != nil {
		t.Fatalf("generate: %v", err)
	}

	key, hash := parseWebhookKeyOutput(t, out.String())
	if len(key) != security.MinAPIKeyLength {
		t.Fatalf("expected minimum key length 16, got %d", len(key))
	}
	for _, char := range key {
		if !strings.ContainsRune(security.APIKeyAlphabet, char) {
			t.Fatalf("key %q contains %q outside the alphabet", key, char)
		}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		t.Fatalf("hash does not match key: %v", err)
	}
}

func TestWebhookKeyHashesExistingKey(t *testing.T) {
	var out bytes.Buffer
	if err := runWebhookKeyCommand(&out, "softphone-key", 32); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if strings.Contains(out.String(), "Webhook key:") {
		t.Fatalf("existing key must not be echoed, got %q", out.String())
	}
	_, hash := parseWebhookKeyOutput(t, out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("softphone-key")); err != nil {
		t.Fatalf("hash does not match key: %v", err)
	}
}

func TestReadSecretLineTrimsNewline(t *testing.T) {
	secret, err := readSecretLine(strings.NewReader("typed-key\r\nignored"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(secret) != "typed-key" {
		t.Fatalf("unexpected secret %q", secret)
	}
}

func parseWebhookKeyOutput(t *testing.T, output string) (string, string) {
	t.Helper()

	key, hash := "", ""
	for _, line := range strings.Split(output, "\n") {
		if value, ok := strings.CutPrefix(line, "Webhook key: "); ok {
			key = value
		}
		if value, ok := strings.CutPrefix(line, "WEBHOOK_API_KEY_HASH="); ok {
			hash = strings.Trim(value, "'")
		}
	}
	if hash == "" {
		t.Fatalf("no hash in output %q", output)
	}
	return key, hash
}
