package seal

import (
	"encoding/base64"
	"errors"
	"testing"
)

// Keep scrypt cheap in tests.
var testPassphrase = Passphrase{WorkFactor: 10}

func TestPassphraseRoundTrip(t *testing.T) {
	for _, message := range []string{"A very very secret message...", "", "ünïcödé ✓"} {
		ciphertext, err := testPassphrase.Encrypt("key", message)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", message, err)
		}
		if ciphertext == message && message != "" {
			t.Errorf("Encrypt(%q) returned the plaintext", message)
		}
		if _, err := base64.StdEncoding.DecodeString(ciphertext); err != nil {
			t.Errorf("ciphertext is not base64: %v", err)
		}
		got, err := testPassphrase.Decrypt("key", ciphertext)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if got != message {
			t.Errorf("Decrypt(Encrypt(%q)) = %q", message, got)
		}
	}
}

func TestPassphraseNotDeterministic(t *testing.T) {
	a, err := testPassphrase.Encrypt("key", "Super secret message!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := testPassphrase.Encrypt("key", "Super secret message!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Error("two encryptions produced identical ciphertext")
	}
}

func TestPassphraseDecryptFailures(t *testing.T) {
	ciphertext, err := testPassphrase.Encrypt("key", "Another secret message!")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	tests := []struct {
		name, key, ciphertext string
	}{
		{"wrong key", "not the key", ciphertext},
		{"not base64", "key", "this is not base64!"},
		{"not age", "key", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"empty key", "", ciphertext},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := testPassphrase.Decrypt(tc.key, tc.ciphertext)
			if !errors.Is(err, ErrDecryptionFailed) {
				t.Errorf("Decrypt error = %v, want %v", err, ErrDecryptionFailed)
			}
		})
	}
}

func TestPlain(t *testing.T) {
	var tr Transform = Plain{}
	ciphertext, err := tr.Encrypt("ignored", "hello")
	if err != nil || ciphertext != "hello" {
		t.Errorf("Plain.Encrypt = %q, %v", ciphertext, err)
	}
	plaintext, err := tr.Decrypt("ignored", "hello")
	if err != nil || plaintext != "hello" {
		t.Errorf("Plain.Decrypt = %q, %v", plaintext, err)
	}
}
