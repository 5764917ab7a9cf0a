// Message encryption for hidden chunk payloads.
//
// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

// Package seal transforms messages before they are stored in a chunk and
// after they are read back. Chunk code only sees the resulting text and does
// not care which transform produced it.
//
// Passphrase encryption uses age scrypt recipients. Ciphertext is base64
// encoded so that it is still valid text inside the chunk.
package seal

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
)

// ErrDecryptionFailed is returned when a message cannot be decrypted with
// the given key.
var ErrDecryptionFailed = errors.New("failed to decrypt message, maybe the key was wrong?")

// DefaultWorkFactor is the scrypt work factor (log2 of N) used by age.
const DefaultWorkFactor = 18

// Transform turns a message into the text stored in a chunk and back.
type Transform interface {
	Encrypt(key, plaintext string) (string, error)
	Decrypt(key, ciphertext string) (string, error)
}

// Plain stores messages as they are and ignores the key.
type Plain struct{}

func (Plain) Encrypt(_, plaintext string) (string, error)  { return plaintext, nil }
func (Plain) Decrypt(_, ciphertext string) (string, error) { return ciphertext, nil }

// Passphrase encrypts messages with an age scrypt recipient derived from the
// key.
type Passphrase struct {
	// WorkFactor is the scrypt work factor for encryption. Zero means
	// DefaultWorkFactor. Decryption accepts anything up to
	// max(WorkFactor, DefaultWorkFactor).
	WorkFactor int
}

func (p Passphrase) workFactor() int {
	if p.WorkFactor == 0 {
		return DefaultWorkFactor
	}
	return p.WorkFactor
}

// Encrypt returns the base64 encoded age ciphertext of plaintext.
func (p Passphrase) Encrypt(key, plaintext string) (string, error) {
	recipient, err := age.NewScryptRecipient(key)
	if err != nil {
		return "", fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(p.workFactor())

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decrypt reverses Encrypt. Any failure, including a wrong key or text that
// was never encrypted, is reported as ErrDecryptionFailed.
func (p Passphrase) Decrypt(key, ciphertext string) (string, error) {
	identity, err := age.NewScryptIdentity(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	identity.SetMaxWorkFactor(max(p.workFactor(), DefaultWorkFactor))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: decoding base64: %w", ErrDecryptionFailed, err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: reading plaintext: %w", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}
