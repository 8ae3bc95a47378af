// Package secret implements the reversible transform between a plaintext
// seed phrase and the opaque string stored at rest, plus secure memory
// handling for decrypted key material.
package secret

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
)

// ErrEmptyKey indicates the codec was constructed without an encryption key.
var ErrEmptyKey = errors.New("encryption key must not be empty")

// ErrEmptyPhrase indicates an empty word list was passed to Encode.
var ErrEmptyPhrase = errors.New("seed phrase must not be empty")

// Codec encrypts and decrypts seed phrases with a symmetric key from
// process configuration.
type Codec struct {
	key string
}

// NewCodec creates a codec using the given key.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Codec{key: key}, nil
}

// Encode encrypts an ordered list of seed words into an opaque string
// safe to store in a text column.
func (c *Codec) Encode(words []string) (string, error) {
	if len(words) == 0 {
		return "", ErrEmptyPhrase
	}

	recipient, err := age.NewScryptRecipient(c.key)
	if err != nil {
		return "", fmt.Errorf("creating recipient: %w", err)
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return "", fmt.Errorf("encrypting: %w", err)
	}

	if _, err := io.WriteString(w, strings.Join(words, " ")); err != nil {
		return "", fmt.Errorf("writing plaintext: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing ciphertext: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode decrypts a stored string back into the ordered list of seed
// words. Word order and content are preserved exactly.
func (c *Codec) Decode(stored string) ([]string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return nil, fmt.Errorf("decoding stored secret: %w", err)
	}

	identity, err := age.NewScryptIdentity(c.key)
	if err != nil {
		return nil, fmt.Errorf("creating identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading plaintext: %w", err)
	}

	words := strings.Fields(string(plaintext))

	// Zero the temporary plaintext
	for i := range plaintext {
		plaintext[i] = 0
	}

	return words, nil
}

// GenerateKey returns a new random encryption key. Used as the fallback
// when no key is configured; the generated key is not persisted, so
// everything encrypted under it is unreadable after a restart.
func GenerateKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
