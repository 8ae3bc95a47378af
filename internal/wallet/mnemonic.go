// Package wallet provides seed-phrase generation, validation, and
// ed25519 key derivation for the custodial wallet.
package wallet

import (
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Words in a generated seed phrase (256 bits of entropy).
const mnemonicWordCount = 24

var (
	// ErrInvalidWordCount indicates the mnemonic must be 24 words.
	ErrInvalidWordCount = errors.New("word count must be 24")

	// ErrInvalidMnemonic indicates the mnemonic is not valid.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")
)

// GenerateMnemonic creates a new 24-word BIP39 seed phrase, returned as
// an ordered word list.
func GenerateMnemonic() ([]string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, err
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}

	return strings.Fields(mnemonic), nil
}

// ValidateMnemonic checks word count and BIP39 checksum.
func ValidateMnemonic(words []string) error {
	if len(words) != mnemonicWordCount {
		return ErrInvalidWordCount
	}
	if !bip39.IsMnemonicValid(strings.Join(words, " ")) {
		return ErrInvalidMnemonic
	}
	return nil
}
