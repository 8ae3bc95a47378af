package wallet

import (
	"crypto/ed25519"
	"crypto/sha512"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/tontrade/tontrade/internal/secret"
)

// Seed derivation parameters (PBKDF2-HMAC-SHA512 over the joined phrase).
const (
	seedSalt       = "TON default seed"
	seedIterations = 100000
	seedLength     = 32
)

// Key is an ed25519 key pair derived from a seed phrase.
type Key struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// KeyFromMnemonic derives the wallet key pair from an ordered word list.
// The intermediate seed bytes are held in locked memory and zeroed
// before returning.
func KeyFromMnemonic(words []string) (*Key, error) {
	if err := ValidateMnemonic(words); err != nil {
		return nil, err
	}

	phrase := strings.Join(words, " ")
	raw := pbkdf2.Key([]byte(phrase), []byte(seedSalt), seedIterations, seedLength, sha512.New)
	seed := secret.SecureBytesFromSlice(raw)
	for i := range raw {
		raw[i] = 0
	}
	defer seed.Destroy()

	priv := ed25519.NewKeyFromSeed(seed.Bytes())
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidMnemonic
	}

	return &Key{Public: pub, Private: priv}, nil
}
