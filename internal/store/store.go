// Package store persists wallet records and user-added token descriptors.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	boterr "github.com/tontrade/tontrade/pkg/errors"
)

// Bucket names.
var (
	bucketWallets = []byte("wallets")
	bucketTokens  = []byte("tokens")
)

// Sentinel errors.
var (
	// ErrWalletExists is returned when creating a wallet for a user who
	// already has one. Wallet records are create-once.
	ErrWalletExists = boterr.New(boterr.KindGeneral, "WALLET_EXISTS", "wallet already exists for user")

	// ErrWalletNotFound is returned when no wallet record exists for a user.
	ErrWalletNotFound = boterr.NotFound("WALLET_NOT_FOUND", "wallet not found")
)

// WalletRecord is the persisted wallet for one user. Created once on the
// first wallet-creation confirmation, never mutated or deleted.
type WalletRecord struct {
	UserID        int64     `json:"user_id"`
	Address       string    `json:"address"`
	EncryptedSeed string    `json:"encrypted_seed"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserToken is a user-added token descriptor. Rows are append-only and
// uniqueness is not enforced; duplicate symbols are permitted.
type UserToken struct {
	UserID   int64  `json:"user_id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Contract string `json:"contract"`
}

// Store is a bbolt-backed credential store.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(bucketWallets); e != nil {
			return e
		}
		_, e := tx.CreateBucketIfNotExists(bucketTokens)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateWallet persists a wallet record. Returns ErrWalletExists if the
// user already has one.
func (s *Store) CreateWallet(rec WalletRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWallets)
		key := userKey(rec.UserID)
		if b.Get(key) != nil {
			return ErrWalletExists
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling wallet record: %w", err)
		}
		return b.Put(key, data)
	})
}

// Wallet returns the wallet record for a user, or ErrWalletNotFound.
func (s *Store) Wallet(userID int64) (*WalletRecord, error) {
	var rec WalletRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketWallets).Get(userKey(userID))
		if data == nil {
			return ErrWalletNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// AddToken appends a user token row. No uniqueness constraint applies.
func (s *Store) AddToken(tok UserToken) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTokens)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("allocating sequence: %w", err)
		}

		data, err := json.Marshal(tok)
		if err != nil {
			return fmt.Errorf("marshaling token: %w", err)
		}
		return b.Put(tokenKey(tok.UserID, seq), data)
	})
}

// Tokens returns the user's token rows in insertion order.
func (s *Store) Tokens(userID int64) ([]UserToken, error) {
	var tokens []UserToken
	prefix := userKey(userID)

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketTokens).Cursor()
		for k, v := c.Seek(prefix); k != nil && len(k) >= 8 && string(k[:8]) == string(prefix); k, v = c.Next() {
			var tok UserToken
			if e := json.Unmarshal(v, &tok); e != nil {
				// Skip malformed entries instead of failing the whole read
				continue
			}
			tokens = append(tokens, tok)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// userKey encodes a user id as a big-endian bucket key.
func userKey(userID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(userID))
	return key
}

// tokenKey encodes a user id plus insertion sequence, so a cursor scan
// over the user prefix yields rows in insertion order.
func tokenKey(userID int64, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(userID))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}
