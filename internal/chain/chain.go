// Package chain provides the gateway to the TON blockchain API:
// wallet address resolution, native and jetton balance queries, and
// transfer submission.
package chain

import (
	"context"
	"crypto/ed25519"

	"github.com/tontrade/tontrade/internal/wallet"
)

// Native asset identity.
const (
	NativeSymbol = "TON"
	NativeName   = "Toncoin"
)

// DefaultPayload is the transfer comment attached to outgoing transfers.
const DefaultPayload = "TonTrade"

// Gateway is the chain API surface used by the rest of the bot.
type Gateway interface {
	// ResolveWallet returns the wallet address for a public key.
	// Called once, at wallet creation time.
	ResolveWallet(ctx context.Context, pub ed25519.PublicKey) (string, error)

	// NativeBalance returns the native balance in nano units.
	NativeBalance(ctx context.Context, address string) (int64, error)

	// TokenBalance returns a jetton balance in smallest units for the
	// owner's wallet of the given jetton master contract.
	TokenBalance(ctx context.Context, owner, contract string) (int64, error)

	// TransferNative submits a native transfer and returns the
	// transaction hash.
	TransferNative(ctx context.Context, key *wallet.Key, source, destination string, amount int64, payload string) (string, error)

	// TransferToken submits a jetton transfer and returns the
	// transaction hash.
	TransferToken(ctx context.Context, key *wallet.Key, source, destination, contract string, amount int64, decimals int, payload string) (string, error)
}
