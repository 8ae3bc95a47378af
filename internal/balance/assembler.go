package balance

import (
	"context"
	"errors"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/market"
	"github.com/tontrade/tontrade/internal/store"
	boterr "github.com/tontrade/tontrade/pkg/errors"
)

// ErrNoWallet is returned when the user has no wallet record yet.
var ErrNoWallet = boterr.Precondition("NO_WALLET", "create a wallet first")

// StoreReader is the credential-store surface the assembler needs.
type StoreReader interface {
	Wallet(userID int64) (*store.WalletRecord, error)
	Tokens(userID int64) ([]store.UserToken, error)
}

// BalanceReader is the chain surface the assembler needs.
type BalanceReader interface {
	NativeBalance(ctx context.Context, address string) (int64, error)
	TokenBalance(ctx context.Context, owner, contract string) (int64, error)
}

// Assembler builds balance snapshots: native asset first, then
// file-configured tokens, then user-added tokens. A single token's
// failure never blocks the rest of the snapshot.
type Assembler struct {
	store     StoreReader
	chain     BalanceReader
	market    market.Gateway
	tokenFile string
	log       *zap.Logger
}

// NewAssembler creates a snapshot assembler.
func NewAssembler(st StoreReader, ch BalanceReader, mk market.Gateway, tokenFile string, log *zap.Logger) *Assembler {
	return &Assembler{store: st, chain: ch, market: mk, tokenFile: tokenFile, log: log}
}

// Assemble computes the full token-balance snapshot for a user.
func (a *Assembler) Assemble(ctx context.Context, userID int64) (*Snapshot, error) {
	rec, err := a.store.Wallet(userID)
	if err != nil {
		if boterr.IsNotFound(err) {
			return nil, ErrNoWallet
		}
		return nil, err
	}

	snap := NewSnapshot()

	// Native asset first. On failure the entry still appears with a
	// zero balance and no price.
	native := Entry{Symbol: chain.NativeSymbol, Name: chain.NativeName, Native: true}
	if nano, balErr := a.chain.NativeBalance(ctx, rec.Address); balErr != nil {
		a.log.Error("native balance lookup failed",
			zap.Int64("user_id", userID), zap.Error(balErr))
		native.Balance = decimal.Zero
	} else {
		native.Balance = chain.Display(chain.FromNano(nano))
	}
	native.Price = a.lookupPrice(ctx, chain.NativeSymbol)
	snap.Put(native)

	// File-configured tokens. A missing file is not an error.
	configured, fileErr := LoadTokenFile(a.tokenFile)
	if fileErr != nil && !errors.Is(fileErr, os.ErrNotExist) {
		a.log.Error("reading token file failed",
			zap.String("path", a.tokenFile), zap.Error(fileErr))
	}
	for _, tok := range configured {
		snap.Put(a.tokenEntry(ctx, rec.Address, userID, tok.Symbol, tok.Name, tok.Contract))
	}

	// User-added tokens, same isolation policy.
	userTokens, tokErr := a.store.Tokens(userID)
	if tokErr != nil {
		a.log.Error("reading user tokens failed",
			zap.Int64("user_id", userID), zap.Error(tokErr))
	}
	for _, tok := range userTokens {
		snap.Put(a.tokenEntry(ctx, rec.Address, userID, tok.Symbol, tok.Name, tok.Contract))
	}

	return snap, nil
}

// tokenEntry resolves one jetton's balance and price, isolating failures.
func (a *Assembler) tokenEntry(ctx context.Context, owner string, userID int64, symbol, name, contract string) Entry {
	entry := Entry{Symbol: symbol, Name: name, Contract: contract}

	if units, err := a.chain.TokenBalance(ctx, owner, contract); err != nil {
		a.log.Error("token balance lookup failed",
			zap.Int64("user_id", userID),
			zap.String("symbol", symbol),
			zap.Error(err))
		entry.Balance = decimal.Zero
	} else {
		entry.Balance = chain.Display(chain.FromNano(units))
	}

	entry.Price = a.lookupPrice(ctx, symbol)
	return entry
}

// lookupPrice returns the spot price for a symbol, or nil when the
// lookup fails or the token is unknown to the price API.
func (a *Assembler) lookupPrice(ctx context.Context, symbol string) *decimal.Decimal {
	info, err := a.market.Lookup(ctx, symbol)
	if err != nil {
		a.log.Error("price lookup failed", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	if !info.Found {
		return nil
	}
	return info.Price
}
