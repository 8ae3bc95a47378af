package bot

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/balance"
	"github.com/tontrade/tontrade/internal/flow"
	"github.com/tontrade/tontrade/internal/secret"
	"github.com/tontrade/tontrade/internal/store"
	"github.com/tontrade/tontrade/internal/wallet"
	boterr "github.com/tontrade/tontrade/pkg/errors"
)

const testUser int64 = 42

type fakeStore struct {
	wallet *store.WalletRecord
	tokens []store.UserToken
}

func (f *fakeStore) Wallet(int64) (*store.WalletRecord, error) {
	if f.wallet == nil {
		return nil, store.ErrWalletNotFound
	}
	return f.wallet, nil
}

func (f *fakeStore) CreateWallet(rec store.WalletRecord) error {
	if f.wallet != nil {
		return store.ErrWalletExists
	}
	f.wallet = &rec
	return nil
}

func (f *fakeStore) AddToken(tok store.UserToken) error {
	f.tokens = append(f.tokens, tok)
	return nil
}

type fakeChain struct {
	address string
}

func (f *fakeChain) ResolveWallet(context.Context, ed25519.PublicKey) (string, error) {
	return f.address, nil
}

func (f *fakeChain) NativeBalance(context.Context, string) (int64, error) { return 0, nil }

func (f *fakeChain) TokenBalance(context.Context, string, string) (int64, error) { return 0, nil }

func (f *fakeChain) TransferNative(context.Context, *wallet.Key, string, string, int64, string) (string, error) {
	return "tx", nil
}

func (f *fakeChain) TransferToken(context.Context, *wallet.Key, string, string, string, int64, int, string) (string, error) {
	return "tx", nil
}

type fakeAssembler struct {
	snap *balance.Snapshot
	err  error
}

func (f *fakeAssembler) Assemble(context.Context, int64) (*balance.Snapshot, error) {
	return f.snap, f.err
}

type botHarness struct {
	handler   *Handler
	store     *fakeStore
	assembler *fakeAssembler
	codec     *secret.Codec
}

func newBotHarness(t *testing.T) *botHarness {
	t.Helper()

	codec, err := secret.NewCodec("test-encryption-key")
	require.NoError(t, err)

	st := &fakeStore{}
	asm := &fakeAssembler{snap: balance.NewSnapshot()}
	ch := &fakeChain{address: "EQnewwallet"}
	log := zap.NewNop()

	flows := flow.NewController(
		flow.NewManager(0),
		st,
		asm,
		ch,
		nil,
		nil,
		flow.NewSeedKeyLoader(codec),
		log,
	)

	handler := NewHandler(st, flows, ch, asm, codec, "Welcome to TonTrade.", log)
	return &botHarness{handler: handler, store: st, assembler: asm, codec: codec}
}

func (h *botHarness) withWallet(t *testing.T) {
	t.Helper()

	words, err := wallet.GenerateMnemonic()
	require.NoError(t, err)
	sealed, err := h.codec.Encode(words)
	require.NoError(t, err)

	h.store.wallet = &store.WalletRecord{UserID: testUser, Address: "EQexisting", EncryptedSeed: sealed}
}

func TestStartWithoutWalletOffersCreation(t *testing.T) {
	h := newBotHarness(t)

	reply := h.handler.Command(context.Background(), testUser, "start")
	assert.Contains(t, reply.Text, "Welcome to TonTrade.")
	assert.Contains(t, reply.Text, "Create one now?")
	require.Len(t, reply.Keyboard, 1)
	assert.Equal(t, cbCreateWalletYes, reply.Keyboard[0][0].Data)
}

func TestStartWithWalletShowsMenu(t *testing.T) {
	h := newBotHarness(t)
	h.withWallet(t)

	reply := h.handler.Command(context.Background(), testUser, "start")
	assert.Equal(t, "Welcome to TonTrade.", reply.Text)
	require.Len(t, reply.Keyboard, 3)
	assert.Equal(t, cbMenuWallet, reply.Keyboard[0][0].Data)
}

func TestCreateWalletHandshake(t *testing.T) {
	h := newBotHarness(t)

	reply := h.handler.Callback(context.Background(), testUser, cbCreateWalletYes)
	assert.Contains(t, reply.Text, "EQnewwallet")
	require.Len(t, reply.Keyboard, 1)
	assert.Equal(t, cbExportSeedYes, reply.Keyboard[0][0].Data)

	require.NotNil(t, h.store.wallet)
	assert.Equal(t, testUser, h.store.wallet.UserID)
	assert.Equal(t, "EQnewwallet", h.store.wallet.Address)

	// The stored seed decrypts into a valid 24-word mnemonic.
	words, err := h.codec.Decode(h.store.wallet.EncryptedSeed)
	require.NoError(t, err)
	require.Len(t, words, 24)
	require.NoError(t, wallet.ValidateMnemonic(words))
}

func TestCreateWalletTwice(t *testing.T) {
	h := newBotHarness(t)
	h.withWallet(t)

	reply := h.handler.Callback(context.Background(), testUser, cbCreateWalletYes)
	assert.Contains(t, reply.Text, "already have a wallet")
	assert.Equal(t, "EQexisting", h.store.wallet.Address)
}

func TestExportSeed(t *testing.T) {
	h := newBotHarness(t)
	h.withWallet(t)
	ctx := context.Background()

	reply := h.handler.Command(ctx, testUser, "export")
	require.Len(t, reply.Keyboard, 1)
	assert.Equal(t, cbExportSeedYes, reply.Keyboard[0][0].Data)

	reply = h.handler.Callback(ctx, testUser, cbExportSeedYes)
	words, err := h.codec.Decode(h.store.wallet.EncryptedSeed)
	require.NoError(t, err)
	for _, w := range words {
		assert.Contains(t, reply.Text, w)
	}
}

func TestWalletCommandsRequireRecord(t *testing.T) {
	h := newBotHarness(t)
	h.assembler.err = boterr.Precondition("NO_WALLET", "create a wallet first")
	ctx := context.Background()

	for _, cmd := range []string{"wallet", "export", "balance"} {
		reply := h.handler.Command(ctx, testUser, cmd)
		assert.Equal(t, msgNoWallet, reply.Text, "command %q", cmd)
	}
}

func TestBalanceCommandRendersSnapshot(t *testing.T) {
	h := newBotHarness(t)
	h.withWallet(t)

	price := decimal.NewFromFloat(2.5)
	snap := balance.NewSnapshot()
	snap.Put(balance.Entry{Symbol: "TON", Name: "Toncoin", Native: true, Balance: decimal.NewFromInt(5), Price: &price})
	snap.Put(balance.Entry{Symbol: "NOT", Name: "Notcoin", Contract: "EQnot", Balance: decimal.Zero})
	h.assembler.snap = snap

	reply := h.handler.Command(context.Background(), testUser, "balance")
	assert.Contains(t, reply.Text, "TON | 5.0000 | $12.50")
	assert.Contains(t, reply.Text, "NOT | 0.0000 | N/A")
}

func TestCancelWithoutFlow(t *testing.T) {
	h := newBotHarness(t)

	reply := h.handler.Command(context.Background(), testUser, "cancel")
	assert.Equal(t, "Nothing to cancel.", reply.Text)
}

func TestUnknownCommandSuggestion(t *testing.T) {
	h := newBotHarness(t)
	ctx := context.Background()

	reply := h.handler.Command(ctx, testUser, "sned")
	assert.Equal(t, "Unknown command. Did you mean /send?", reply.Text)

	reply = h.handler.Command(ctx, testUser, "qwertyuiop")
	assert.Equal(t, "Unknown command. See /help for the available commands.", reply.Text)
}

func TestUnhandledTextGetsHelpHint(t *testing.T) {
	h := newBotHarness(t)

	reply := h.handler.Text(context.Background(), testUser, "hello there")
	assert.Contains(t, reply.Text, "/help")
}
