// Package flow implements the multi-step conversation flows: adding a
// token, sending a token, and swapping one token for another. Each
// flow is a linear state machine over per-user session state; step
// handlers return an explicit outcome and the controller decides
// whether to advance, re-prompt, or end the conversation.
package flow

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/balance"
	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/dex"
	"github.com/tontrade/tontrade/internal/market"
	"github.com/tontrade/tontrade/internal/secret"
	"github.com/tontrade/tontrade/internal/store"
	"github.com/tontrade/tontrade/internal/wallet"
)

// Outcome is a step handler's verdict on the conversation.
type Outcome int

const (
	// OutcomeNext advances to the step recorded in the state.
	OutcomeNext Outcome = iota
	// OutcomeRetry keeps the current step for another attempt.
	OutcomeRetry
	// OutcomeDone ends the flow after a successful run.
	OutcomeDone
	// OutcomeFail ends the flow on a terminal error.
	OutcomeFail
)

// Button is one inline-keyboard button.
type Button struct {
	Label string
	Data  string
}

// Reply is what a step hands back to the transport: text plus an
// optional inline keyboard.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

// Shared user-facing copy.
const (
	msgNoWallet       = "Create a wallet first with /start."
	msgFundWallet     = "All token balances in your wallet are zero, fund your wallet first."
	msgCancelled      = "Cancelled."
	msgGenericFailure = "Something went wrong, please try again later."
	msgNotANumber     = "That does not look like a number, try again."
	msgUnknownChoice  = "I did not recognize that choice."
)

// TokenStore is the persistence surface the flows need.
type TokenStore interface {
	Wallet(userID int64) (*store.WalletRecord, error)
	AddToken(tok store.UserToken) error
}

// SnapshotAssembler produces the balance snapshot a flow starts from.
type SnapshotAssembler interface {
	Assemble(ctx context.Context, userID int64) (*balance.Snapshot, error)
}

// KeyLoader turns a stored wallet record into a signing key.
type KeyLoader interface {
	Load(rec *store.WalletRecord) (*wallet.Key, error)
}

// SeedKeyLoader loads signing keys by decrypting the stored seed
// phrase and re-deriving the key pair.
type SeedKeyLoader struct {
	codec *secret.Codec
}

// NewSeedKeyLoader creates a KeyLoader backed by the secret codec.
func NewSeedKeyLoader(codec *secret.Codec) *SeedKeyLoader {
	return &SeedKeyLoader{codec: codec}
}

// Load decrypts the record's seed and derives the ed25519 key pair.
func (l *SeedKeyLoader) Load(rec *store.WalletRecord) (*wallet.Key, error) {
	words, err := l.codec.Decode(rec.EncryptedSeed)
	if err != nil {
		return nil, err
	}
	return wallet.KeyFromMnemonic(words)
}

// Controller drives the three conversation flows over per-user
// session state.
type Controller struct {
	sessions  *Manager
	store     TokenStore
	snapshots SnapshotAssembler
	chain     chain.Gateway
	dex       dex.Gateway
	market    market.Gateway
	keys      KeyLoader
	log       *zap.Logger
}

// NewController wires a flow controller.
func NewController(
	sessions *Manager,
	st TokenStore,
	snapshots SnapshotAssembler,
	ch chain.Gateway,
	dx dex.Gateway,
	mk market.Gateway,
	keys KeyLoader,
	log *zap.Logger,
) *Controller {
	return &Controller{
		sessions:  sessions,
		store:     st,
		snapshots: snapshots,
		chain:     ch,
		dex:       dx,
		market:    mk,
		keys:      keys,
		log:       log,
	}
}

// Active reports whether the user is inside a flow.
func (c *Controller) Active(userID int64) bool {
	return c.sessions.Active(userID)
}

// Cancel aborts the user's flow, if any. The second return reports
// whether there was a flow to cancel.
func (c *Controller) Cancel(userID int64) (Reply, bool) {
	if !c.sessions.Active(userID) {
		return Reply{}, false
	}
	c.sessions.Clear(userID)
	return Reply{Text: msgCancelled}, true
}

// HandleText routes a free-text message to the user's active flow.
// The bool is false when the user has no active flow.
func (c *Controller) HandleText(ctx context.Context, userID int64, text string) (Reply, Outcome, bool) {
	st, ok := c.sessions.Get(userID)
	if !ok {
		return Reply{}, OutcomeFail, false
	}

	text = strings.TrimSpace(text)

	var reply Reply
	var outcome Outcome
	switch st.Flow {
	case KindAddToken:
		reply, outcome = c.addText(ctx, userID, st, text)
	case KindSend:
		reply, outcome = c.sendText(userID, st, text)
	case KindSwap:
		reply, outcome = c.swapText(userID, st, text)
	default:
		reply, outcome = Reply{Text: msgGenericFailure}, OutcomeFail
	}

	c.apply(userID, st, outcome)
	return reply, outcome, true
}

// HandleCallback routes a button press to the user's active flow.
// The bool is false when the user has no active flow.
func (c *Controller) HandleCallback(ctx context.Context, userID int64, data string) (Reply, Outcome, bool) {
	st, ok := c.sessions.Get(userID)
	if !ok {
		return Reply{}, OutcomeFail, false
	}

	var reply Reply
	var outcome Outcome
	switch st.Flow {
	case KindAddToken:
		reply, outcome = c.addCallback(userID, st, data)
	case KindSend:
		reply, outcome = c.sendCallback(ctx, userID, st, data)
	case KindSwap:
		reply, outcome = c.swapCallback(ctx, userID, st, data)
	default:
		reply, outcome = Reply{Text: msgGenericFailure}, OutcomeFail
	}

	c.apply(userID, st, outcome)
	return reply, outcome, true
}

// apply commits a step's outcome to the session store.
func (c *Controller) apply(userID int64, st *State, outcome Outcome) {
	switch outcome {
	case OutcomeNext, OutcomeRetry:
		c.sessions.Put(userID, st)
	case OutcomeDone, OutcomeFail:
		c.sessions.Clear(userID)
	}
}

// requireWallet loads the user's wallet record, replying with the
// create-first message when there is none.
func (c *Controller) requireWallet(userID int64) (*store.WalletRecord, *Reply) {
	rec, err := c.store.Wallet(userID)
	if err != nil {
		return nil, &Reply{Text: msgNoWallet}
	}
	return rec, nil
}

// parseAmount validates a user-entered amount against the balance
// captured when the token was selected. A nil reply means the amount
// was accepted.
func parseAmount(text string, symbol string, available decimal.Decimal) (decimal.Decimal, *Reply) {
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, &Reply{Text: msgNotANumber}
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, &Reply{Text: msgNotANumber}
	}
	if amount.GreaterThan(available) {
		return decimal.Zero, &Reply{
			Text: "Amount exceeds your " + symbol + " balance of " + available.String() + ", try again.",
		}
	}
	return amount, nil
}

func newFlowID() string {
	return uuid.NewString()
}

// tokenKeyboard builds one button row per strictly-positive entry,
// skipping the excluded symbol. Button data is prefix + symbol.
func tokenKeyboard(entries []balance.Entry, prefix, exclude string) [][]Button {
	var rows [][]Button
	for _, e := range entries {
		if e.Symbol == exclude || !e.Balance.IsPositive() {
			continue
		}
		rows = append(rows, []Button{{Label: e.Symbol, Data: prefix + e.Symbol}})
	}
	return rows
}

func findEntry(entries []balance.Entry, symbol string) (balance.Entry, bool) {
	for _, e := range entries {
		if e.Symbol == symbol {
			return e, true
		}
	}
	return balance.Entry{}, false
}

func findPositive(entries []balance.Entry, symbol string) (balance.Entry, bool) {
	e, ok := findEntry(entries, symbol)
	if !ok || !e.Balance.IsPositive() {
		return balance.Entry{}, false
	}
	return e, true
}

func yesNoKeyboard(yesData, noData string) [][]Button {
	return [][]Button{{
		{Label: "Yes", Data: yesData},
		{Label: "No", Data: noData},
	}}
}
