// Package bot is the Telegram presentation layer: command dispatch,
// inline keyboards, and message rendering on top of the flow
// controller and the gateways.
package bot

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/balance"
	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/flow"
	"github.com/tontrade/tontrade/internal/secret"
	"github.com/tontrade/tontrade/internal/store"
	"github.com/tontrade/tontrade/internal/wallet"
	boterr "github.com/tontrade/tontrade/pkg/errors"
)

// Callback data outside the flows.
const (
	cbCreateWalletYes = "create_wallet_yes"
	cbCreateWalletNo  = "create_wallet_no"
	cbExportSeedYes   = "export_seed_yes"
	cbExportSeedNo    = "export_seed_no"

	cbMenuWallet  = "menu_wallet"
	cbMenuBalance = "menu_balance"
	cbMenuSend    = "menu_send"
	cbMenuSwap    = "menu_swap"
	cbMenuAdd     = "menu_add"
	cbMenuHelp    = "menu_help"
)

const msgNoWallet = "Create a wallet first with /start."

const helpText = `Commands:
/start - create or open your wallet
/wallet - show your wallet address
/balance - show your token balances
/send - send tokens
/swap - swap tokens
/add - add a token to your list
/export - export your seed phrase
/cancel - cancel the current operation
/help - this message`

// WalletStore is the persistence surface the handler needs.
type WalletStore interface {
	Wallet(userID int64) (*store.WalletRecord, error)
	CreateWallet(rec store.WalletRecord) error
}

// SnapshotAssembler produces the balance view for /balance.
type SnapshotAssembler interface {
	Assemble(ctx context.Context, userID int64) (*balance.Snapshot, error)
}

// Handler turns incoming commands, text, and button presses into
// replies. It is transport independent; Bot feeds it Telegram updates.
type Handler struct {
	store     WalletStore
	flows     *flow.Controller
	chain     chain.Gateway
	snapshots SnapshotAssembler
	codec     *secret.Codec
	greeting  string
	log       *zap.Logger
}

// NewHandler wires the update handler.
func NewHandler(
	st WalletStore,
	flows *flow.Controller,
	ch chain.Gateway,
	snapshots SnapshotAssembler,
	codec *secret.Codec,
	greeting string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		store:     st,
		flows:     flows,
		chain:     ch,
		snapshots: snapshots,
		codec:     codec,
		greeting:  greeting,
		log:       log,
	}
}

// Command handles a slash command.
func (h *Handler) Command(ctx context.Context, userID int64, command string) flow.Reply {
	switch command {
	case "start":
		return h.start(userID)
	case "wallet":
		return h.walletInfo(userID)
	case "export":
		return h.exportOffer(userID)
	case "balance":
		return h.balanceTable(ctx, userID)
	case "help":
		return flow.Reply{Text: helpText}
	case "add":
		reply, _ := h.flows.StartAddToken(ctx, userID)
		return reply
	case "send":
		reply, _ := h.flows.StartSend(ctx, userID)
		return reply
	case "swap":
		reply, _ := h.flows.StartSwap(ctx, userID)
		return reply
	case "cancel":
		if reply, ok := h.flows.Cancel(userID); ok {
			return reply
		}
		return flow.Reply{Text: "Nothing to cancel."}
	default:
		return flow.Reply{Text: suggestCommand(command)}
	}
}

// Text handles a free-text message: an active flow consumes it,
// otherwise the user gets the help hint.
func (h *Handler) Text(ctx context.Context, userID int64, text string) flow.Reply {
	if reply, _, handled := h.flows.HandleText(ctx, userID, text); handled {
		return reply
	}
	return flow.Reply{Text: "I did not understand that. See /help for the available commands."}
}

// Callback handles a button press.
func (h *Handler) Callback(ctx context.Context, userID int64, data string) flow.Reply {
	switch data {
	case cbCreateWalletYes:
		return h.createWallet(ctx, userID)
	case cbCreateWalletNo:
		return flow.Reply{Text: "Okay. Use /start whenever you are ready."}
	case cbExportSeedYes:
		return h.exportSeed(userID)
	case cbExportSeedNo:
		return flow.Reply{Text: "Okay, your seed phrase stays put."}
	case cbMenuWallet:
		return h.walletInfo(userID)
	case cbMenuBalance:
		return h.balanceTable(ctx, userID)
	case cbMenuSend:
		reply, _ := h.flows.StartSend(ctx, userID)
		return reply
	case cbMenuSwap:
		reply, _ := h.flows.StartSwap(ctx, userID)
		return reply
	case cbMenuAdd:
		reply, _ := h.flows.StartAddToken(ctx, userID)
		return reply
	case cbMenuHelp:
		return flow.Reply{Text: helpText}
	}

	if reply, _, handled := h.flows.HandleCallback(ctx, userID, data); handled {
		return reply
	}
	return flow.Reply{Text: "That button is no longer active. See /help."}
}

// start greets the user, offering wallet creation when there is no
// record yet and the main menu otherwise.
func (h *Handler) start(userID int64) flow.Reply {
	if _, err := h.store.Wallet(userID); err != nil {
		return flow.Reply{
			Text: h.greeting + "\n\nYou do not have a wallet yet. Create one now?",
			Keyboard: [][]flow.Button{{
				{Label: "Yes", Data: cbCreateWalletYes},
				{Label: "No", Data: cbCreateWalletNo},
			}},
		}
	}
	return flow.Reply{
		Text:     h.greeting,
		Keyboard: mainMenuKeyboard(),
	}
}

// createWallet runs the creation handshake: mnemonic, key, address
// resolve, encrypt, store, then the export offer.
func (h *Handler) createWallet(ctx context.Context, userID int64) flow.Reply {
	if _, err := h.store.Wallet(userID); err == nil {
		return flow.Reply{Text: "You already have a wallet. Use /wallet to see its address."}
	}

	words, err := wallet.GenerateMnemonic()
	if err != nil {
		h.log.Error("mnemonic generation failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Wallet creation failed, please try again later."}
	}

	key, err := wallet.KeyFromMnemonic(words)
	if err != nil {
		h.log.Error("key derivation failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Wallet creation failed, please try again later."}
	}

	address, err := h.chain.ResolveWallet(ctx, key.Public)
	if err != nil {
		h.log.Error("wallet address resolution failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Wallet creation failed, please try again later."}
	}

	sealed, err := h.codec.Encode(words)
	if err != nil {
		h.log.Error("seed encryption failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Wallet creation failed, please try again later."}
	}

	rec := store.WalletRecord{
		UserID:        userID,
		Address:       address,
		EncryptedSeed: sealed,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreateWallet(rec); err != nil {
		h.log.Error("storing wallet failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Wallet creation failed, please try again later."}
	}

	h.log.Info("wallet created", zap.Int64("user_id", userID), zap.String("address", address))
	return flow.Reply{
		Text: "Your wallet is ready.\n\nAddress:\n" + address +
			"\n\nWould you like to export your seed phrase now? Anyone with the phrase controls the wallet.",
		Keyboard: exportKeyboard(),
	}
}

func (h *Handler) walletInfo(userID int64) flow.Reply {
	rec, err := h.store.Wallet(userID)
	if err != nil {
		return flow.Reply{Text: msgNoWallet}
	}
	return flow.Reply{Text: "Your wallet address:\n" + rec.Address}
}

// exportOffer re-offers the seed export confirmation.
func (h *Handler) exportOffer(userID int64) flow.Reply {
	if _, err := h.store.Wallet(userID); err != nil {
		return flow.Reply{Text: msgNoWallet}
	}
	return flow.Reply{
		Text:     "Export your seed phrase? Anyone with the phrase controls the wallet.",
		Keyboard: exportKeyboard(),
	}
}

func (h *Handler) exportSeed(userID int64) flow.Reply {
	rec, err := h.store.Wallet(userID)
	if err != nil {
		return flow.Reply{Text: msgNoWallet}
	}

	words, err := h.codec.Decode(rec.EncryptedSeed)
	if err != nil {
		h.log.Error("seed decryption failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Could not decrypt your seed phrase."}
	}

	return flow.Reply{
		Text: "Your seed phrase, keep it safe and delete this message:\n\n" + strings.Join(words, " "),
	}
}

func (h *Handler) balanceTable(ctx context.Context, userID int64) flow.Reply {
	snap, err := h.snapshots.Assemble(ctx, userID)
	if err != nil {
		if boterr.IsPrecondition(err) {
			return flow.Reply{Text: msgNoWallet}
		}
		h.log.Error("snapshot assembly failed", zap.Int64("user_id", userID), zap.Error(err))
		return flow.Reply{Text: "Could not load your balances, please try again later."}
	}
	return flow.Reply{Text: renderSnapshot(snap)}
}

func mainMenuKeyboard() [][]flow.Button {
	return [][]flow.Button{
		{
			{Label: "Wallet", Data: cbMenuWallet},
			{Label: "Balance", Data: cbMenuBalance},
		},
		{
			{Label: "Send", Data: cbMenuSend},
			{Label: "Swap", Data: cbMenuSwap},
		},
		{
			{Label: "Add token", Data: cbMenuAdd},
			{Label: "Help", Data: cbMenuHelp},
		},
	}
}

func exportKeyboard() [][]flow.Button {
	return [][]flow.Button{{
		{Label: "Export", Data: cbExportSeedYes},
		{Label: "Not now", Data: cbExportSeedNo},
	}}
}
