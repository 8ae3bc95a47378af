package flow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/balance"
	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/dex"
)

// Callback data for the swap flow.
const (
	cbSwapFromPrefix = "swap_from_"
	cbSwapToPrefix   = "swap_to_"
	cbSwapToOther    = "swap_to_other"
	cbSwapConfirmYes = "swap_confirm_yes"
	cbSwapConfirmNo  = "swap_confirm_no"
)

// StartSwap begins the swap flow: it assembles a balance snapshot and
// offers the tokens with a positive balance as the source side.
func (c *Controller) StartSwap(ctx context.Context, userID int64) (Reply, Outcome) {
	if _, errReply := c.requireWallet(userID); errReply != nil {
		return *errReply, OutcomeFail
	}

	snap, err := c.snapshots.Assemble(ctx, userID)
	if err != nil {
		c.log.Error("snapshot assembly failed",
			zap.Int64("user_id", userID), zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}
	if snap.AllZero() {
		return Reply{Text: msgFundWallet}, OutcomeFail
	}

	st := &State{
		Flow:     KindSwap,
		Step:     StepSelectFrom,
		ID:       newFlowID(),
		Snapshot: snap.Entries(),
	}
	c.sessions.Put(userID, st)

	return Reply{
		Text:     "Select the token to swap from:",
		Keyboard: tokenKeyboard(st.Snapshot, cbSwapFromPrefix, ""),
	}, OutcomeNext
}

func (c *Controller) swapText(userID int64, st *State, text string) (Reply, Outcome) {
	if st.Step != StepSwapAmount {
		return Reply{Text: "Use the buttons to continue."}, OutcomeRetry
	}

	amount, errReply := parseAmount(text, st.From.Symbol, st.From.Balance)
	if errReply != nil {
		return *errReply, OutcomeRetry
	}
	st.Amount = amount
	st.Step = StepSwapConfirm
	return Reply{
		Text:     "Swap " + amount.String() + " " + st.From.Symbol + " for " + st.To.Symbol + "?",
		Keyboard: yesNoKeyboard(cbSwapConfirmYes, cbSwapConfirmNo),
	}, OutcomeNext
}

func (c *Controller) swapCallback(ctx context.Context, userID int64, st *State, data string) (Reply, Outcome) {
	switch st.Step {
	case StepSelectFrom:
		if !strings.HasPrefix(data, cbSwapFromPrefix) {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		symbol := strings.TrimPrefix(data, cbSwapFromPrefix)
		entry, ok := findPositive(st.Snapshot, symbol)
		if !ok {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		st.From = entry
		st.Step = StepSelectTo
		return Reply{
			Text:     "Select the token to receive:",
			Keyboard: swapTargetKeyboard(st.Snapshot, st.From.Symbol),
		}, OutcomeNext

	case StepSelectTo:
		// Redirecting to add-token ends the swap, there is no
		// resumption afterwards.
		if data == cbSwapToOther {
			return Reply{Text: "Use /add to add the token first, then start the swap again."}, OutcomeDone
		}
		if !strings.HasPrefix(data, cbSwapToPrefix) {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		symbol := strings.TrimPrefix(data, cbSwapToPrefix)
		entry, ok := findEntry(st.Snapshot, symbol)
		if !ok || symbol == st.From.Symbol {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		st.To = entry
		st.Step = StepSwapAmount
		return Reply{
			Text: "Enter the amount of " + st.From.Symbol + " to swap (balance " + st.From.Balance.String() + ").",
		}, OutcomeNext

	case StepSwapConfirm:
		switch data {
		case cbSwapConfirmNo:
			return Reply{Text: msgCancelled}, OutcomeDone
		case cbSwapConfirmYes:
			return c.executeSwap(ctx, userID, st)
		}
	}

	return Reply{Text: msgUnknownChoice}, OutcomeRetry
}

// executeSwap asks the DEX for the router instruction matching the
// swap direction and submits it as a native transfer.
func (c *Controller) executeSwap(ctx context.Context, userID int64, st *State) (Reply, Outcome) {
	rec, err := c.store.Wallet(userID)
	if err != nil {
		c.log.Error("loading wallet record failed",
			zap.Int64("user_id", userID), zap.String("flow_id", st.ID), zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	key, err := c.keys.Load(rec)
	if err != nil {
		c.log.Error("loading signing key failed",
			zap.Int64("user_id", userID), zap.String("flow_id", st.ID), zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	units := chain.ToNano(st.Amount)

	var instr dex.Instruction
	switch {
	case st.From.Native && st.To.Native:
		return Reply{Text: "Cannot swap TON for TON."}, OutcomeFail
	case st.From.Native:
		instr, err = c.dex.QuoteNativeToToken(ctx, st.To.Contract, units)
	case st.To.Native:
		instr, err = c.dex.QuoteTokenToNative(ctx, st.From.Contract, units)
	default:
		instr, err = c.dex.QuoteTokenToToken(ctx, st.From.Contract, st.To.Contract, units)
	}
	if err != nil {
		c.log.Error("swap quote failed",
			zap.Int64("user_id", userID),
			zap.String("flow_id", st.ID),
			zap.String("from", st.From.Symbol),
			zap.String("to", st.To.Symbol),
			zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	txHash, err := c.chain.TransferNative(ctx, key, rec.Address, instr.Destination, instr.Value, instr.Payload)
	if err != nil {
		c.log.Error("swap transfer failed",
			zap.Int64("user_id", userID),
			zap.String("flow_id", st.ID),
			zap.String("from", st.From.Symbol),
			zap.String("to", st.To.Symbol),
			zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	c.log.Info("swap submitted",
		zap.Int64("user_id", userID),
		zap.String("flow_id", st.ID),
		zap.String("from", st.From.Symbol),
		zap.String("to", st.To.Symbol),
		zap.String("tx_hash", txHash))
	return Reply{Text: "Swap submitted. Transaction: " + txHash}, OutcomeDone
}

// swapTargetKeyboard lists every snapshot entry except the source,
// regardless of balance, plus the add-token escape hatch.
func swapTargetKeyboard(entries []balance.Entry, exclude string) [][]Button {
	var rows [][]Button
	for _, e := range entries {
		if e.Symbol == exclude {
			continue
		}
		rows = append(rows, []Button{{Label: e.Symbol, Data: cbSwapToPrefix + e.Symbol}})
	}
	rows = append(rows, []Button{{Label: "Other token", Data: cbSwapToOther}})
	return rows
}
