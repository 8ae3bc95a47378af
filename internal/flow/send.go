package flow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/chain"
)

// Callback data for the send flow.
const (
	cbSendTokenPrefix = "send_token_"
	cbSendConfirmYes  = "send_confirm_yes"
	cbSendConfirmNo   = "send_confirm_no"
)

// StartSend begins the send flow: it assembles a balance snapshot and
// offers the tokens with a positive balance.
func (c *Controller) StartSend(ctx context.Context, userID int64) (Reply, Outcome) {
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
		Flow:     KindSend,
		Step:     StepSelectToken,
		ID:       newFlowID(),
		Snapshot: snap.Entries(),
	}
	c.sessions.Put(userID, st)

	return Reply{
		Text:     "Select a token to send:",
		Keyboard: tokenKeyboard(st.Snapshot, cbSendTokenPrefix, ""),
	}, OutcomeNext
}

func (c *Controller) sendText(userID int64, st *State, text string) (Reply, Outcome) {
	switch st.Step {
	case StepEnterAddress:
		st.Address = text
		st.Step = StepEnterAmount
		return Reply{
			Text: "Enter the amount of " + st.From.Symbol + " to send (balance " + st.From.Balance.String() + ").",
		}, OutcomeNext

	case StepEnterAmount:
		amount, errReply := parseAmount(text, st.From.Symbol, st.From.Balance)
		if errReply != nil {
			return *errReply, OutcomeRetry
		}
		st.Amount = amount
		st.Step = StepConfirm
		return Reply{
			Text:     "Send " + amount.String() + " " + st.From.Symbol + " to " + st.Address + "?",
			Keyboard: yesNoKeyboard(cbSendConfirmYes, cbSendConfirmNo),
		}, OutcomeNext

	default:
		return Reply{Text: "Use the buttons to continue."}, OutcomeRetry
	}
}

func (c *Controller) sendCallback(ctx context.Context, userID int64, st *State, data string) (Reply, Outcome) {
	switch st.Step {
	case StepSelectToken:
		if !strings.HasPrefix(data, cbSendTokenPrefix) {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		symbol := strings.TrimPrefix(data, cbSendTokenPrefix)
		entry, ok := findPositive(st.Snapshot, symbol)
		if !ok {
			return Reply{Text: msgUnknownChoice}, OutcomeFail
		}
		st.From = entry
		st.Step = StepEnterAddress
		return Reply{Text: "Enter the recipient address."}, OutcomeNext

	case StepConfirm:
		switch data {
		case cbSendConfirmNo:
			return Reply{Text: msgCancelled}, OutcomeDone
		case cbSendConfirmYes:
			return c.executeSend(ctx, userID, st)
		}
	}

	return Reply{Text: msgUnknownChoice}, OutcomeRetry
}

// executeSend submits the transfer. The flow ends whether or not the
// gateway accepts it.
func (c *Controller) executeSend(ctx context.Context, userID int64, st *State) (Reply, Outcome) {
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

	nano := chain.ToNano(st.Amount)

	var txHash string
	if st.From.Native {
		txHash, err = c.chain.TransferNative(ctx, key, rec.Address, st.Address, nano, chain.DefaultPayload)
	} else {
		txHash, err = c.chain.TransferToken(ctx, key, rec.Address, st.Address, st.From.Contract, nano, chain.Decimals, chain.DefaultPayload)
	}
	if err != nil {
		c.log.Error("transfer failed",
			zap.Int64("user_id", userID),
			zap.String("flow_id", st.ID),
			zap.String("symbol", st.From.Symbol),
			zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	c.log.Info("transfer submitted",
		zap.Int64("user_id", userID),
		zap.String("flow_id", st.ID),
		zap.String("symbol", st.From.Symbol),
		zap.String("tx_hash", txHash))
	return Reply{Text: "Sent. Transaction: " + txHash}, OutcomeDone
}
