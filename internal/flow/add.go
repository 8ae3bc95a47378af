package flow

import (
	"context"

	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/store"
)

// Callback data for the add-token flow.
const (
	cbAddConfirmYes = "add_confirm_yes"
	cbAddConfirmNo  = "add_confirm_no"
	cbAddManualYes  = "add_manual_yes"
	cbAddManualNo   = "add_manual_no"
)

// StartAddToken begins the add-token flow.
func (c *Controller) StartAddToken(_ context.Context, userID int64) (Reply, Outcome) {
	if _, errReply := c.requireWallet(userID); errReply != nil {
		return *errReply, OutcomeFail
	}

	st := &State{Flow: KindAddToken, Step: StepAwaitContract, ID: newFlowID()}
	c.sessions.Put(userID, st)
	return Reply{Text: "Send me the token contract address."}, OutcomeNext
}

func (c *Controller) addText(ctx context.Context, userID int64, st *State, text string) (Reply, Outcome) {
	switch st.Step {
	case StepAwaitContract:
		return c.addLookupContract(ctx, userID, st, text)

	case StepAwaitManualSymbol:
		st.Symbol = text
		st.Step = StepAwaitManualName
		return Reply{Text: "Enter the token display name."}, OutcomeNext

	case StepAwaitManualName:
		st.Name = text
		return c.addStoreToken(userID, st)

	default:
		return Reply{Text: "Use the buttons to continue."}, OutcomeRetry
	}
}

func (c *Controller) addCallback(userID int64, st *State, data string) (Reply, Outcome) {
	switch st.Step {
	case StepAwaitResolvedConfirm:
		switch data {
		case cbAddConfirmYes:
			return c.addStoreToken(userID, st)
		case cbAddConfirmNo:
			st.Step = StepAwaitManualOffer
			return manualOfferReply(), OutcomeNext
		}

	case StepAwaitManualOffer:
		switch data {
		case cbAddManualYes:
			st.Step = StepAwaitManualSymbol
			return Reply{Text: "Enter the token symbol."}, OutcomeNext
		case cbAddManualNo:
			return Reply{Text: msgCancelled}, OutcomeDone
		}
	}

	return Reply{Text: msgUnknownChoice}, OutcomeRetry
}

// addLookupContract resolves the entered contract through the market
// gateway. A resolvable token goes to the resolved-confirm step, an
// unknown one to the manual-entry offer. Transport failures end the
// flow.
func (c *Controller) addLookupContract(ctx context.Context, userID int64, st *State, contract string) (Reply, Outcome) {
	st.Contract = contract

	info, err := c.market.Lookup(ctx, contract)
	if err != nil {
		c.log.Error("token lookup failed",
			zap.Int64("user_id", userID),
			zap.String("flow_id", st.ID),
			zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}

	if !info.Found {
		st.Step = StepAwaitManualOffer
		return manualOfferReply(), OutcomeNext
	}

	st.Symbol = info.Symbol
	st.Name = info.Name
	st.Step = StepAwaitResolvedConfirm
	return Reply{
		Text:     "Found " + info.Name + " ($" + info.Symbol + "). Add this token?",
		Keyboard: yesNoKeyboard(cbAddConfirmYes, cbAddConfirmNo),
	}, OutcomeNext
}

func (c *Controller) addStoreToken(userID int64, st *State) (Reply, Outcome) {
	tok := store.UserToken{
		UserID:   userID,
		Symbol:   st.Symbol,
		Name:     st.Name,
		Contract: st.Contract,
	}
	if err := c.store.AddToken(tok); err != nil {
		c.log.Error("storing token failed",
			zap.Int64("user_id", userID),
			zap.String("flow_id", st.ID),
			zap.Error(err))
		return Reply{Text: msgGenericFailure}, OutcomeFail
	}
	return Reply{Text: "Token " + st.Symbol + " added."}, OutcomeDone
}

func manualOfferReply() Reply {
	return Reply{
		Text:     "I could not resolve that contract. Enter the token details manually?",
		Keyboard: yesNoKeyboard(cbAddManualYes, cbAddManualNo),
	}
}
