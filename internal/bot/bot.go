package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tontrade/tontrade/internal/flow"
)

// Bot runs the Telegram long-polling loop and feeds updates to the
// handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     *zap.Logger
}

// New connects to the Telegram API with the given token.
func New(token string, handler *Handler, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info("connected to telegram", zap.String("username", api.Self.UserName))
	return &Bot{api: api, handler: handler, log: log}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		// Acknowledge the press so the client stops its spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Warn("callback ack failed", zap.Error(err))
		}
		reply := b.handler.Callback(ctx, cb.From.ID, cb.Data)
		b.send(cb.Message.Chat.ID, reply)

	case update.Message != nil:
		msg := update.Message
		b.send(msg.Chat.ID, b.dispatchMessage(ctx, msg))
	}
}

func (b *Bot) dispatchMessage(ctx context.Context, msg *tgbotapi.Message) flow.Reply {
	if msg.IsCommand() {
		return b.handler.Command(ctx, msg.From.ID, msg.Command())
	}
	return b.handler.Text(ctx, msg.From.ID, msg.Text)
}

func (b *Bot) send(chatID int64, reply flow.Reply) {
	if reply.Text == "" {
		return
	}

	out := tgbotapi.NewMessage(chatID, reply.Text)
	if len(reply.Keyboard) > 0 {
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, row := range reply.Keyboard {
			var buttons []tgbotapi.InlineKeyboardButton
			for _, btn := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
		}
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	if _, err := b.api.Send(out); err != nil {
		b.log.Error("sending message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
