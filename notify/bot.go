package notify

import (
	"context"
	"time"

	"boinkfarm/constant"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Bot answers /status with the board report.
type Bot struct {
	bot    *bot.Bot
	board  *Board
	logger *zap.Logger
}

func NewBot(token string, board *Board, logger *zap.Logger) (*Bot, error) {
	n := &Bot{board: board, logger: logger.With(zap.String("component", "telegram"))}

	b, err := bot.New(token)
	if err != nil {
		return nil, err
	}
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, n.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, n.handleStatus)
	n.bot = b

	return n, nil
}

// Start blocks until ctx is done.
func (n *Bot) Start(ctx context.Context) {
	n.bot.Start(ctx)
}

func (n *Bot) logInteraction(update *models.Update, action string) {
	from := update.Message.From
	if from == nil {
		n.logger.Info("Anonymous user "+action, zap.Int64("chat", update.Message.Chat.ID))
		return
	}

	username := from.Username
	if username == "" {
		username = from.FirstName + " " + from.LastName
	}
	n.logger.Info("User "+action, zap.String("user", username), zap.Int64("chat", update.Message.Chat.ID))
}

func (n *Bot) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	n.logInteraction(update, "started the bot")
	n.send(ctx, b, update.Message.Chat.ID, "Welcome, send /status to see every farmed account")
}

func (n *Bot) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	n.logInteraction(update, "requested status")
	n.send(ctx, b, update.Message.Chat.ID, FormatReport(n.board.Snapshots(), time.Now()))
}

func (n *Bot) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	for attempt := 1; attempt <= constant.SendRetries; attempt++ {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		if err == nil {
			return
		}

		if attempt == constant.SendRetries {
			n.logger.Error("Failed to send telegram message after retries",
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}

		n.logger.Warn("Failed to send telegram message, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(constant.RetryInterval * time.Duration(attempt)):
		}
	}
}
