package notify

import (
	"context"
	"fmt"

	"questlog/internal/service"
	"questlog/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type TelegramConfig struct {
	BotToken string
	Debug    bool
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type outgoing struct {
	chatID int64
	text   string
}

// TelegramNotifier messages users through the bot for the events worth a
// chat message: streak milestones and new guild members. XP awards are left
// to the in-app websocket.
type TelegramNotifier struct {
	bot   sender
	queue chan outgoing
}

func NewTelegramNotifier(config TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	bot.Debug = config.Debug

	return newTelegramNotifier(bot), nil
}

func newTelegramNotifier(bot sender) *TelegramNotifier {
	return &TelegramNotifier{
		bot:   bot,
		queue: make(chan outgoing, 64),
	}
}

// Notify never blocks the caller; messages are delivered by Run.
func (n *TelegramNotifier) Notify(_ context.Context, userID int64, msg service.Message) {
	text, ok := formatMessage(msg)
	if !ok {
		return
	}

	select {
	case n.queue <- outgoing{chatID: userID, text: text}:
	default:
		logger.Named("notify.telegram").Warn("telegram queue full, dropping message",
			zap.Int64("user_id", userID),
			zap.String("type", msg.Type))
	}
}

// Run sends queued messages until ctx is cancelled.
func (n *TelegramNotifier) Run(ctx context.Context) {
	for {
		select {
		case out := <-n.queue:
			if _, err := n.bot.Send(tgbotapi.NewMessage(out.chatID, out.text)); err != nil {
				logger.Named("notify.telegram").Warn("failed to send telegram message",
					zap.Int64("chat_id", out.chatID),
					zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func formatMessage(msg service.Message) (string, bool) {
	switch msg.Type {
	case service.MessageStreakMilestone:
		return fmt.Sprintf("🔥 %v-day streak! Your best is %v days.",
			msg.Payload["current_streak"], msg.Payload["longest_streak"]), true
	case service.MessageGuildJoined:
		return fmt.Sprintf("A new member joined %v.", msg.Payload["group_name"]), true
	}
	return "", false
}
