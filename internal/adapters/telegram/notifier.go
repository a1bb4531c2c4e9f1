package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/marketpulse/stock-sentiment/pkg/logger"
	"github.com/marketpulse/stock-sentiment/pkg/models"
)

// Notifier sends aggregation run summaries to a Telegram chat
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier creates new Telegram notifier
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("telegram notifier initialized",
		zap.String("bot", bot.Self.UserName),
	)

	return &Notifier{bot: bot, chatID: chatID}, nil
}

// NotifyRunSummary sends one message covering a full aggregation run
func (n *Notifier) NotifyRunSummary(summaries []models.TickerSummary) error {
	if len(summaries) == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, formatRunSummary(summaries))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	return nil
}

func formatRunSummary(summaries []models.TickerSummary) string {
	var sb strings.Builder
	sb.WriteString("*Sentiment aggregation run*\n\n")

	for _, summary := range summaries {
		sb.WriteString(fmt.Sprintf("*%s*: %d buckets", summary.Ticker, len(summary.Aggregates)))
		if len(summary.Diagnostics) > 0 {
			sb.WriteString(fmt.Sprintf(" (%d warnings)", len(summary.Diagnostics)))
		}
		sb.WriteString("\n")

		for _, agg := range summary.Aggregates {
			if agg.Subreddit != models.AllSubreddits {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s: %.3f over %d posts\n",
				agg.Date, agg.WeightedSentiment, agg.SampleSize))
		}
	}

	return sb.String()
}
