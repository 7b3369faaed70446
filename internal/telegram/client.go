// Package telegram announces the daily pick to a Telegram chat.
// It formats the pick into a MarkdownV2 message and handles delivery with retry
// logic, and its Announcer posts each featured date at most once.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/deadredux/internal/format"
	"github.com/rewired-gh/deadredux/internal/models"
)

// Sender delivers a message. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	sender         Sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return NewClientWithSender(bot, chatID, maxRetries, retryDelayBase)
}

// NewClientWithSender creates a client over an existing sender.
func NewClientWithSender(sender Sender, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		sender:         sender,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Announce posts the pick and returns the Telegram message ID.
func (c *Client) Announce(ctx context.Context, pick models.DailyPick, pageURL string) (int, error) {
	msg := tgbotapi.NewMessage(c.chatID, FormatMessage(pick, pageURL))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		sent, err := c.sender.Send(msg)
		if err == nil {
			return sent.MessageID, nil
		}
		lastErr = err

		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return 0, fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// FormatMessage renders a daily pick as a MarkdownV2 message.
func FormatMessage(pick models.DailyPick, pageURL string) string {
	show := pick.Show
	var b strings.Builder

	b.WriteString("🌹 *Today's Dead show*\n\n")
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdownV2(show.Venue))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdownV2(show.Location))
	fmt.Fprintf(&b, "📅 %s\n", escapeMarkdownV2(format.Date(show.Date)))

	if show.AvgRating > 0 {
		fmt.Fprintf(&b, "⭐ %s", escapeMarkdownV2(format.Rating(show.AvgRating)))
		if show.SourceCount > 0 {
			fmt.Fprintf(&b, " across %d %s", show.SourceCount, plural(show.SourceCount, "source", "sources"))
		}
		b.WriteString("\n")
	}
	if show.HasSoundboard {
		b.WriteString("🎛 Soundboard available\n")
	}

	if pageURL != "" {
		fmt.Fprintf(&b, "\n[Listen now](%s)", escapeLinkURL(pageURL))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . ! \
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// Inside (...) of an inline link only ) and \ must be escaped.
func escapeLinkURL(u string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(u)
}
