package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsChecker/internal/config"
	"NewsChecker/internal/ports"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	// Telegram rejects messages longer than 4096 characters.
	maxMessageRunes = 4096
)

// Notifier sends monitor digests to a Telegram chat via bot API.
type Notifier struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(cfg config.TelegramConfig) *Notifier {
	return &Notifier{
		baseURL:  defaultBaseURL,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// WithBaseURL points the notifier at another Bot API host.
func (n *Notifier) WithBaseURL(baseURL string) *Notifier {
	n.baseURL = strings.TrimRight(baseURL, "/")
	return n
}

// PublishDigest posts the digest as plain text, split into several messages when long.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	for _, chunk := range splitMessage(digest, maxMessageRunes) {
		if err := n.send(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var payload apiResponse
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode != http.StatusOK || !payload.OK {
		if payload.Description != "" {
			return fmt.Errorf("telegram error: %s: %s", resp.Status, payload.Description)
		}
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// splitMessage breaks text on line boundaries so each part fits the limit.
func splitMessage(text string, limit int) []string {
	if len([]rune(text)) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current []rune
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = nil
			}
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if len(current)+len(runes) > limit {
			parts = append(parts, string(current))
			current = nil
		}
		current = append(current, runes...)
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
