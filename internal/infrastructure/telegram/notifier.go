package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"FilmCatalog/internal/domain"
	"FilmCatalog/internal/ports"
)

const (
	defaultAPIBase      = "https://api.telegram.org"
	titlesPerCategory   = 10
	maxMessageRunes     = 4096
	truncatedMessageEnd = "\n…"
)

// Notifier sends refresh digests to a Telegram chat as HTML-formatted messages.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Configured reports whether both token and chat are set.
func (n *Notifier) Configured() bool {
	return n != nil && n.botToken != "" && n.chatID != ""
}

// PublishDigest sends one message covering every digest. An empty list sends nothing.
func (n *Notifier) PublishDigest(ctx context.Context, digests []domain.RefreshDigest) error {
	if !n.Configured() {
		return fmt.Errorf("telegram notifier misconfigured")
	}
	if len(digests) == 0 {
		return nil
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  formatDigest(digests),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.apiBase, "/"), n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(body, &out)
	if resp.StatusCode != http.StatusOK || !out.OK {
		if out.Description != "" {
			return fmt.Errorf("telegram %s: %s", resp.Status, out.Description)
		}
		return fmt.Errorf("telegram %s", resp.Status)
	}
	return nil
}

// formatDigest renders a bold header per category followed by linked titles.
func formatDigest(digests []domain.RefreshDigest) string {
	var b strings.Builder
	b.WriteString("<b>New films in the catalog</b>\n")
	for _, d := range digests {
		fmt.Fprintf(&b, "\n<b>%s</b>: %d new\n", html.EscapeString(d.Category), len(d.NewFilms))
		for i, f := range d.NewFilms {
			if i == titlesPerCategory {
				fmt.Fprintf(&b, "and %d more\n", len(d.NewFilms)-titlesPerCategory)
				break
			}
			title := f.Title
			if title == "" {
				title = f.ID
			}
			if f.URL != "" {
				fmt.Fprintf(&b, "• <a href=\"%s\">%s</a>\n", html.EscapeString(f.URL), html.EscapeString(title))
			} else {
				fmt.Fprintf(&b, "• %s\n", html.EscapeString(title))
			}
		}
	}
	return truncateRunes(b.String(), maxMessageRunes)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	// Cut at a line break so no HTML tag is left open.
	cut := string(runes[:limit-len([]rune(truncatedMessageEnd))])
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + truncatedMessageEnd
}
