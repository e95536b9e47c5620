// Package notify pushes scan alerts to Telegram.
//
// The notifier is a no-op when no bot token is configured, so the scan
// pipeline never branches on whether alerting is enabled.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/scanner"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends HTML-formatted messages through the Bot API.
type Telegram struct {
	// BaseURL is the API root; overridable for tests.
	BaseURL string

	token  string
	chatID string
	client *resty.Client
	log    *logrus.Entry
}

// NewTelegram builds a notifier. Empty token or chat id produce a disabled
// notifier that logs a warning per send attempt.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		BaseURL: telegramAPIBase,
		token:   token,
		chatID:  chatID,
		client:  resty.New().SetTimeout(10 * time.Second),
		log:     logger.WithComponent("notify"),
	}
}

// Enabled reports whether credentials are configured.
func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

// SendOpportunity alerts one identified setup.
func (t *Telegram) SendOpportunity(ctx context.Context, opp scanner.Opportunity) error {
	return t.sendMessage(ctx, FormatOpportunity(opp))
}

// SendScanSummary alerts the outcome of a whole scan run.
func (t *Telegram) SendScanSummary(ctx context.Context, results []scanner.Result) error {
	return t.sendMessage(ctx, FormatScanSummary(results))
}

// SendPositionClosed alerts a realized result.
func (t *Telegram) SendPositionClosed(ctx context.Context, opp scanner.Opportunity, result float64) error {
	return t.sendMessage(ctx, FormatPositionClosed(opp, result))
}

func (t *Telegram) sendMessage(ctx context.Context, text string) error {
	if !t.Enabled() {
		t.log.Warn("telegram credentials missing, dropping alert")
		return nil
	}

	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	resp, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatID,
			"text":       text,
			"parse_mode": "HTML",
		}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.token))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram rejected message (status %d): %s", resp.StatusCode(), out.Description)
	}

	t.log.Debug("telegram alert delivered")
	return nil
}
