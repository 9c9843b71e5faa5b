package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	sendTimeout    = 30 * time.Second
)

// Notifier delivers chart messages somewhere a human will see them.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIBase  string
	Client   *fasthttp.Client
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// Proxies may be http://, https:// or socks5:// URLs.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	client := &fasthttp.Client{
		ReadTimeout:  sendTimeout,
		WriteTimeout: sendTimeout,
	}
	switch {
	case strings.HasPrefix(proxyURL, "socks5://"):
		client.Dial = fasthttpproxy.FasthttpSocksDialer(proxyURL)
	case proxyURL != "":
		addr := strings.TrimPrefix(strings.TrimPrefix(proxyURL, "http://"), "https://")
		client.Dial = fasthttpproxy.FasthttpHTTPDialerTimeout(addr, sendTimeout)
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIBase:  defaultAPIBase,
		Client:   client,
		Backoff:  time.Second,
	}
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/bot%s/sendMessage", t.APIBase, t.BotToken))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := t.Client.DoTimeout(req, resp, sendTimeout); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	respBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK || !gjson.GetBytes(respBody, "ok").Bool() {
		return fmt.Errorf("telegram API error: status %d, description: %s",
			resp.StatusCode(), gjson.GetBytes(respBody, "description").String())
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := t.Backoff * time.Duration(1<<uint(i))
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// LogNotifier writes messages to the standard logger. It is used when no
// Telegram bot is configured.
type LogNotifier struct{}

func (LogNotifier) Send(text string) error {
	log.Printf("[INFO] notify: %s", text)
	return nil
}

func (l LogNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return l.Send(text)
}
