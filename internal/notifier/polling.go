package notifier

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	pollTimeout = 30 * time.Second
	pollRetry   = 5 * time.Second
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling begins long-polling for Telegram commands. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := int64(0)
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram polling stopped")
			return
		default:
		}

		next, err := t.PollOnce(offset, handler)
		if err != nil {
			log.Printf("[WARN] polling request failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetry):
			}
			continue
		}
		offset = next
	}
}

// PollOnce fetches one batch of updates starting at offset, dispatches every
// text message to handler and returns the next offset.
func (t *TelegramNotifier) PollOnce(offset int64, handler CommandHandler) (int64, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d",
		t.APIBase, t.BotToken, offset, int(pollTimeout.Seconds())))
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := t.Client.DoTimeout(req, resp, pollTimeout+5*time.Second); err != nil {
		return offset, fmt.Errorf("get updates: %w", err)
	}
	body := resp.Body()
	if !gjson.GetBytes(body, "ok").Bool() {
		return offset, fmt.Errorf("get updates: status %d, description: %s",
			resp.StatusCode(), gjson.GetBytes(body, "description").String())
	}

	gjson.GetBytes(body, "result").ForEach(func(_, update gjson.Result) bool {
		offset = update.Get("update_id").Int() + 1
		text := strings.TrimSpace(update.Get("message.text").String())
		if text == "" {
			return true
		}
		log.Printf("[INFO] received command: %s", text)
		if reply := handler(text); reply != "" {
			if err := t.Send(reply); err != nil {
				log.Printf("[ERROR] send reply: %v", err)
			}
		}
		return true
	})
	return offset, nil
}
