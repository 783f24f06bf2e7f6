package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages to a chat through the Bot API.
type Telegram struct {
	Token   string
	ChatID  string
	BaseURL string // defaults to the public Bot API
	Client  *http.Client
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func (t *Telegram) Configured() bool {
	return t != nil && t.Token != "" && t.ChatID != ""
}

func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	if !t.Configured() {
		return nil
	}
	base := t.BaseURL
	if base == "" {
		base = telegramAPI
	}
	body, err := json.Marshal(telegramSendRequest{ChatID: t.ChatID, Text: msg.Body, ParseMode: "HTML"})
	if err != nil {
		return err
	}
	url := strings.TrimRight(base, "/") + "/bot" + t.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram send failed: status %d", resp.StatusCode)
	}
	return nil
}
