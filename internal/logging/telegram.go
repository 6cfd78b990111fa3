package logging

import (
	"fmt"

	"github.com/go-resty/resty/v2"

	"jewelry-repricer/internal/config"
)

const telegramAPIBase = "https://api.telegram.org"

const (
	iconError   = "❌"
	iconWarning = "⚠️"
	iconSuccess = "✅"
)

type telegramRequest struct {
	ChatId string `json:"chat_id"`
	Text   string `json:"text"`
}

type telegramNotifier struct {
	creds      config.TelegramBotConfig
	baseURL    string
	httpClient *resty.Client
}

func newTelegramNotifier(creds config.TelegramBotConfig, httpClient *resty.Client) *telegramNotifier {
	if httpClient == nil {
		httpClient = resty.New()
	}
	return &telegramNotifier{
		creds:      creds,
		baseURL:    telegramAPIBase,
		httpClient: httpClient,
	}
}

func (t *telegramNotifier) send(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.creds.Token)

	resp, err := t.httpClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(telegramRequest{ChatId: t.creds.ChatId, Text: text}).
		Post(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("telegram send failed: %s: %s", resp.Status(), resp.String())
	}
	return nil
}
