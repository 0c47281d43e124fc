package notifications

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TelegramNotifier posts trade events to a Telegram chat via the bot API.
type TelegramNotifier struct {
	token  string
	chatID string
	client *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) NotifyPositionOpened(symbol, side string, size, entryPrice float64) error {
	return t.send(fmt.Sprintf("📈 *Position Opened*\n\n%s %s\nSize: %.6f\nEntry: %.4f",
		strings.ToUpper(side), symbol, size, entryPrice))
}

func (t *TelegramNotifier) NotifyPositionClosed(symbol, reason string, exitPrice, pnl float64) error {
	emoji := "✅"
	if pnl < 0 {
		emoji = "🔻"
	}
	return t.send(fmt.Sprintf("%s *Position Closed*\n\n%s (%s)\nExit: %.4f\nPnL: %.2f USDT",
		emoji, symbol, reason, exitPrice, pnl))
}

func (t *TelegramNotifier) NotifyRiskEvent(message string) error {
	return t.send(fmt.Sprintf("🚨 *Risk Alert*\n\n%s", message))
}

func (t *TelegramNotifier) send(text string) error {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	data := url.Values{}
	data.Set("chat_id", t.chatID)
	data.Set("text", text)
	data.Set("parse_mode", "Markdown")

	resp, err := t.client.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
