package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiBaseURL is a var so tests can point the client at a local server.
var apiBaseURL = "https://api.telegram.org/bot"

const timeout = 10 * time.Second

// Client represents a Telegram Bot API client. One client serves every
// chat; the chat id travels with each call because the bot answers
// whichever chat messaged it.
type Client struct {
	botToken   string
	httpClient *http.Client
}

// NewClient creates a new Telegram client
func NewClient(botToken string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	return &Client{
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// InlineKeyboardButton is one tappable button in an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is the reply_markup payload for inline keyboards.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessage sends an HTML-formatted text message to a chat.
func (c *Client) SendMessage(chatID, text string) error {
	return c.sendMessage(chatID, text, "HTML", nil)
}

// SendPlainMessage sends a message without any parse mode, so Telegram
// never rejects it over markup it cannot parse.
func (c *Client) SendPlainMessage(chatID, text string) error {
	return c.sendMessage(chatID, text, "", nil)
}

// SendMessageWithKeyboard sends an HTML message with an inline keyboard.
func (c *Client) SendMessageWithKeyboard(chatID, text string, keyboard *InlineKeyboardMarkup) error {
	return c.sendMessage(chatID, text, "HTML", keyboard)
}

func (c *Client) sendMessage(chatID, text, parseMode string, keyboard *InlineKeyboardMarkup) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	return c.post("sendMessage", payload)
}

// post issues one Bot API call and checks both transport and API-level
// failure.
func (c *Client) post(method string, payload map[string]interface{}) error {
	url := fmt.Sprintf("%s%s/%s", apiBaseURL, c.botToken, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}

// Update is one incoming event from getUpdates: a message or a callback
// query from a button press.
type Update struct {
	UpdateID      int            `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// GetUpdates polls for updates. A positive timeoutSeconds switches
// Telegram into long-poll mode; the HTTP client timeout is stretched past
// it so the poll is never cut off locally.
func (c *Client) GetUpdates(offset, timeoutSeconds int) ([]Update, error) {
	url := fmt.Sprintf("%s%s/getUpdates", apiBaseURL, c.botToken)
	sep := "?"
	if offset > 0 {
		url += fmt.Sprintf("%soffset=%d", sep, offset)
		sep = "&"
	}
	if timeoutSeconds > 0 {
		url += fmt.Sprintf("%stimeout=%d", sep, timeoutSeconds)
	}

	clientTimeout := time.Duration(timeoutSeconds+10) * time.Second
	if clientTimeout < 15*time.Second {
		clientTimeout = 15 * time.Second
	}

	httpClient := &http.Client{Timeout: clientTimeout}
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if !result.OK {
		return nil, fmt.Errorf("telegram API returned ok=false")
	}

	return result.Result, nil
}
