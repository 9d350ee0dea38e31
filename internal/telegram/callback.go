package telegram

import "fmt"

// User represents a Telegram user
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat represents a Telegram chat
type Chat struct {
	ID int64 `json:"id"`
}

// Message represents a Telegram message
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// CallbackQuery represents a callback from an inline keyboard button press
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing its loading spinner.
func (c *Client) AnswerCallbackQuery(callbackQueryID string) error {
	if callbackQueryID == "" {
		return fmt.Errorf("callback query ID is required")
	}

	payload := map[string]interface{}{
		"callback_query_id": callbackQueryID,
	}

	return c.post("answerCallbackQuery", payload)
}

// EditMessageText replaces the text (and optionally the keyboard) of a
// message the bot already sent.
func (c *Client) EditMessageText(chatID string, messageID int, text string, keyboard *InlineKeyboardMarkup) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"message_id":               messageID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}

	return c.post("editMessageText", payload)
}
