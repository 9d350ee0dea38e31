package telegram

import (
	"regexp"
	"strings"
)

// Telegram caps messages at 4096 characters. Splitting well below the cap
// leaves headroom for HTML entities that count against it.
const (
	htmlChunkLimit  = 3500
	plainChunkLimit = 3900
)

var (
	brTagPattern     = regexp.MustCompile(`(?i)<br\s*/?>`)
	inlineTagPattern = regexp.MustCompile(`(?i)</?(?:b|i|u|strong|em|code|pre)>`)
	anyTagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// SplitMessage breaks text into chunks of at most limit characters,
// preferring to cut at the last newline inside the window. A newline that
// sits before the halfway point wastes too much of the window, so the
// chunk is hard-cut at the limit instead.
func SplitMessage(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut < limit/2 {
			cut = limit
		}
		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = text[cut:]
	}
	if strings.TrimSpace(text) != "" {
		chunks = append(chunks, strings.TrimSpace(text))
	}
	return chunks
}

// StripHTML converts a message built for parse_mode=HTML into plain text:
// line breaks survive, formatting tags vanish.
func StripHTML(text string) string {
	text = brTagPattern.ReplaceAllString(text, "\n")
	text = inlineTagPattern.ReplaceAllString(text, "")
	return anyTagPattern.ReplaceAllString(text, "")
}

// SendChunked delivers an HTML message of any length. Each chunk that
// Telegram rejects (usually over malformed markup in scraped data) is
// stripped to plain text and re-sent without a parse mode.
func (c *Client) SendChunked(chatID, text string) error {
	var lastErr error
	for _, chunk := range SplitMessage(text, htmlChunkLimit) {
		if err := c.SendMessage(chatID, chunk); err == nil {
			continue
		}
		plain := StripHTML(chunk)
		for _, pchunk := range SplitMessage(plain, plainChunkLimit) {
			if err := c.SendPlainMessage(chatID, pchunk); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}
