package preferences

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChatPreferences represents one chat's overrides: affiliate keywords and a
// discovery country. Empty fields fall back to the bot's configuration.
type ChatPreferences struct {
	Keywords []string `json:"keywords,omitempty"`
	Country  string   `json:"country,omitempty"`
}

// Preferences maps chat IDs to per-chat overrides
type Preferences map[string]*ChatPreferences

// Storage defines the interface for preferences storage
type Storage interface {
	Load() (Preferences, error)
	Save(prefs Preferences) error
}

// NewPreferences creates a new empty preferences map
func NewPreferences() Preferences {
	return make(Preferences)
}

// GetChat retrieves preferences for a chat, creating them if they don't exist
func (p Preferences) GetChat(chatID string) *ChatPreferences {
	if chat, exists := p[chatID]; exists {
		return chat
	}
	p[chatID] = &ChatPreferences{}
	return p[chatID]
}

// SetKeywords replaces a chat's affiliate keywords. Keywords are lowercased
// and blank entries dropped; an empty result clears the override.
func (p Preferences) SetKeywords(chatID string, keywords []string) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	p.GetChat(chatID).Keywords = cleaned
}

// Keywords returns a chat's keyword override, or nil when none is set.
func (p Preferences) Keywords(chatID string) []string {
	if chat, exists := p[chatID]; exists && len(chat.Keywords) > 0 {
		return chat.Keywords
	}
	return nil
}

// SetCountry replaces a chat's discovery country. An empty value clears the
// override.
func (p Preferences) SetCountry(chatID, country string) {
	p.GetChat(chatID).Country = strings.TrimSpace(country)
}

// Country returns a chat's country override, or "" when none is set.
func (p Preferences) Country(chatID string) string {
	if chat, exists := p[chatID]; exists {
		return chat.Country
	}
	return ""
}

// ToJSON marshals preferences to JSON
func (p Preferences) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON unmarshals preferences from JSON
func FromJSON(data []byte) (Preferences, error) {
	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("unmarshaling preferences: %w", err)
	}
	return prefs, nil
}
