// Package config loads runtime settings for the bot and CLI from an
// optional YAML file with environment-variable overrides. Environment
// variables win over file values, and file values win over defaults, so a
// deployment can ship a config file and still rotate the bot token through
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for every tunable. The listing and mirror URLs point at the
// public endpoints the engine was built against.
const (
	DefaultEventsURL       = "https://smoothcomp.com/en/events/upcoming"
	DefaultMirrorEventsURL = "https://compseek.net/events/smoothcomp"
	DefaultCountry         = "Philippines"
	DefaultTimeoutSeconds  = 20
	DefaultDataDir         = "~/.tourna-events"
)

// Settings holds the full runtime configuration.
type Settings struct {
	TelegramBotToken  string   `yaml:"telegram_bot_token"`
	AffiliateKeywords []string `yaml:"team_affiliate_keywords"`
	EventsURL         string   `yaml:"events_url"`
	MirrorEventsURL   string   `yaml:"mirror_events_url"`
	TimeoutSeconds    float64  `yaml:"timeout_seconds"`
	DefaultCountry    string   `yaml:"default_country"`
	DataDir           string   `yaml:"data_dir"`
	LogLevel          string   `yaml:"log_level"`
}

// Default returns settings with every field at its default value.
func Default() *Settings {
	return &Settings{
		EventsURL:       DefaultEventsURL,
		MirrorEventsURL: DefaultMirrorEventsURL,
		TimeoutSeconds:  DefaultTimeoutSeconds,
		DefaultCountry:  DefaultCountry,
		DataDir:         DefaultDataDir,
		LogLevel:        "info",
	}
}

// Load builds settings from defaults, then the YAML file at path (skipped
// when path is empty), then environment overrides. File values may embed
// ${VAR} references, expanded before parsing.
func Load(path string) (*Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), s); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	s.applyEnv()

	if s.TimeoutSeconds <= 0 {
		s.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return s, nil
}

// FromEnv builds settings from defaults and the environment alone.
func FromEnv() *Settings {
	s := Default()
	s.applyEnv()
	return s
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); v != "" {
		s.TelegramBotToken = v
	}
	if v := os.Getenv("TEAM_AFFILIATE_KEYWORDS"); v != "" {
		s.AffiliateKeywords = ParseKeywords(v)
	}
	if v := strings.TrimSpace(os.Getenv("SMOOTHCOMP_EVENTS_URL")); v != "" {
		s.EventsURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SMOOTHCOMP_EVENTS_FALLBACK_URL")); v != "" {
		s.MirrorEventsURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SMOOTHCOMP_DEFAULT_COUNTRY")); v != "" {
		s.DefaultCountry = v
	}
	if v := strings.TrimSpace(os.Getenv("SMOOTHCOMP_TIMEOUT_SECONDS")); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			s.TimeoutSeconds = secs
		}
	}
	if v := strings.TrimSpace(os.Getenv("TOURNA_DATA_DIR")); v != "" {
		s.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		s.LogLevel = v
	}
}

// ParseKeywords splits a comma-separated keyword list, trimming and
// lowercasing each entry and dropping empties.
func ParseKeywords(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Timeout returns the HTTP timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// RequireBot validates the fields the bot binary cannot run without.
func (s *Settings) RequireBot() error {
	if strings.TrimSpace(s.TelegramBotToken) == "" {
		return fmt.Errorf("missing TELEGRAM_BOT_TOKEN")
	}
	if len(s.AffiliateKeywords) == 0 {
		return fmt.Errorf("set TEAM_AFFILIATE_KEYWORDS, comma-separated")
	}
	return nil
}
