// Command tournabot runs the Telegram bot: it long-polls for updates,
// resolves event references (URL, id, or name query), and replies with
// team competitor schedules extracted from the event's pages.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/tourna-events/internal/config"
	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/logger"
	"github.com/pfrederiksen/tourna-events/internal/preferences"
	"github.com/pfrederiksen/tourna-events/internal/smoothcomp"
	"github.com/pfrederiksen/tourna-events/internal/storage"
	"github.com/pfrederiksen/tourna-events/internal/telegram"
)

var (
	configPath   = flag.String("config", "", "Path to YAML config file (optional)")
	loopDuration = flag.Duration("loop-duration", 0, "Maximum run duration, e.g. 5h50m (0 = run until stopped)")
	pollTimeout  = flag.Int("poll-timeout", 30, "Long-poll timeout in seconds")
)

func main() {
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.New(logger.ParseLevel(settings.LogLevel), os.Stderr))

	if err := settings.RequireBot(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tg, err := telegram.NewClient(settings.TelegramBotToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Telegram client: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.New(settings.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing storage: %v\n", err)
		os.Exit(1)
	}

	prefsStore := preferences.NewFileStorage(filepath.Join(store.DataDir(), "preferences.json"))
	prefs, err := prefsStore.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading preferences: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting bot", logger.Fields{
		"chats_with_preferences": len(prefs),
		"keywords":               settings.AffiliateKeywords,
		"default_country":        settings.DefaultCountry,
	})

	b := &bot{
		settings:   settings,
		tg:         tg,
		engine:     smoothcomp.New(settings.EventsURL, settings.MirrorEventsURL, settings.Timeout()),
		prefs:      prefs,
		prefsStore: prefsStore,
		events:     make(map[string]*event.Event),
	}

	b.runLoop(*loopDuration, *pollTimeout)
}

// runLoop polls for updates until the duration budget runs out. Poll
// failures pause briefly and retry; a failing Telegram API should not
// crash the bot.
func (b *bot) runLoop(duration time.Duration, pollTimeout int) {
	logger.Info("starting long polling loop", logger.Fields{"duration": duration.String()})
	startTime := time.Now()
	offset := 0

	for {
		if duration > 0 && time.Since(startTime) >= duration {
			logger.Info("reached time limit, exiting gracefully", logger.Fields{"duration": duration.String()})
			break
		}

		updates, err := b.tg.GetUpdates(offset, pollTimeout)
		if err != nil {
			logger.Error("getting updates failed", nil, err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range updates {
			b.handleUpdate(update)

			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
		}
	}

	logger.Info("long polling loop completed", nil)
}
