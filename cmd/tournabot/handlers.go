package main

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pfrederiksen/tourna-events/internal/config"
	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/logger"
	"github.com/pfrederiksen/tourna-events/internal/preferences"
	"github.com/pfrederiksen/tourna-events/internal/smoothcomp"
	"github.com/pfrederiksen/tourna-events/internal/telegram"
)

const (
	eventButtonLimit  = 25
	searchButtonLimit = 10
	buttonLabelLimit  = 60

	affiliateHintLimit = 12
	personHintLimit    = 15
)

type bot struct {
	settings   *config.Settings
	tg         *telegram.Client
	engine     *smoothcomp.Client
	prefs      preferences.Preferences
	prefsStore preferences.Storage

	// events is the per-run cache behind the inline keyboards: callback
	// data carries only an id, the chosen event is looked up here.
	events map[string]*event.Event
}

func (b *bot) handleUpdate(update telegram.Update) {
	correlationID := uuid.NewString()

	switch {
	case update.CallbackQuery != nil:
		logger.Info("callback received", logger.Fields{
			"correlation_id": correlationID,
			"data":           update.CallbackQuery.Data,
		})
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
		text := strings.TrimSpace(update.Message.Text)
		logger.Info("message received", logger.Fields{
			"correlation_id": correlationID,
			"chat_id":        chatID,
			"text":           text,
		})
		b.handleMessage(chatID, text)
	}
}

func (b *bot) handleMessage(chatID, text string) {
	if strings.HasPrefix(text, "/") {
		cmd, args := parseCommand(text)
		b.handleCommand(chatID, cmd, args)
		return
	}
	b.handleTextInput(chatID, text)
}

// parseCommand splits "/events@SomeBot 2026" into "events" and ["2026"].
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	cmd := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), fields[1:]
}

func (b *bot) handleCommand(chatID, cmd string, args []string) {
	switch cmd {
	case "start":
		b.reply(chatID,
			"Send me an event reference:\n"+
				"1) Event URL (e.g. https://smoothcomp.com/en/event/26935)\n"+
				"2) Event ID (e.g. 26935 or \"event id: 26935\")\n"+
				"3) Event name + year (e.g. \"Hyperfly Asian Open 2026\")\n\n"+
				"If you send a name, I will show candidate events for confirmation.")
	case "help":
		b.reply(chatID,
			"How to use:\n"+
				"- Send event URL directly\n"+
				"- Send event ID directly\n"+
				"- Send event name + year and pick the correct match\n"+
				"\n"+
				"Extra commands:\n"+
				"- /events 2026 (list discoverable events)\n"+
				"- /keywords alpha, deftac (per-chat affiliate filter)\n"+
				"- /country Japan (per-chat discovery country)\n"+
				"- /debugevents 2026")
	case "events", "upcoming", "schedule":
		year, ok := parseYearArg(args)
		if !ok {
			b.reply(chatID, "Invalid year. Example: /events 2026")
			return
		}
		b.handleEvents(chatID, year)
	case "debugevents":
		year, ok := parseYearArg(args)
		if !ok {
			b.reply(chatID, "Invalid year. Example: /debugevents 2026")
			return
		}
		b.handleDebugEvents(chatID, year)
	case "keywords":
		b.handleKeywords(chatID, args)
	case "country":
		b.handleCountry(chatID, args)
	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

// parseYearArg reads an optional year argument, defaulting to the current
// year. Reports false when the argument is present but not a number.
func parseYearArg(args []string) (int, bool) {
	if len(args) == 0 {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	return year, true
}

func (b *bot) handleEvents(chatID string, year int) {
	b.reply(chatID, "Fetching events from Smoothcomp. Please wait...")

	events, err := b.engine.FetchEvents(year, b.countryFor(chatID))
	if err != nil {
		logger.Error("event discovery failed", logger.Fields{"chat_id": chatID}, err)
		b.reply(chatID, "Event discovery failed. Please try again later.")
		return
	}

	b.cacheEvents(events)

	keyboard := eventKeyboard(events, eventButtonLimit)
	if keyboard == nil {
		b.tg.SendChunked(chatID, telegram.FormatEvents(events))
		return
	}
	if err := b.tg.SendMessageWithKeyboard(chatID, telegram.FormatEvents(events), keyboard); err != nil {
		logger.Error("sending event list failed", logger.Fields{"chat_id": chatID}, err)
	}
}

func (b *bot) handleDebugEvents(chatID string, year int) {
	b.reply(chatID, "Running Smoothcomp event discovery debug...")

	report, err := b.engine.DebugDiscovery(year, b.countryFor(chatID))
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Debug discovery failed: %v", err))
		return
	}
	b.tg.SendChunked(chatID, "<pre>"+html.EscapeString(report)+"</pre>")
}

func (b *bot) handleKeywords(chatID string, args []string) {
	if len(args) == 0 {
		b.reply(chatID, fmt.Sprintf(
			"Current affiliate keywords: %s\n"+
				"Set per-chat keywords with /keywords alpha, deftac\n"+
				"Reset to the bot default with /keywords clear",
			strings.Join(b.keywordsFor(chatID), ", ")))
		return
	}

	joined := strings.Join(args, " ")
	if strings.EqualFold(strings.TrimSpace(joined), "clear") {
		b.prefs.SetKeywords(chatID, nil)
		b.savePrefs()
		b.reply(chatID, "Keyword override cleared. Using the bot default.")
		return
	}

	keywords := config.ParseKeywords(joined)
	if len(keywords) == 0 {
		b.reply(chatID, "No keywords recognized. Example: /keywords alpha, deftac")
		return
	}
	b.prefs.SetKeywords(chatID, keywords)
	b.savePrefs()
	b.reply(chatID, fmt.Sprintf("Affiliate keywords for this chat: %s", strings.Join(keywords, ", ")))
}

func (b *bot) handleCountry(chatID string, args []string) {
	if len(args) == 0 {
		b.reply(chatID, fmt.Sprintf(
			"Current discovery country: %s\n"+
				"Set a per-chat country with /country Japan\n"+
				"Reset to the bot default with /country clear",
			b.countryFor(chatID)))
		return
	}

	country := strings.TrimSpace(strings.Join(args, " "))
	if strings.EqualFold(country, "clear") {
		b.prefs.SetCountry(chatID, "")
		b.savePrefs()
		b.reply(chatID, "Country override cleared. Using the bot default.")
		return
	}

	b.prefs.SetCountry(chatID, country)
	b.savePrefs()
	b.reply(chatID, fmt.Sprintf("Discovery country for this chat: %s", country))
}

// handleTextInput routes a free-text message: event URL, then event id,
// then name query with an optional year hint.
func (b *bot) handleTextInput(chatID, text string) {
	if url := event.MatchEventURL(text); url != "" {
		b.reply(chatID, "Got event URL. Loading competitors and schedules...")
		ev, err := b.engine.FetchEventByURL(url, b.countryFor(chatID))
		if err != nil || ev == nil {
			b.reply(chatID, "I could not load that event URL. Please check and send again.")
			return
		}
		b.events[ev.ID] = ev
		b.sendEventSchedule(chatID, ev)
		return
	}

	if id := event.MatchEventID(text); id != "" {
		b.reply(chatID, "Got event ID. Loading event details...")
		ev, err := b.engine.FetchEventByID(id, b.countryFor(chatID))
		if err != nil || ev == nil {
			b.reply(chatID, "I could not load that event ID. Please verify the ID and try again.")
			return
		}
		b.events[ev.ID] = ev
		b.sendEventSchedule(chatID, ev)
		return
	}

	year := event.MatchYear(text, time.Now().Year())
	b.reply(chatID, "Searching matching events. Please wait...")
	matches, err := b.engine.SearchEventsByName(text, year, b.countryFor(chatID), searchButtonLimit)
	if err != nil || len(matches) == 0 {
		b.reply(chatID, "No matching events found. Send an event URL or event ID for exact lookup.")
		return
	}

	b.cacheEvents(matches)
	keyboard := eventKeyboard(matches, searchButtonLimit)
	if err := b.tg.SendMessageWithKeyboard(chatID, "I found these events. Please confirm the correct one:", keyboard); err != nil {
		logger.Error("sending search results failed", logger.Fields{"chat_id": chatID}, err)
	}
}

func (b *bot) handleCallback(cb *telegram.CallbackQuery) {
	b.tg.AnswerCallbackQuery(cb.ID)

	if cb.Message == nil || !strings.HasPrefix(cb.Data, "event:") {
		return
	}
	chatID := strconv.FormatInt(cb.Message.Chat.ID, 10)
	eventID := strings.TrimPrefix(cb.Data, "event:")

	ev := b.events[eventID]
	if ev == nil {
		b.tg.EditMessageText(chatID, cb.Message.MessageID,
			"I could not find that event in cache. Send URL/ID again or run /events.", nil)
		return
	}

	b.tg.EditMessageText(chatID, cb.Message.MessageID,
		fmt.Sprintf("Loading schedules for %s...", html.EscapeString(ev.Name)), nil)
	b.sendEventSchedule(chatID, ev)
}

// sendEventSchedule extracts and sends the competitor schedule. An empty
// schedule gets hint blocks appended so the user can recalibrate the
// keyword filter.
func (b *bot) sendEventSchedule(chatID string, ev *event.Event) {
	keywords := b.keywordsFor(chatID)
	rows := b.engine.FetchCompetitors(ev, keywords)

	text := telegram.FormatCompetitors(ev, rows, keywords)
	if len(rows) == 0 {
		text += telegram.FormatAffiliateHints(b.engine.DetectAffiliates(ev, affiliateHintLimit))
		text += telegram.FormatPeopleHints(b.engine.DetectPeople(ev, personHintLimit))
	}

	if err := b.tg.SendChunked(chatID, text); err != nil {
		logger.Error("sending schedule failed", logger.Fields{"chat_id": chatID, "event_id": ev.ID}, err)
	}
}

// eventKeyboard builds one button per event, up to max, labelled with the
// event name truncated to the Telegram-friendly limit.
func eventKeyboard(events []*event.Event, max int) *telegram.InlineKeyboardMarkup {
	if len(events) == 0 {
		return nil
	}
	if len(events) > max {
		events = events[:max]
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(events))
	for _, ev := range events {
		label := []rune(ev.Name)
		if len(label) > buttonLabelLimit {
			label = label[:buttonLabelLimit]
		}
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         string(label),
			CallbackData: "event:" + ev.ID,
		}})
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (b *bot) cacheEvents(events []*event.Event) {
	for _, ev := range events {
		b.events[ev.ID] = ev
	}
}

// keywordsFor returns the chat's keyword override, or the configured
// default.
func (b *bot) keywordsFor(chatID string) []string {
	if kws := b.prefs.Keywords(chatID); kws != nil {
		return kws
	}
	return b.settings.AffiliateKeywords
}

// countryFor returns the chat's country override, or the configured
// default.
func (b *bot) countryFor(chatID string) string {
	if country := b.prefs.Country(chatID); country != "" {
		return country
	}
	return b.settings.DefaultCountry
}

func (b *bot) savePrefs() {
	if err := b.prefsStore.Save(b.prefs); err != nil {
		logger.Error("saving preferences failed", nil, err)
	}
}

// reply sends a plain-text prompt.
func (b *bot) reply(chatID, text string) {
	if err := b.tg.SendPlainMessage(chatID, text); err != nil {
		logger.Error("sending reply failed", logger.Fields{"chat_id": chatID}, err)
	}
}
