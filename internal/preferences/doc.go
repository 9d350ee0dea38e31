// Package preferences manages per-chat overrides for the tournament bot.
//
// Each chat can override the affiliate keyword filter and the discovery
// country; unset fields fall back to the bot's configuration. Preferences
// are persisted as a JSON file keyed by chat ID.
package preferences
