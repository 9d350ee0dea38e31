// Package telegram provides Telegram Bot API integration for the
// tournament bot: sending HTML-formatted reports, inline event keyboards,
// long-polling for updates, and answering button callbacks.
//
// Messages longer than Telegram's limit are split on newline boundaries;
// when Telegram rejects a chunk's HTML, it is stripped and re-sent plain.
//
// Authentication requires a bot token (from @BotFather).
package telegram
