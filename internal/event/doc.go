// Package event provides the tournament event and competitor schedule value
// objects shared by the engine, the bot, and the CLI.
//
// Besides the data types, the package carries the text heuristics used to
// interpret loosely structured listing markup: date extraction, country
// matching, location guessing, and the name normalization that fuzzy search
// scoring relies on. Event identity is derived from the digits in the
// canonical event URL, so the same event reached through different page
// variants resolves to the same identifier.
package event
