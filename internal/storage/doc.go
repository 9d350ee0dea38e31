// Package storage provides JSON-based persistence for discovery snapshots.
//
// A snapshot records the events found by the last discovery runs, keyed by
// event identifier, so a roster lookup by id can skip the network when the
// event was already seen. The default location is ~/.tourna-events/.
package storage
