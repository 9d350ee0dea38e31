// Package cli implements the command-line interface for tourna-events.
//
// The cli package provides the Cobra-based CLI with subcommands for
// discovering tournaments (discover), fuzzy name search (search), competitor
// schedule extraction (roster), and keyword calibration (hints). It
// coordinates the smoothcomp engine, storage, and calendar packages.
package cli
