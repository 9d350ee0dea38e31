// Command tourna-events is the CLI for tournament discovery, name search,
// roster extraction, and keyword-calibration hints.
package main

import "github.com/pfrederiksen/tourna-events/internal/cli"

func main() {
	cli.Execute()
}
