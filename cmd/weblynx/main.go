package main

import (
	"os"

	"weblynx/internal/version"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.App{
		Name:    "weblynx",
		Usage:   "Decompose User-Agent strings and URLs, on demand or from access logs.",
		Version: version.Version,
		Commands: []*cli.Command{
			userAgentCommand(),
			urlCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
