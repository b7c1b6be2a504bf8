package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/config"
	"github.com/urfave/cli/v2"
)

var version = "dev"

// settings are loaded once in Before and saved by commands that change them
var settings *config.Settings

func main() {
	app := &cli.App{
		Name:    "enginelog",
		Usage:   "Browse and plot engine data logs",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "show debug messages",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "preset database",
				Value: config.DefaultDBPath(),
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				pterm.EnableDebugMessages()
			}
			s, err := config.LoadSettings()
			if err != nil {
				pterm.Warning.Printf("Could not load settings: %v\n", err)
			}
			settings = s
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			pterm.Error.Println(err)
			code := 1
			var ec cli.ExitCoder
			if errors.As(err, &ec) {
				code = ec.ExitCode()
			}
			os.Exit(code)
		},
		Commands: []*cli.Command{
			paramsCommand(),
			categoriesCommand(),
			plotCommand(),
			xyCommand(),
			serveCommand(),
			presetCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
