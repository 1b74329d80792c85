package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/idilsaglam/jetsetter/internal/cli"
	"github.com/idilsaglam/jetsetter/internal/config"
	"github.com/idilsaglam/jetsetter/internal/store/jsonstore"
	"github.com/idilsaglam/jetsetter/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", config.DefaultPath(), "path to config.toml")
	group := flag.Bool("group", false, "group output by unpacked/packed")
	filter := flag.String("filter", "", "only show items whose title starts with this (case-insensitive)")
	stateFile := flag.String("state", "", "snapshot file to load and save (overrides config)")
	theme := flag.String("theme", "", "classic, neon or mono (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	if *stateFile != "" {
		cfg.StateFile = *stateFile
	}
	if *theme != "" {
		cfg.Theme = strings.ToLower(*theme)
		if err := cfg.Validate(); err != nil {
			ui.Fail(err.Error())
			return 2
		}
	}
	if *group {
		cfg.Group = true
	}

	// Logging goes to a file or nowhere; stdout belongs to the TUI.
	log.SetOutput(io.Discard)
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			ui.Warn(fmt.Sprintf("could not open log file: %v", err))
		} else {
			defer logFile.Close()
			log.SetOutput(logFile)
		}
	}

	ui.SetColorForcing(cfg.Color == config.ColorAlways, cfg.Color == config.ColorNever)
	ui.SetTheme(cfg.Theme)

	if cfg.StateFile != "" {
		cfg.StateFile = jsonstore.Resolve(cfg.StateFile)
	}
	log.Printf("config=%s state=%q theme=%s", *configPath, cfg.StateFile, cfg.Theme)

	return cli.Run(flag.Args(), cli.Options{
		Group:      cfg.Group,
		Filter:     *filter,
		StateFile:  cfg.StateFile,
		Seed:       cfg.Seed,
		ConfigPath: *configPath,
	})
}
