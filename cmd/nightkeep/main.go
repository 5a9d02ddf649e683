// Nightkeep is a deterministic typing-combat tower defense played in the terminal.
// Usage: nightkeep [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--seed <seed>]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"github.com/nathoo/nightkeep/cli"
	"github.com/nathoo/nightkeep/config"
	"github.com/nathoo/nightkeep/engine"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/host"
	"github.com/nathoo/nightkeep/loader"
	"github.com/nathoo/nightkeep/store"
	"github.com/nathoo/nightkeep/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: nightkeep [--version] [--plain] [--script <file>] [--trace] [--config <file>] [--seed <seed>]\n"

type options struct {
	plain      bool
	trace      bool
	scriptFile string
	configFile string
	seed       string
}

func main() {
	var opts options

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("nightkeep %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			opts.plain = true
		case "--trace":
			opts.trace = true
		case "--script", "--config", "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", args[i])
				os.Exit(1)
			}
			i++
			switch args[i-1] {
			case "--script":
				opts.scriptFile = args[i]
			case "--config":
				opts.configFile = args[i]
			case "--seed":
				opts.seed = args[i]
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown argument %q\n%s", args[i], usage)
			os.Exit(1)
		}
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.seed != "" {
		cfg.Seed = opts.seed
	}

	log, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	// Lua game content: a directory when configured, the built-in set otherwise.
	var defs *state.Defs
	if cfg.ContentDir != "" {
		defs, err = loader.Load(cfg.ContentDir)
	} else {
		defs, err = loader.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}

	st, err := store.Open(cfg.SaveDB)
	if err != nil {
		return err
	}
	defer st.Close()
	st.Log = log

	eng := engine.New(defs, state.Options{Seed: cfg.Seed, LessonID: cfg.Lesson})
	h := host.New(eng, st, cfg.Autosave)
	h.Log = log
	log.Info("game started", slog.String("seed", eng.State.RngSeed),
		slog.String("lesson", eng.State.LessonID), slog.String("save_db", cfg.SaveDB))

	// Script mode: open file, force plain, echo commands.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		printBanner(defs)
		c := cli.New(h)
		c.In = f
		c.EchoInput = true
		c.Trace = opts.trace
		c.Run(ctx)
		return nil
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if opts.plain || !isatty.IsTerminal(os.Stdout.Fd()) {
		printBanner(defs)
		c := cli.New(h)
		c.Trace = opts.trace
		c.Run(ctx)
		return nil
	}

	return tui.Run(ctx, h)
}

func printBanner(defs *state.Defs) {
	fmt.Printf("%s v%s\n\n", defs.Game.Title, defs.Game.Version)
}
