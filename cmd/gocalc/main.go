package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
	"github.com/mattn/gocalc"
)

var version = "devel"

var cli struct {
	Config   string           `help:"YAML configuration file." placeholder:"FILE"`
	LogLevel string           `help:"Override the log level (debug, info, warn, error)." placeholder:"LEVEL"`
	NoColor  bool             `help:"Never color the Result and Error labels."`
	Version  kong.VersionFlag `help:"Print the version and exit."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("gocalc"),
		kong.Description("Evaluate arithmetic expressions read from standard input, one per line."),
		kong.Vars{"version": version},
	)

	conf, err := loadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	if cli.LogLevel != "" {
		conf.Logging.LogLevel = cli.LogLevel
	}

	logger, closer := newLogger(conf.Logging, os.Stderr)
	defer closer.Close()

	fd := os.Stdout.Fd()
	color := !cli.NoColor && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))

	repl := gocalc.NewREPL(os.Stdin, os.Stdout, &gocalc.REPLOptions{
		Color:         color,
		Logger:        logger,
		Eval:          &gocalc.EvalOptions{MaxDepth: conf.Evaluator.MaxDepth},
		MaxLineLength: conf.REPL.MaxLineLength,
	})
	if err := repl.Run(); err != nil {
		logger.Error("reading input", slog.String("error", err.Error()))
		closer.Close()
		os.Exit(1)
	}
}
