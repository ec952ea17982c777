// Package main implements the main entry point for a CHIP-8 virtual machine
package main

import (
	"errors"
	"os"

	"github.com/retroenv/chip8vm/internal/app"
	"github.com/retroenv/chip8vm/internal/cli"
	"github.com/retroenv/chip8vm/internal/config"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		if errors.Is(err, cli.ErrHelpRequested) {
			return
		}
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error("Invalid options", log.Err(err))
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	app.PrintBanner(logger, opts, version, commit, date)

	if opts.Disassemble {
		if err := app.Disassemble(logger, opts, os.Stdout); err != nil {
			logger.Fatal("Disassembling failed", log.Err(err))
		}
		return
	}

	if err := app.Run(ctx, logger, opts, os.Stdout); err != nil {
		logger.Fatal("Execution failed", log.Err(err))
	}
}
