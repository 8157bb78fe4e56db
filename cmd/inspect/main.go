package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/handle-table/lockorder"
	"github.com/wippyai/handle-table/table"
)

func main() {
	var (
		scenarioFile = flag.String("scenario", "", "Path to scenario file (JSON with comments)")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		debug        = flag.Bool("debug", false, "Verbose logging and lock order checking")
		increment    = flag.Uint("increment", 1024, "Slots added per growth step")
		minFree      = flag.Uint("minfree", 128, "Low-water mark of free slots")
	)
	flag.Parse()

	if *scenarioFile == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: inspect -scenario <file> [-debug]")
		fmt.Fprintln(os.Stderr, "       inspect -i [-scenario <file>]  (interactive mode)")
		os.Exit(1)
	}

	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()
		table.SetLogger(logger.Named("table"))
		lockorder.Enable()
	}

	opts := table.DefaultOptions()
	opts.GrowthIncrement = uint32(*increment)
	opts.MinFreeEntries = uint32(*minFree)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*scenarioFile, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := replay(*scenarioFile, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
