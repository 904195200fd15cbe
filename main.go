package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/export"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	cfg, err := parseArgs()
	if err != nil {
		printFatalError(err)
		flag.Usage()
		os.Exit(1)
	}

	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	// One process-wide cancellation signal: Ctrl-C stops new work and
	// lets in-flight transfers finish naturally.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DestDir, 0755); err != nil {
		printFatalError(err)
		os.Exit(2)
	}

	client := export.NewClient(cfg.ExportDir)
	client.HarvestLinks = cfg.Links

	err = run(ctx, cfg, client)
	if err != nil {
		printFatalError(err)
		os.Exit(3)
	}
}
