package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gajendercode/teledownloadr/telegram"
)

type Config struct {
	ExportDir string               // Path of the chat-export directory to read from.
	DestDir   string               // Destination directory to save media and resume files to.
	ChatIDs   []string             // Chats to process; empty means every chat in the export.
	Limit     int                  // Max history entries per chat; 0 for unbounded.
	Kinds     []telegram.MediaKind // Media-kind filter; empty for all kinds.
	Width     int                  // Simultaneous transfers per chat.
	ScanOnly  bool                 // Preview without downloading.
	Report    bool                 // Write a scan report file per chat.
	Links     bool                 // Also download direct file links found in message text.
	Verbose   bool                 // True for verbose output.
}

func parseArgs() (*Config, error) {
	verbose := flag.Bool("v", false, "verbose output")
	dest := flag.String("dest", "downloads", "destination directory")
	limit := flag.Int("limit", 0, "max history entries per chat (0 = all)")
	kinds := flag.String("kinds", "", "comma-separated media kinds to download (empty = all)")
	width := flag.Int("w", 0, "simultaneous transfers per chat")
	scan := flag.Bool("scan", false, "scan only, do not download")
	rpt := flag.Bool("report", false, "write a scan report file per chat")
	links := flag.Bool("links", false, "also download direct file links in message text")

	flag.Usage = usage
	flag.Parse()

	if len(flag.Args()) < 1 {
		return nil, fmt.Errorf("missing required argument: export_dir")
	}

	cfg := &Config{
		ExportDir: flag.Args()[0],
		ChatIDs:   flag.Args()[1:],
		DestDir:   *dest,
		Limit:     *limit,
		Width:     *width,
		ScanOnly:  *scan,
		Report:    *rpt,
		Links:     *links,
		Verbose:   *verbose,
	}

	if *kinds != "" {
		for _, s := range strings.Split(*kinds, ",") {
			k, err := telegram.ParseKind(strings.TrimSpace(s))
			if err != nil {
				return nil, err
			}
			cfg.Kinds = append(cfg.Kinds, k)
		}
	}

	return cfg, nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [option]... <export_dir> [chat_id]...\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(flag.CommandLine.Output(), "Downloads media referenced by exported chats, resumably.\n")
	flag.PrintDefaults()
}
