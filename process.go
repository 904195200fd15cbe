package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/download"
	"github.com/gajendercode/teledownloadr/report"
	"github.com/gajendercode/teledownloadr/telegram"
)

// run resolves which chats to process, then either previews them or hands
// them to the scheduler for a full download run.
func run(ctx context.Context, cfg *Config, client telegram.Client) error {
	chatIDs := cfg.ChatIDs
	if len(chatIDs) == 0 {
		infos, err := client.Chats(ctx, 0)
		if err != nil {
			return err
		}
		for _, info := range infos {
			chatIDs = append(chatIDs, info.ID)
		}
	}

	if len(chatIDs) == 0 {
		return fmt.Errorf("no chats to process")
	}

	var configs []download.ChatConfig
	for _, id := range chatIDs {
		configs = append(configs, download.ChatConfig{
			ChatID: id,
			Limit:  cfg.Limit,
			Kinds:  cfg.Kinds,
			Width:  cfg.Width,
		})
	}

	opts := download.Options{DestDir: cfg.DestDir}

	if cfg.ScanOnly {
		return scanChats(ctx, cfg, client, configs, opts)
	}

	return downloadChats(ctx, client, configs, opts)
}

// scanChats previews each chat sequentially and prints what a download run
// would do. With -report, each summary is also saved to a text file.
func scanChats(ctx context.Context, cfg *Config, client telegram.Client, configs []download.ChatConfig, opts download.Options) error {
	for _, c := range configs {
		if ctx.Err() != nil {
			break
		}

		sum := download.Scan(ctx, client, c, opts)
		sizeMB := float64(sum.TotalBytes) / (1024 * 1024)
		fmt.Printf("%s (%s): %d files, %.2f MB (%d existing, %d new)\n",
			sum.Title, sum.ChatID, sum.Total, sizeMB, sum.Existing, sum.New)

		if cfg.Report {
			path, err := report.WriteScan(cfg.DestDir, sum)
			if err != nil {
				log.WithError(err).Errorf("failed to write scan report: chat=%s", sum.ChatID)
				continue
			}
			fmt.Printf("saved report to %s\n", path)
		}
	}

	return nil
}

// downloadChats runs the scheduler over every chat and prints one summary
// line per chat, regardless of partial failures.
func downloadChats(ctx context.Context, client telegram.Client, configs []download.ChatConfig, opts download.Options) error {
	sched := download.NewScheduler(client, opts)
	summaries := sched.Run(ctx, configs)

	for _, sum := range summaries {
		sizeMB := float64(sum.Bytes) / (1024 * 1024)
		line := fmt.Sprintf("%s (%s): %d downloaded, %d skipped, %d failed, %.2f MB",
			sum.Title, sum.ChatID, sum.Downloaded, sum.Skipped, sum.Failed, sizeMB)
		if sum.Err != nil {
			line += fmt.Sprintf(" (error: %v)", sum.Err)
		}
		fmt.Println(line)
	}

	return nil
}
