package download

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/resume"
	"github.com/gajendercode/teledownloadr/telegram"
)

// ScanSummary is the read-only result of previewing a chat: what a
// download run would transfer, split into already-present and new items.
// It is never persisted.
type ScanSummary struct {
	ChatID     string
	Title      string
	Total      int
	TotalBytes int64
	Existing   int
	New        int
	Items      []ScanItem
}

// ScanItem is one matching media unit found during a preview.
type ScanItem struct {
	Item   telegram.MediaItem
	Exists bool
}

// Scan previews a chat without transferring anything or mutating the
// resume store. An empty or inaccessible chat yields a zero-valued summary
// rather than an error; the caller decides whether to proceed.
func Scan(ctx context.Context, client telegram.Client, cfg ChatConfig, opts Options) ScanSummary {
	sum := ScanSummary{ChatID: cfg.ChatID, Title: cfg.ChatID}

	if info, err := client.Chat(ctx, cfg.ChatID); err == nil && info.Title != "" {
		sum.Title = info.Title
	}

	store := resume.Load(opts.DestDir, cfg.ChatID)

	hist, err := client.History(ctx, cfg.ChatID, cfg.Limit)
	if err != nil {
		log.WithError(err).Errorf("failed to open history for scan: chat=%s", cfg.ChatID)
		return sum
	}

	for hist.Next(ctx) {
		item := hist.Item()
		if !cfg.wantsKind(item.Kind) {
			continue
		}

		exists := store.IsAlreadyDownloaded(item.Filename, item.Size)
		sum.Items = append(sum.Items, ScanItem{Item: item, Exists: exists})
		sum.Total++
		sum.TotalBytes += item.Size
		if exists {
			sum.Existing++
		} else {
			sum.New++
		}
	}

	if err := hist.Err(); err != nil && ctx.Err() == nil {
		log.WithError(err).Errorf("error scanning chat: %s", cfg.ChatID)
	}

	return sum
}
