package download

import (
	"context"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/fileutil"
	"github.com/gajendercode/teledownloadr/telegram"
)

// transfer runs one media transfer with retries. It is the only place
// bytes move. Policy: up to opts.Retries attempts with a fixed,
// cancellable delay between them; fatal local errors abort immediately;
// any final failure or cancellation removes the partial file so the next
// run starts clean.
func transfer(ctx context.Context, client telegram.Client, opts Options, item telegram.MediaItem) TransferOutcome {
	targetPath := filepath.Join(opts.DestDir, item.Filename)

	// A leftover file of the wrong size is an incomplete prior attempt.
	// Remove it so the fetch starts from scratch instead of appending.
	if size, err := fileutil.FileSize(targetPath); err == nil && size != item.Size {
		log.Debugf("removing stale partial file: %s (have=%d want=%d)", targetPath, size, item.Size)
		if err := fileutil.RemoveIfExists(targetPath); err != nil {
			log.WithError(err).Errorf("failed to remove stale file: %s", targetPath)
			return failedOutcome(item, targetPath, err)
		}
	}

	retries := opts.retries()
	for attempt := 1; attempt <= retries; attempt++ {
		if ctx.Err() != nil {
			return cancelledOutcome(item, targetPath)
		}

		n, err := client.FetchMedia(ctx, item, targetPath)
		if err == nil {
			log.Debugf("downloaded %s (%d bytes)", item.Filename, n)
			return TransferOutcome{Kind: OutcomeDownloaded, Item: item, Bytes: n}
		}

		if ctx.Err() != nil {
			return cancelledOutcome(item, targetPath)
		}

		if telegram.IsFatal(err) {
			log.WithError(err).Errorf("fatal error downloading %s, not retrying", item.Filename)
			return failedOutcome(item, targetPath, err)
		}

		log.WithError(err).Warnf("failed to download %s (attempt %d/%d)", item.Filename, attempt, retries)

		if attempt < retries {
			if !sleepCtx(ctx, opts.retryDelay()) {
				return cancelledOutcome(item, targetPath)
			}
			continue
		}

		return failedOutcome(item, targetPath, err)
	}

	// Unreachable: the loop always returns.
	return failedOutcome(item, targetPath, ctx.Err())
}

// sleepCtx waits for d and returns true, or returns false early if the
// context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func failedOutcome(item telegram.MediaItem, targetPath string, err error) TransferOutcome {
	removePartial(targetPath)
	return TransferOutcome{Kind: OutcomeFailed, Item: item, Err: err}
}

func cancelledOutcome(item telegram.MediaItem, targetPath string) TransferOutcome {
	removePartial(targetPath)
	return TransferOutcome{Kind: OutcomeCancelled, Item: item}
}

func removePartial(targetPath string) {
	if err := fileutil.RemoveIfExists(targetPath); err != nil {
		log.WithError(err).Errorf("failed to remove partial file: %s", targetPath)
	}
}
