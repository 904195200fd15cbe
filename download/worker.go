package download

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/gajendercode/teledownloadr/resume"
	"github.com/gajendercode/teledownloadr/telegram"
)

// Worker drives the download of a single chat: it scans the chat's history
// lazily, filters by media kind, consults the resume store, and dispatches
// transfers up to the configured width without ever materializing the full
// history. One worker owns one resume store; outcomes from concurrent
// transfers are applied to the store by the worker's own loop, never by
// transfer goroutines.
type Worker struct {
	client telegram.Client
	cfg    ChatConfig
	opts   Options
	store  *resume.Store

	summary    Summary
	sinceFlush int
}

// NewWorker creates a worker for one chat. The resume store for the chat
// is loaded immediately; a missing or corrupt resume file starts empty.
func NewWorker(client telegram.Client, cfg ChatConfig, opts Options) *Worker {
	return &Worker{
		client: client,
		cfg:    cfg,
		opts:   opts,
		store:  resume.Load(opts.DestDir, cfg.ChatID),
	}
}

// Run scans and downloads until the history is exhausted or ctx is
// cancelled, then drains outstanding transfers, flushes the resume store
// and returns the chat's summary. Per-item failures are absorbed into the
// summary; only chat-level access failures set Summary.Err.
func (w *Worker) Run(ctx context.Context) Summary {
	w.summary = Summary{ChatID: w.cfg.ChatID, Title: w.resolveTitle(ctx)}

	hist, err := w.client.History(ctx, w.cfg.ChatID, w.cfg.Limit)
	if err != nil {
		log.WithError(err).Errorf("failed to open history: chat=%s", w.cfg.ChatID)
		w.summary.Err = err
		return w.summary
	}

	width := int64(w.cfg.Width)
	if width < 1 {
		width = DefaultWidth
	}
	sem := semaphore.NewWeighted(width)

	// A transfer goroutine releases its slot before reporting its outcome,
	// so a full outcomes buffer can never hold up slot acquisition. The
	// buffer just keeps fast transfers from waiting on the scan loop.
	outcomes := make(chan TransferOutcome, width)
	var wg sync.WaitGroup

	for hist.Next(ctx) {
		item := hist.Item()

		if !w.cfg.wantsKind(item.Kind) {
			continue
		}

		if w.store.IsAlreadyDownloaded(item.Filename, item.Size) {
			log.Debugf("skipping %s: already downloaded", item.Filename)
			w.summary.Skipped++
			continue
		}

		// Apply any outcomes that arrived while scanning.
		w.drainPending(outcomes)

		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled while waiting for a slot.
			break
		}

		wg.Add(1)
		go func(item telegram.MediaItem) {
			defer wg.Done()
			out := transfer(ctx, w.client, w.opts, item)
			sem.Release(1)
			outcomes <- out
		}(item)
	}

	if err := hist.Err(); err != nil && ctx.Err() == nil {
		log.WithError(err).Errorf("error scanning chat: %s", w.cfg.ChatID)
		w.summary.Err = err
	}

	// Drain: wait for in-flight transfers to reach a terminal state. They
	// are never force-killed, so the resume store stays consistent with
	// what is actually on disk.
	go func() {
		wg.Wait()
		close(outcomes)
	}()
	for out := range outcomes {
		w.apply(out)
	}

	w.store.Flush()

	log.Infof("chat %s done: %d downloaded, %d skipped, %d failed (%d bytes)",
		w.summary.ChatID, w.summary.Downloaded, w.summary.Skipped, w.summary.Failed, w.summary.Bytes)
	return w.summary
}

// drainPending applies already-completed outcomes without blocking.
func (w *Worker) drainPending(outcomes chan TransferOutcome) {
	for {
		select {
		case out := <-outcomes:
			w.apply(out)
		default:
			return
		}
	}
}

// apply folds one transfer outcome into the summary and the resume store,
// flushing the store every FlushEvery successful transfers so an abrupt
// termination loses at most that much bookkeeping.
func (w *Worker) apply(out TransferOutcome) {
	switch out.Kind {
	case OutcomeDownloaded:
		w.summary.Downloaded++
		w.summary.Bytes += out.Bytes
		w.store.Record(out.Item.Filename, out.Bytes, out.Item.Kind, resume.StatusDownloaded)

		w.sinceFlush++
		if w.sinceFlush >= w.opts.flushEvery() {
			w.store.Flush()
			w.sinceFlush = 0
		}

	case OutcomeFailed, OutcomeCancelled:
		w.summary.Failed++
		w.store.Record(out.Item.Filename, out.Item.Size, out.Item.Kind, resume.StatusFailed)

	case OutcomeSkipped:
		w.summary.Skipped++
	}
}

// resolveTitle asks the client for the chat's display title, falling back
// to the raw id.
func (w *Worker) resolveTitle(ctx context.Context) string {
	info, err := w.client.Chat(ctx, w.cfg.ChatID)
	if err != nil || info.Title == "" {
		return w.cfg.ChatID
	}
	return info.Title
}
