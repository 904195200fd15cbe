package download

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gajendercode/teledownloadr/telegram"
)

// Scheduler fans one worker out per configured chat and runs them
// concurrently. One chat failing or being empty never stops the others;
// only cancellation of the passed-in context winds the whole run down, and
// even then every in-flight transfer reaches a terminal state first.
type Scheduler struct {
	client telegram.Client
	opts   Options
}

func NewScheduler(client telegram.Client, opts Options) *Scheduler {
	return &Scheduler{
		client: client,
		opts:   opts,
	}
}

// Run downloads from every configured chat concurrently and returns one
// summary per config, in config order, once every worker has finished.
func (s *Scheduler) Run(ctx context.Context, configs []ChatConfig) []Summary {
	runID := uuid.NewString()
	log.Infof("starting run %s: %d chats", runID, len(configs))

	summaries := make([]Summary, len(configs))

	g := &errgroup.Group{}
	for i, cfg := range configs {
		i, cfg := i, cfg
		g.Go(func() error {
			w := NewWorker(s.client, cfg, s.opts)
			// Worker failures land in the summary, never in the group:
			// sibling chats keep running.
			sum := w.Run(ctx)
			sum.RunID = runID
			summaries[i] = sum
			return nil
		})
	}
	g.Wait()

	log.Infof("run %s finished", runID)
	return summaries
}
