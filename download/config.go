// Package download is the orchestration engine: it turns chat
// configurations into a bounded-concurrency, retryable, resumable stream
// of media transfers, tracking completion durably so re-runs are
// incremental.
package download

import (
	"time"

	"github.com/gajendercode/teledownloadr/telegram"
)

// Defaults for the knobs a caller usually leaves alone.
const (
	DefaultWidth      = 5               // simultaneous transfers per chat
	DefaultRetries    = 3               // attempts per item, total
	DefaultRetryDelay = 5 * time.Second // fixed wait between attempts
	DefaultFlushEvery = 20              // resume flush interval, in successful transfers
)

// ChatConfig describes one chat to download from. Immutable once a worker
// starts.
type ChatConfig struct {
	ChatID string

	// Limit bounds how far back the history scan goes; 0 means unbounded.
	Limit int

	// Kinds filters which media kinds are transferred; empty means all.
	Kinds []telegram.MediaKind

	// Width bounds simultaneous transfers within this chat. Values < 1
	// fall back to DefaultWidth.
	Width int
}

// wantsKind reports whether the config's filter matches the given kind.
func (c *ChatConfig) wantsKind(kind telegram.MediaKind) bool {
	if len(c.Kinds) == 0 {
		return true
	}
	for _, k := range c.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Options carries engine-wide settings shared by every worker.
type Options struct {
	// DestDir is the directory media and resume files are written to.
	DestDir string

	// Retries is the total attempt count per item. Values < 1 fall back
	// to DefaultRetries.
	Retries int

	// RetryDelay is the fixed wait between attempts. Values <= 0 fall
	// back to DefaultRetryDelay.
	RetryDelay time.Duration

	// FlushEvery is how many successful transfers elapse between resume
	// flushes. Values < 1 fall back to DefaultFlushEvery.
	FlushEvery int
}

func (o Options) retries() int {
	if o.Retries < 1 {
		return DefaultRetries
	}
	return o.Retries
}

func (o Options) retryDelay() time.Duration {
	if o.RetryDelay <= 0 {
		return DefaultRetryDelay
	}
	return o.RetryDelay
}

func (o Options) flushEvery() int {
	if o.FlushEvery < 1 {
		return DefaultFlushEvery
	}
	return o.FlushEvery
}
