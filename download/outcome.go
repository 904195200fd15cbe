package download

import "github.com/gajendercode/teledownloadr/telegram"

// OutcomeKind classifies the terminal state of one attempted transfer.
type OutcomeKind int

const (
	// OutcomeDownloaded means the transfer completed and the file is on
	// disk.
	OutcomeDownloaded OutcomeKind = iota

	// OutcomeSkipped means the resume store showed the file was already
	// downloaded; no transfer was attempted.
	OutcomeSkipped

	// OutcomeFailed means every attempt failed; no partial file remains.
	OutcomeFailed

	// OutcomeCancelled means cancellation was observed before the item
	// completed; no partial file remains.
	OutcomeCancelled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TransferOutcome is the result of one attempted transfer. Exactly one is
// produced per dispatched item.
type TransferOutcome struct {
	Kind OutcomeKind
	Item telegram.MediaItem

	// Bytes is the actual byte count written on success. It may differ
	// from Item.Size; the remote's reported size is advisory.
	Bytes int64

	// Err holds the final error for failed outcomes.
	Err error
}

// Summary is the per-chat result the scheduler aggregates. Cancelled items
// count as failed; items never attempted appear in no counter.
type Summary struct {
	// RunID identifies the scheduler run this summary belongs to. Empty
	// for workers run outside a scheduler.
	RunID string

	ChatID     string
	Title      string
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64

	// Err is set when the chat itself was inaccessible (as opposed to
	// individual items failing).
	Err error
}
