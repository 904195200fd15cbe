package telegram

import "context"

// ChatInfo identifies a remote chat.
type ChatInfo struct {
	ID    string
	Title string
}

// History lazily iterates a chat's message history, yielding one media item
// at a time. Usage follows the scanner pattern:
//
//	for h.Next(ctx) {
//	    item := h.Item()
//	    ...
//	}
//	if err := h.Err(); err != nil { ... }
//
// A History is valid for a single pass; obtain a fresh one from the client
// to iterate again.
type History interface {
	// Next advances to the next media item. It returns false when the
	// history is exhausted, the context is cancelled, or an error occurs.
	Next(ctx context.Context) bool

	// Item returns the current media item. Only valid after a true Next.
	Item() MediaItem

	// Err returns the error that stopped iteration, or nil on normal
	// exhaustion. Context cancellation is reported as the context's error.
	Err() error
}

// Client is the capability this engine consumes from a chat protocol
// client. Implementations handle authentication, history enumeration and
// raw byte transfer; the engine only schedules and records.
type Client interface {
	// Chats lists up to limit chats visible to the client.
	Chats(ctx context.Context, limit int) ([]ChatInfo, error)

	// Chat resolves a single chat's info. Callers fall back to the raw id
	// when this fails.
	Chat(ctx context.Context, chatID string) (ChatInfo, error)

	// History opens a history cursor for a chat. limit=0 means unbounded.
	History(ctx context.Context, chatID string, limit int) (History, error)

	// FetchMedia transfers one media unit to targetPath, returning the
	// number of bytes written. It may leave a partial file behind on
	// failure; callers are responsible for cleanup. Errors are classified
	// per IsFatal.
	FetchMedia(ctx context.Context, item MediaItem, targetPath string) (int64, error)
}
