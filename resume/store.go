// Package resume tracks per-chat download history so that repeated runs
// skip work that already completed. Each chat has one JSON backing file in
// the download directory; the file is loaded once at worker start, mutated
// in memory, and flushed periodically.
package resume

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/fileutil"
	"github.com/gajendercode/teledownloadr/telegram"
)

// Status values recorded for a file.
const (
	StatusDownloaded = "downloaded"
	StatusFailed     = "failed"
)

// Record is one resume entry, keyed by filename within a chat's store.
// Unknown JSON fields are ignored on load so the schema can grow.
type Record struct {
	Size      int64              `json:"size"`
	Kind      telegram.MediaKind `json:"type"`
	Status    string             `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
	ChatID    string             `json:"chat_id"`
}

// Stats is a derived view of a store's contents.
type Stats struct {
	Downloaded int
	Failed     int
	TotalBytes int64
}

// Store is the durable download history for a single chat. It is owned by
// exactly one worker at a time; no internal locking.
type Store struct {
	chatID  string
	path    string
	records map[string]Record
	baseDir string
	corrupt bool
}

// Load reads the resume file for chatID from dir. A missing file yields an
// empty store. A corrupt or unreadable file also yields an empty store and
// sets the corruption flag; it is never an error, the worst case being
// redundant re-download.
func Load(dir, chatID string) *Store {
	s := &Store{
		chatID:  chatID,
		path:    filepath.Join(dir, chatID+"_history.json"),
		records: map[string]Record{},
		baseDir: dir,
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("failed to read resume file, starting fresh: %s", s.path)
			s.corrupt = true
		}
		return s
	}

	if err := json.Unmarshal(b, &s.records); err != nil {
		log.WithError(err).Warnf("corrupt resume file, starting fresh: %s", s.path)
		s.records = map[string]Record{}
		s.corrupt = true
	}

	return s
}

// ChatID returns the chat this store belongs to.
func (s *Store) ChatID() string {
	return s.chatID
}

// Corrupt reports whether the backing file existed but could not be parsed
// at load time.
func (s *Store) Corrupt() bool {
	return s.corrupt
}

// IsAlreadyDownloaded returns true iff filename has a downloaded record
// with the expected size AND the file actually exists on disk with exactly
// that size. Any mismatch forces a re-transfer, so manually deleted or
// truncated files are picked up again.
func (s *Store) IsAlreadyDownloaded(filename string, expectedSize int64) bool {
	rec, ok := s.records[filename]
	if !ok {
		return false
	}
	if rec.Status != StatusDownloaded {
		return false
	}

	// When the remote did not report a size (expectedSize <= 0, e.g. link
	// media), the recorded actual size stands in for it.
	if expectedSize > 0 && rec.Size != expectedSize {
		return false
	}

	diskSize, err := fileutil.FileSize(filepath.Join(s.baseDir, filename))
	if err != nil {
		return false
	}
	return diskSize == rec.Size
}

// Record upserts an entry with the current timestamp. It does not flush.
func (s *Store) Record(filename string, size int64, kind telegram.MediaKind, status string) {
	s.records[filename] = Record{
		Size:      size,
		Kind:      kind,
		Status:    status,
		Timestamp: time.Now(),
		ChatID:    s.chatID,
	}
}

// Flush writes the whole mapping to the backing file. It is best-effort:
// a failure is logged and reported as false, never raised, because a
// bookkeeping failure must not stop downloading.
func (s *Store) Flush() bool {
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		log.WithError(err).Errorf("failed to encode resume data: chat=%s", s.chatID)
		return false
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		log.WithError(err).Errorf("failed to create download dir: %s", s.baseDir)
		return false
	}

	if err := os.WriteFile(s.path, b, 0644); err != nil {
		log.WithError(err).Errorf("failed to write resume file: %s", s.path)
		return false
	}

	return true
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Stats summarizes the store's contents. TotalBytes counts downloaded
// entries only.
func (s *Store) Stats() Stats {
	var st Stats
	for _, rec := range s.records {
		switch rec.Status {
		case StatusDownloaded:
			st.Downloaded++
			st.TotalBytes += rec.Size
		case StatusFailed:
			st.Failed++
		}
	}
	return st
}
