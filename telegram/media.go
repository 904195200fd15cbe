package telegram

import (
	"fmt"
	"time"

	"github.com/flytam/filenamify"
)

// MediaKind identifies the type of an attachable media unit.
type MediaKind string

const (
	KindPhoto     MediaKind = "photo"
	KindVideo     MediaKind = "video"
	KindDocument  MediaKind = "document"
	KindAudio     MediaKind = "audio"
	KindAnimation MediaKind = "animation"
	KindVoice     MediaKind = "voice"
	KindVideoNote MediaKind = "video_note"
	KindSticker   MediaKind = "sticker"
)

// KnownKinds lists every media kind the engine understands, in display
// order.
var KnownKinds = []MediaKind{
	KindPhoto, KindVideo, KindDocument, KindAudio,
	KindAnimation, KindVoice, KindVideoNote, KindSticker,
}

// ParseKind converts a user-supplied string to a MediaKind. It returns an
// error for unrecognized kinds.
func ParseKind(s string) (MediaKind, error) {
	for _, k := range KnownKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown media kind: %q", s)
}

// MediaItem is one transferable unit discovered while scanning a chat's
// history. Derived read-only from the history stream; never mutated.
type MediaItem struct {
	ChatID    string
	MessageID int64
	Kind      MediaKind
	Filename  string // candidate local filename, relative to the dest dir
	Size      int64  // expected byte size reported by the remote; advisory
	Date      time.Time
}

// fallbackExts maps each media kind to the extension used when the remote
// provides no filename.
var fallbackExts = map[MediaKind]string{
	KindPhoto:     ".jpg",
	KindVideo:     ".mp4",
	KindAudio:     ".mp3",
	KindAnimation: ".mp4",
	KindVoice:     ".ogg",
	KindVideoNote: ".mp4",
	KindSticker:   ".webp",
}

// DeriveFilename returns the local filename for a media unit. If the remote
// supplied a name it is sanitized for the local filesystem; otherwise a
// name is generated from the kind and message id (e.g. "photo_42.jpg").
func DeriveFilename(kind MediaKind, messageID int64, remoteName string) string {
	if remoteName != "" {
		safe, err := filenamify.Filenamify(remoteName, filenamify.Options{})
		if err == nil && safe != "" {
			return safe
		}
	}
	return fmt.Sprintf("%s_%d%s", kind, messageID, fallbackExts[kind])
}
