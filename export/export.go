// Package export implements the telegram.Client capability on top of a
// local chat-export directory, so the engine can run against exported
// archives without a live protocol session. Each chat is a subdirectory
// containing a messages.json file; media bytes are fetched from http(s)
// URLs or copied from paths relative to the chat directory.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"mvdan.cc/xurls/v2"

	"github.com/gajendercode/teledownloadr/telegram"
)

// chatFile is the on-disk schema of one exported chat. Unknown fields are
// ignored.
type chatFile struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []messageFile `json:"messages"`
}

type messageFile struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	Kind string `json:"kind"`
	File string `json:"file"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Client reads chats from an export directory. It implements
// telegram.Client.
type Client struct {
	dir string
	hc  *http.Client

	// HarvestLinks additionally yields media items for direct file URLs
	// and imgur album/page links found in message text. Direct-link sizes
	// are unknown up front.
	HarvestLinks bool

	imgurAPI string // Overridable in tests.

	srcMtx  sync.Mutex        // Protects the "sources" field.
	sources map[string]source // Fetch source per chatID+filename.
}

// source says where one media item's bytes come from: a URL or a path
// relative to the chat's export directory.
type source struct {
	url     string
	relPath string
}

func NewClient(dir string) *Client {
	return &Client{
		dir:      dir,
		hc:       &http.Client{},
		imgurAPI: "https://api.imgur.com",
		sources:  map[string]source{},
	}
}

// Chats lists the chats in the export directory, up to limit (0 = all),
// sorted by id for stable output.
func (c *Client) Chats(ctx context.Context, limit int) ([]telegram.ChatInfo, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read export dir: %w", err)
	}

	var infos []telegram.ChatInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := c.Chat(ctx, e.Name())
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable chat export: %s", e.Name())
			continue
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// Chat resolves one chat's info from its messages.json.
func (c *Client) Chat(ctx context.Context, chatID string) (telegram.ChatInfo, error) {
	cf, err := c.readChat(chatID)
	if err != nil {
		return telegram.ChatInfo{}, err
	}

	title := cf.Title
	if title == "" {
		title = chatID
	}
	return telegram.ChatInfo{ID: chatID, Title: title}, nil
}

// History opens a fresh cursor over the chat's media items. limit=0 means
// unbounded.
func (c *Client) History(ctx context.Context, chatID string, limit int) (telegram.History, error) {
	cf, err := c.readChat(chatID)
	if err != nil {
		return nil, err
	}

	items := c.mediaItems(ctx, chatID, cf)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return &sliceHistory{items: items}, nil
}

func (c *Client) readChat(chatID string) (*chatFile, error) {
	b, err := os.ReadFile(filepath.Join(c.dir, chatID, "messages.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat export %s: %w", chatID, err)
	}

	var cf chatFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse chat export %s: %w", chatID, err)
	}
	return &cf, nil
}

// mediaItems converts a chat file to the engine's media items. Messages
// with an explicit media kind yield one item each; with HarvestLinks set,
// direct file URLs in message text yield document-style items and imgur
// album/page links expand into their images.
func (c *Client) mediaItems(ctx context.Context, chatID string, cf *chatFile) []telegram.MediaItem {
	var items []telegram.MediaItem

	for _, m := range cf.Messages {
		date, err := time.Parse(time.RFC3339, m.Date)
		if err != nil {
			date = time.Time{}
		}

		if m.Kind != "" {
			kind, err := telegram.ParseKind(m.Kind)
			if err != nil {
				log.Warnf("skipping message %d in chat %s: %v", m.ID, chatID, err)
				continue
			}
			item := telegram.MediaItem{
				ChatID:    chatID,
				MessageID: m.ID,
				Kind:      kind,
				Filename:  telegram.DeriveFilename(kind, m.ID, m.File),
				Size:      m.Size,
				Date:      date,
			}
			c.setSource(item, source{url: m.URL, relPath: m.File})
			items = append(items, item)
		}

		if c.HarvestLinks && m.Text != "" {
			for _, u := range xurls.Strict().FindAllString(m.Text, -1) {
				if expanded, ok := c.imgurItems(ctx, chatID, m.ID, date, u); ok {
					items = append(items, expanded...)
					continue
				}

				item, ok := linkItem(chatID, m.ID, date, u)
				if ok {
					c.setSource(item, source{url: u})
					items = append(items, item)
				}
			}
		}
	}

	return items
}

// linkItem builds a media item for a direct file URL found in message
// text. Only URLs with a filename-looking last path segment qualify. The
// size is unknown until fetched.
func linkItem(chatID string, messageID int64, date time.Time, u string) (telegram.MediaItem, bool) {
	pu, err := url.Parse(u)
	if err != nil || pu.Path == "" || pu.Path == "/" {
		return telegram.MediaItem{}, false
	}

	base := path.Base(pu.Path)
	if !strings.Contains(base, ".") {
		return telegram.MediaItem{}, false
	}

	return telegram.MediaItem{
		ChatID:    chatID,
		MessageID: messageID,
		Kind:      telegram.KindDocument,
		Filename:  telegram.DeriveFilename(telegram.KindDocument, messageID, base),
		Size:      0,
		Date:      date,
	}, true
}

// sliceHistory iterates a pre-parsed item slice with the telegram.History
// scanner contract.
type sliceHistory struct {
	items []telegram.MediaItem
	cur   telegram.MediaItem
	err   error
}

func (h *sliceHistory) Next(ctx context.Context) bool {
	if h.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		h.err = err
		return false
	}
	if len(h.items) == 0 {
		return false
	}

	h.cur = h.items[0]
	h.items = h.items[1:]
	return true
}

func (h *sliceHistory) Item() telegram.MediaItem {
	return h.cur
}

func (h *sliceHistory) Err() error {
	return h.err
}
