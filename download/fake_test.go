package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gajendercode/teledownloadr/telegram"
)

// fakeClient is an in-memory telegram.Client for engine tests. Fetches
// write item.Size filler bytes to the target path unless a fetchFn hook is
// installed.
type fakeClient struct {
	mu       sync.Mutex
	titles   map[string]string
	history  map[string][]telegram.MediaItem
	histErr  map[string]error
	fetchFn  func(ctx context.Context, item telegram.MediaItem, targetPath string) (int64, error)
	fetches  int
	inFlight int
	maxSeen  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		titles:  map[string]string{},
		history: map[string][]telegram.MediaItem{},
		histErr: map[string]error{},
	}
}

func (c *fakeClient) addChat(id, title string, items ...telegram.MediaItem) {
	c.titles[id] = title
	c.history[id] = items
}

func (c *fakeClient) Chats(ctx context.Context, limit int) ([]telegram.ChatInfo, error) {
	var infos []telegram.ChatInfo
	for id, title := range c.titles {
		infos = append(infos, telegram.ChatInfo{ID: id, Title: title})
	}
	return infos, nil
}

func (c *fakeClient) Chat(ctx context.Context, chatID string) (telegram.ChatInfo, error) {
	title, ok := c.titles[chatID]
	if !ok {
		return telegram.ChatInfo{}, fmt.Errorf("no such chat: %s", chatID)
	}
	return telegram.ChatInfo{ID: chatID, Title: title}, nil
}

func (c *fakeClient) History(ctx context.Context, chatID string, limit int) (telegram.History, error) {
	if err := c.histErr[chatID]; err != nil {
		return nil, err
	}

	items := c.history[chatID]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return &fakeHistory{items: items}, nil
}

func (c *fakeClient) FetchMedia(ctx context.Context, item telegram.MediaItem, targetPath string) (int64, error) {
	c.mu.Lock()
	c.fetches++
	c.inFlight++
	if c.inFlight > c.maxSeen {
		c.maxSeen = c.inFlight
	}
	fn := c.fetchFn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	if fn != nil {
		return fn(ctx, item, targetPath)
	}
	return writeFiller(targetPath, item.Size)
}

func (c *fakeClient) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches
}

func (c *fakeClient) maxInFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSeen
}

// writeFiller writes size 'x' bytes to path, the default fetch behavior.
func writeFiller(path string, size int64) (int64, error) {
	b := bytes.Repeat([]byte{'x'}, int(size))
	if err := os.WriteFile(path, b, 0644); err != nil {
		return 0, err
	}
	return size, nil
}

type fakeHistory struct {
	items []telegram.MediaItem
	cur   telegram.MediaItem
	err   error
}

func (h *fakeHistory) Next(ctx context.Context) bool {
	if h.err != nil || len(h.items) == 0 {
		return false
	}
	if err := ctx.Err(); err != nil {
		h.err = err
		return false
	}

	h.cur = h.items[0]
	h.items = h.items[1:]
	return true
}

func (h *fakeHistory) Item() telegram.MediaItem { return h.cur }
func (h *fakeHistory) Err() error               { return h.err }

// mediaItem builds a test item with a derived filename.
func mediaItem(chatID string, msgID int64, kind telegram.MediaKind, size int64) telegram.MediaItem {
	return telegram.MediaItem{
		ChatID:    chatID,
		MessageID: msgID,
		Kind:      kind,
		Filename:  telegram.DeriveFilename(kind, msgID, ""),
		Size:      size,
		Date:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
