package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gajendercode/teledownloadr/telegram"
)

func writeChat(t *testing.T, dir, chatID, messagesJSON string) {
	t.Helper()
	chatDir := filepath.Join(dir, chatID)
	require.NoError(t, os.MkdirAll(chatDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(chatDir, "messages.json"), []byte(messagesJSON), 0644))
}

func collect(t *testing.T, c *Client, chatID string, limit int) []telegram.MediaItem {
	t.Helper()
	hist, err := c.History(context.Background(), chatID, limit)
	require.NoError(t, err)

	var items []telegram.MediaItem
	for hist.Next(context.Background()) {
		items = append(items, hist.Item())
	}
	require.NoError(t, hist.Err())
	return items
}

func TestHistoryYieldsMediaItems(t *testing.T) {
	dir := t.TempDir()
	writeChat(t, dir, "family", `{
		"title": "Family",
		"messages": [
			{"id": 1, "date": "2024-03-01T12:00:00Z", "kind": "photo", "size": 100, "file": "beach.jpg"},
			{"id": 2, "date": "2024-03-02T12:00:00Z", "text": "hello, no media"},
			{"id": 3, "date": "2024-03-03T12:00:00Z", "kind": "video", "size": 5000}
		]
	}`)

	c := NewClient(dir)

	info, err := c.Chat(context.Background(), "family")
	require.NoError(t, err)
	assert.Equal(t, "Family", info.Title)

	items := collect(t, c, "family", 0)
	require.Len(t, items, 2)

	assert.Equal(t, telegram.KindPhoto, items[0].Kind)
	assert.Equal(t, "beach.jpg", items[0].Filename)
	assert.Equal(t, int64(100), items[0].Size)
	assert.Equal(t, int64(1), items[0].MessageID)

	// No remote filename: derived from kind and message id.
	assert.Equal(t, "video_3.mp4", items[1].Filename)
}

func TestHistoryHonorsLimit(t *testing.T) {
	dir := t.TempDir()
	writeChat(t, dir, "c", `{"messages": [
		{"id": 1, "kind": "photo", "size": 1},
		{"id": 2, "kind": "photo", "size": 2},
		{"id": 3, "kind": "photo", "size": 3}
	]}`)

	c := NewClient(dir)
	assert.Len(t, collect(t, c, "c", 2), 2)
	assert.Len(t, collect(t, c, "c", 0), 3)
}

func TestHistoryMissingChat(t *testing.T) {
	c := NewClient(t.TempDir())
	_, err := c.History(context.Background(), "nope", 0)
	assert.Error(t, err)
}

func TestChatsListsExportDir(t *testing.T) {
	dir := t.TempDir()
	writeChat(t, dir, "b", `{"title": "Bravo", "messages": []}`)
	writeChat(t, dir, "a", `{"title": "Alpha", "messages": []}`)

	c := NewClient(dir)
	infos, err := c.Chats(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, "Alpha", infos[0].Title)
	assert.Equal(t, "b", infos[1].ID)
}

func TestHarvestLinks(t *testing.T) {
	dir := t.TempDir()
	writeChat(t, dir, "c", `{"messages": [
		{"id": 1, "text": "grab https://cdn.example.com/files/movie.mp4?sig=abc and https://example.com/about"}
	]}`)

	c := NewClient(dir)
	c.HarvestLinks = true

	items := collect(t, c, "c", 0)
	require.Len(t, items, 1)
	assert.Equal(t, telegram.KindDocument, items[0].Kind)
	assert.Equal(t, "movie.mp4", items[0].Filename)
	assert.Zero(t, items[0].Size)
}

func TestFetchMediaHTTP(t *testing.T) {
	body := []byte("0123456789")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeChat(t, dir, "c", `{"messages": [
		{"id": 1, "kind": "document", "file": "data.bin", "size": 10, "url": "`+srv.URL+`/data.bin"}
	]}`)

	c := NewClient(dir)
	items := collect(t, c, "c", 0)
	require.Len(t, items, 1)

	target := filepath.Join(t.TempDir(), "data.bin")
	n, err := c.FetchMedia(context.Background(), items[0], target)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFetchMediaHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeChat(t, dir, "c", `{"messages": [
		{"id": 1, "kind": "document", "file": "data.bin", "size": 10, "url": "`+srv.URL+`/data.bin"}
	]}`)

	c := NewClient(dir)
	items := collect(t, c, "c", 0)

	_, err := c.FetchMedia(context.Background(), items[0], filepath.Join(t.TempDir(), "data.bin"))
	require.Error(t, err)
	// A bad gateway is transient; the engine should retry it.
	assert.False(t, telegram.IsFatal(err))
}

func TestFetchMediaLocalCopy(t *testing.T) {
	dir := t.TempDir()
	writeChat(t, dir, "c", `{"messages": [
		{"id": 1, "kind": "photo", "file": "pic.jpg", "size": 4}
	]}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c", "pic.jpg"), []byte("abcd"), 0644))

	c := NewClient(dir)
	items := collect(t, c, "c", 0)
	require.Len(t, items, 1)

	target := filepath.Join(t.TempDir(), "pic.jpg")
	n, err := c.FetchMedia(context.Background(), items[0], target)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestFetchMediaUnknownItemIsFatal(t *testing.T) {
	c := NewClient(t.TempDir())

	item := telegram.MediaItem{ChatID: "c", Filename: "mystery.bin"}
	_, err := c.FetchMedia(context.Background(), item, filepath.Join(t.TempDir(), "mystery.bin"))
	require.Error(t, err)
	assert.True(t, telegram.IsFatal(err))
}
