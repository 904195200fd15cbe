package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/koffeinsource/go-imgur"
	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/telegram"
)

const imgurClientID = "ab1802d70cb1deb"

var imgurHeader = http.Header{
	"Authorization": []string{"Client-ID " + imgurClientID},
	"referer":       []string{"https://imgur.com/"},
	"origin":        []string{"https://imgur.com"},
	"content-type":  []string{"application/json"},
	"user-agent":    []string{"curl/7.84.0"},
}

type albumInfoDataWrapper struct {
	AI      *imgur.AlbumInfo `json:"data"`
	Success bool             `json:"success"`
	Status  int              `json:"status"`
}

// imgurItems expands an imgur link found in message text into media items.
// Albums yield one item per constituent image; bare page links resolve to
// the direct image URL. Non-imgur links return ok=false.
func (c *Client) imgurItems(ctx context.Context, chatID string, messageID int64, date time.Time, u string) ([]telegram.MediaItem, bool) {
	// Album.
	if strings.HasPrefix(u, "https://imgur.com/a/") {
		items, err := c.imgurAlbumItems(ctx, chatID, messageID, date, u)
		if err != nil {
			// Harvesting is best-effort; a dead album must not fail the
			// scan.
			log.WithError(err).Warnf("failed to resolve imgur album: %s", u)
			return nil, true
		}
		return items, true
	}

	// Alternate image url format:
	//     https://imgur.com/<image_id>
	imageID := strings.TrimPrefix(u, "https://imgur.com/")
	if imageID != u && len(imageID) == 7 && !strings.Contains(imageID, "/") {
		link := "https://i.imgur.com/" + imageID + ".jpeg"
		item := telegram.MediaItem{
			ChatID:    chatID,
			MessageID: messageID,
			Kind:      telegram.KindPhoto,
			Filename:  telegram.DeriveFilename(telegram.KindPhoto, messageID, imageID+".jpeg"),
			Size:      0,
			Date:      date,
		}
		c.setSource(item, source{url: link})
		return []telegram.MediaItem{item}, true
	}

	return nil, false
}

// imgurAlbumItems reads the imgur album at the specified url and returns
// one media item per image in it.
func (c *Client) imgurAlbumItems(ctx context.Context, chatID string, messageID int64, date time.Time, u string) ([]telegram.MediaItem, error) {
	log.Debugf("scanning imgur album: %s", u)

	trimmed := strings.TrimPrefix(u, "https://imgur.com/a/")
	if len(trimmed) < 7 {
		return nil, fmt.Errorf("imgur album hash length too short: have=%d want=7 hash=%s", len(trimmed), trimmed)
	}
	if len(trimmed) > 7 {
		hash := trimmed[len(trimmed)-7:]
		log.Debugf("removing imgur album prefix: %s --> %s", trimmed, hash)
		trimmed = hash
	}

	b, err := c.imgurGet(ctx, c.imgurAPI+"/3/album/"+trimmed)
	if err != nil {
		return nil, err
	}

	aidw := &albumInfoDataWrapper{}
	err = json.Unmarshal(b, aidw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode album info: %w", err)
	}

	if !aidw.Success {
		return nil, fmt.Errorf("album info response has success=false")
	}

	var items []telegram.MediaItem
	for _, img := range aidw.AI.Images {
		log.Debugf("detected imgur album image link: %s", img.Link)

		item := telegram.MediaItem{
			ChatID:    chatID,
			MessageID: messageID,
			Kind:      telegram.KindPhoto,
			Filename:  telegram.DeriveFilename(telegram.KindPhoto, messageID, path.Base(img.Link)),
			Size:      int64(img.Size),
			Date:      date,
		}
		c.setSource(item, source{url: img.Link})
		items = append(items, item)
	}

	return items, nil
}

// imgurGet performs an authenticated GET against the imgur API and returns
// the full response body.
func (c *Client) imgurGet(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range imgurHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rsp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, fmt.Errorf("error status: %s", rsp.Status)
	}

	return io.ReadAll(NewContextReader(ctx, rsp.Body))
}
