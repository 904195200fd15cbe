package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/gajendercode/teledownloadr/telegram"
)

// FetchMedia transfers one media item's bytes to targetPath, returning the
// byte count written. HTTP failures are transient (the engine retries);
// local filesystem and missing-source failures are fatal.
func (c *Client) FetchMedia(ctx context.Context, item telegram.MediaItem, targetPath string) (int64, error) {
	src, ok := c.getSource(item)
	if !ok {
		// History() was never called for this chat, or the item is not in
		// the export. Retrying cannot help.
		return 0, telegram.Fatal(fmt.Errorf("no source for %s in chat %s", item.Filename, item.ChatID))
	}

	if src.url != "" && (strings.HasPrefix(src.url, "http://") || strings.HasPrefix(src.url, "https://")) {
		return c.fetchHTTP(ctx, src.url, targetPath)
	}

	rel := src.relPath
	if rel == "" {
		rel = src.url
	}
	if rel == "" {
		return 0, telegram.Fatal(fmt.Errorf("no media bytes for %s in chat %s", item.Filename, item.ChatID))
	}
	return c.copyLocal(filepath.Join(c.dir, item.ChatID, rel), targetPath)
}

// fetchHTTP streams the body of a GET to targetPath. It may leave a
// partial file behind on failure; the engine's retry layer cleans up.
func (c *Client) fetchHTTP(ctx context.Context, u string, targetPath string) (int64, error) {
	log.Debugf("get: %s", u)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return 0, telegram.Fatal(err)
	}

	// Imgur rejects anonymous fetches.
	if strings.HasPrefix(u, "https://i.imgur.com/") || strings.HasPrefix(u, "https://imgur.com/") {
		for k, vs := range imgurHeader {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	rsp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer rsp.Body.Close()

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return 0, fmt.Errorf("error status: %s", rsp.Status)
	}

	f, err := os.Create(targetPath)
	if err != nil {
		return 0, telegram.Fatal(err)
	}
	defer f.Close()

	return io.Copy(f, NewContextReader(ctx, rsp.Body))
}

// copyLocal copies an export-relative media file to targetPath.
func (c *Client) copyLocal(srcPath, targetPath string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, telegram.Fatal(err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return 0, telegram.Fatal(err)
	}
	defer dst.Close()

	return io.Copy(dst, src)
}

func (c *Client) setSource(item telegram.MediaItem, src source) {
	c.srcMtx.Lock()
	defer c.srcMtx.Unlock()
	c.sources[item.ChatID+"/"+item.Filename] = src
}

func (c *Client) getSource(item telegram.MediaItem) (source, bool) {
	c.srcMtx.Lock()
	defer c.srcMtx.Unlock()
	src, ok := c.sources[item.ChatID+"/"+item.Filename]
	return src, ok
}
