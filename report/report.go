// Package report writes scan results to human-readable text files.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flytam/filenamify"

	"github.com/gajendercode/teledownloadr/download"
)

// Filename returns the report filename for a chat, with the title
// sanitized for the local filesystem.
func Filename(title, chatID string) string {
	safe, err := filenamify.Filenamify(title, filenamify.Options{Replacement: "_"})
	if err != nil || strings.TrimSpace(safe) == "" {
		safe = "Unknown_Chat"
	}
	safe = strings.ReplaceAll(strings.TrimSpace(safe), " ", "_")
	return fmt.Sprintf("%s_%s.txt", safe, chatID)
}

// WriteScan saves a scan summary to a text file in dir and returns the
// file's path. Failing to save a report never fails a run; callers log
// the error and move on.
func WriteScan(dir string, sum download.ScanSummary) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan Results for %s (%s)\n", sum.Title, sum.ChatID)
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Total Files: %d\n", sum.Total)
	sizeMB := float64(sum.TotalBytes) / (1024 * 1024)
	sizeGB := float64(sum.TotalBytes) / (1024 * 1024 * 1024)
	fmt.Fprintf(&b, "Total Size: %.2f MB (%.4f GB)\n", sizeMB, sizeGB)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, si := range sum.Items {
		status := "New"
		if si.Exists {
			status = "Existing"
		}
		itemMB := float64(si.Item.Size) / (1024 * 1024)
		date := "Unknown"
		if !si.Item.Date.IsZero() {
			date = si.Item.Date.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "[%s] [%s] [%s] %s (%.2f MB)\n", date, si.Item.Kind, status, si.Item.Filename, itemMB)
	}

	path := filepath.Join(dir, Filename(sum.Title, sum.ChatID))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to save scan report: %w", err)
	}

	return path, nil
}
