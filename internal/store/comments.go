package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// SaveComments persists items in order to the database backend, if any, and
// to the comments file of videoID in the configured format. Comments already
// saved for the same file are skipped. It returns how many were new in the
// file.
func SaveComments(videoID string, items []Record) (int, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return 0, errEmptyVideoID
	}
	if err := dbInsertComments(videoID, toRows(items)); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	path := CommentsPath(videoID)
	switch saveOption() {
	case "json":
		return AppendUniqueJSONArray(path, items)
	case "csv":
		return AppendUniqueCSV(path, items)
	case "xlsx":
		return AppendUniqueXLSX(path, items)
	case "text":
		return AppendUniqueText(path, items)
	default:
		return AppendUniqueJSONL(path, items)
	}
}

// SaveVideo records the crawl summary of one video.
func SaveVideo(v VideoSummary) error {
	if strings.TrimSpace(v.VideoID) == "" {
		return errEmptyVideoID
	}
	if err := dbUpsertVideo(v); err != nil {
		return err
	}
	dir := VideoDir(v.VideoID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "video.json"), append(b, '\n'), 0644)
}
