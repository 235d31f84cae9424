package store

import (
	"path/filepath"
	"strings"

	"yt-comment-crawler-go/internal/config"
)

func platformName() string {
	p := strings.TrimSpace(config.AppConfig.Platform)
	if p == "" {
		p = "youtube"
	}
	return p
}

func saveOption() string {
	return strings.ToLower(strings.TrimSpace(config.AppConfig.SaveDataOption))
}

func PlatformDir() string {
	dataDir := strings.TrimSpace(config.AppConfig.DataDir)
	if dataDir == "" {
		dataDir = "data"
	}
	return filepath.Join(dataDir, platformName())
}

func VideosDir() string {
	return filepath.Join(PlatformDir(), "videos")
}

func VideoDir(videoID string) string {
	return filepath.Join(VideosDir(), videoID)
}

func VideoMediaDir(videoID string) string {
	return filepath.Join(VideoDir(videoID), "media")
}

// FileExt returns the data file extension for a SAVE_DATA_OPTION value.
func FileExt(option string) string {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case "json":
		return "json"
	case "csv":
		return "csv"
	case "xlsx":
		return "xlsx"
	case "text":
		return "txt"
	default:
		return "jsonl"
	}
}

// CommentsPath returns where the comments of videoID are written. OUTPUT_FILE
// collects every video in one file.
func CommentsPath(videoID string) string {
	if out := strings.TrimSpace(config.AppConfig.OutputFile); out != "" {
		return out
	}
	return filepath.Join(VideoDir(videoID), "comments."+FileExt(saveOption()))
}
