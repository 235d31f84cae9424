package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

const dbTimeout = 30 * time.Second

var errEmptyVideoID = errors.New("video_id is empty")

func dbUpsertVideo(v VideoSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	k := backendKind()
	if d, ok := dialectFor(k); ok {
		db, err := openSQL(ctx, d)
		if err != nil {
			return err
		}
		return d.upsertVideo(ctx, db, v)
	}
	if k == backendMongoDB {
		return mongoUpsertVideo(ctx, v)
	}
	return nil
}

func dbInsertComments(videoID string, rows []commentRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	k := backendKind()
	if d, ok := dialectFor(k); ok {
		db, err := openSQL(ctx, d)
		if err != nil {
			return err
		}
		return d.insertComments(ctx, db, videoID, rows)
	}
	if k == backendMongoDB {
		return mongoInsertComments(ctx, videoID, rows)
	}
	return nil
}

// CountComments reports how many comments of videoID the database holds.
// The file backend has no count and returns 0.
func CountComments(videoID string) (int, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return 0, errEmptyVideoID
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	k := backendKind()
	if d, ok := dialectFor(k); ok {
		db, err := openSQL(ctx, d)
		if err != nil {
			return 0, err
		}
		return d.countComments(ctx, db, videoID)
	}
	if k == backendMongoDB {
		return mongoCountComments(ctx, videoID)
	}
	return 0, nil
}
