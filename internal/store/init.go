package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"yt-comment-crawler-go/internal/logger"
)

// Init prepares the output directory and, for database backends, opens the
// connection and creates the schema so a bad DSN fails before any video is
// crawled.
func Init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(VideosDir(), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	k := backendKind()
	if d, ok := dialectFor(k); ok {
		db, err := openSQL(ctx, d)
		if err != nil {
			return err
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("%s ping: %w", k, err)
		}
	} else if k == backendMongoDB {
		if _, err := mongoClient(ctx); err != nil {
			return err
		}
	}
	logger.Info("store ready", "backend", string(k), "format", FileExt(saveOption()), "dir", PlatformDir())
	return nil
}
