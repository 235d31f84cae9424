package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// dialect is everything that differs between the database/sql backends.
type dialect struct {
	kind   sqlBackendKind
	driver string
	dsn    func() (string, error)
	// setup runs once on a fresh pool, before the schema.
	setup   func(*sql.DB) error
	maxOpen int
	schema  []string
	// bind renders the n-th (1-based) query parameter.
	bind             func(n int) string
	insertCommentSQL string
	upsertVideoSQL   string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

const (
	commentCols = "comment_id, video_id, parent_id, position, body, saved_at"
	videoCols   = "video_id, url, sort, comment_count, top_level, replies, orphaned, requests, stop_reason, crawled_at"
)

var (
	sqlMu    sync.Mutex
	sqlPools = map[sqlBackendKind]*sql.DB{}
)

// openSQL returns the shared pool of d, creating it and its schema on first
// use. Failures are not cached so a later call can retry.
func openSQL(ctx context.Context, d dialect) (*sql.DB, error) {
	sqlMu.Lock()
	defer sqlMu.Unlock()
	if db := sqlPools[d.kind]; db != nil {
		return db, nil
	}
	dsn, err := d.dsn()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s open: %w", d.kind, err)
	}
	db.SetMaxOpenConns(d.maxOpen)
	db.SetMaxIdleConns(d.maxOpen)
	db.SetConnMaxIdleTime(2 * time.Minute)
	if d.setup != nil {
		if err := d.setup(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s setup: %w", d.kind, err)
		}
	}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s schema: %w", d.kind, err)
		}
	}
	sqlPools[d.kind] = db
	return db, nil
}

// closeSQL drops every cached pool.
func closeSQL() {
	sqlMu.Lock()
	defer sqlMu.Unlock()
	for k, db := range sqlPools {
		_ = db.Close()
		delete(sqlPools, k)
	}
}

// insertComments writes rows in one transaction. Ids already stored are
// skipped, so a re-crawl never duplicates a comment.
func (d dialect) insertComments(ctx context.Context, db *sql.DB, videoID string, rows []commentRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, d.insertCommentSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, r := range rows {
		body, err := json.Marshal(r.Item)
		if err != nil {
			return fmt.Errorf("marshal comment %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, videoID, r.ParentID, r.Position, string(body), now); err != nil {
			return fmt.Errorf("insert comment %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

func (d dialect) upsertVideo(ctx context.Context, db *sql.DB, v VideoSummary) error {
	_, err := db.ExecContext(ctx, d.upsertVideoSQL,
		v.VideoID, v.URL, v.Sort, v.Comments, v.TopLevel, v.Replies, v.Orphaned, v.Requests, v.StopReason, v.CrawledAt)
	return err
}

func (d dialect) countComments(ctx context.Context, db *sql.DB, videoID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE video_id = "+d.bind(1), videoID).Scan(&n)
	return n, err
}
