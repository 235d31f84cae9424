package store

// Record is one comment as the stores persist it.
type Record interface {
	CommentID() string
	// ParentCommentID is empty for a top-level comment.
	ParentCommentID() string
	CSVHeader() []string
	CSVRecord() []string
	TextBlock() string
}

// VideoSummary is the per-video row written after a crawl.
type VideoSummary struct {
	VideoID    string `json:"video_id"`
	URL        string `json:"url"`
	Sort       string `json:"sort"`
	Comments   int    `json:"comments"`
	TopLevel   int    `json:"top_level"`
	Replies    int    `json:"replies"`
	Orphaned   int    `json:"orphaned"`
	Requests   int    `json:"requests"`
	StopReason string `json:"stop_reason,omitempty"`
	CrawledAt  int64  `json:"crawled_at"`
}

type commentRow struct {
	ID       string
	ParentID string
	Position int
	Item     Record
}

func toRows(items []Record) []commentRow {
	rows := make([]commentRow, 0, len(items))
	for i, it := range items {
		if it == nil || it.CommentID() == "" {
			continue
		}
		rows = append(rows, commentRow{ID: it.CommentID(), ParentID: it.ParentCommentID(), Position: i, Item: it})
	}
	return rows
}
