package youtube

import (
	"fmt"
)

// BatchKind tells how the comments of one response are buffered.
type BatchKind int

const (
	BatchNone BatchKind = iota
	// BatchTopLevel starts a new group of top-level comments.
	BatchTopLevel
	// BatchReplies belongs to one already buffered top-level comment.
	BatchReplies
)

func (k BatchKind) String() string {
	switch k {
	case BatchTopLevel:
		return "top_level"
	case BatchReplies:
		return "replies"
	default:
		return "none"
	}
}

// ClassifyBatch decides the batch kind of a non-empty response. queueDrained
// is true when the popped token was the last one pending.
func ClassifyBatch(queueDrained, firstIsReply bool) BatchKind {
	if queueDrained && !firstIsReply {
		return BatchTopLevel
	}
	return BatchReplies
}

// OrphanRepliesError reports a reply batch whose top-level comment is not
// buffered.
type OrphanRepliesError struct {
	ParentID string
	Count    int
}

func (e *OrphanRepliesError) Error() string {
	return fmt.Sprintf("%d repl(ies) for unknown top-level comment %q", e.Count, e.ParentID)
}

// ReorderCache buffers the current top-level batch and the replies of each
// of its comments until the batch can be emitted as a whole.
type ReorderCache struct {
	pending []Comment
	replies map[string][]Comment
}

func NewReorderCache() *ReorderCache {
	return &ReorderCache{replies: map[string][]Comment{}}
}

// StartBatch replaces the buffer with a new top-level batch and returns the
// previous contents in output order.
func (c *ReorderCache) StartBatch(top []Comment) []Comment {
	out := c.Flush()
	for _, cm := range top {
		if _, dup := c.replies[cm.ID]; dup {
			continue
		}
		c.pending = append(c.pending, cm)
		c.replies[cm.ID] = nil
	}
	return out
}

// AddReplies appends a reply batch to its parent, derived from the first
// entry's id. The cache is left unchanged when the parent is not buffered.
func (c *ReorderCache) AddReplies(batch []Comment) error {
	if len(batch) == 0 {
		return nil
	}
	parent := batch[0].ParentID()
	list, ok := c.replies[parent]
	if !ok {
		return &OrphanRepliesError{ParentID: parent, Count: len(batch)}
	}
	c.replies[parent] = append(list, batch...)
	return nil
}

// Flush returns every buffered comment, each top-level comment followed by
// its replies, and empties the cache.
func (c *ReorderCache) Flush() []Comment {
	if len(c.pending) == 0 {
		return nil
	}
	n := len(c.pending)
	for _, r := range c.replies {
		n += len(r)
	}
	out := make([]Comment, 0, n)
	for _, top := range c.pending {
		out = append(out, top)
		out = append(out, c.replies[top.ID]...)
	}
	c.Reset()
	return out
}

// Reset drops the buffer without emitting it.
func (c *ReorderCache) Reset() {
	c.pending = nil
	c.replies = map[string][]Comment{}
}

func (c *ReorderCache) Len() int {
	n := len(c.pending)
	for _, r := range c.replies {
		n += len(r)
	}
	return n
}
