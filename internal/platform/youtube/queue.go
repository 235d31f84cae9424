package youtube

// Target classifies what a continuation token leads to.
type Target string

const (
	TargetCommentsRoot Target = "comments-root"
	TargetReplyThread  Target = "reply-thread"
	TargetSortSelect   Target = "sort-select"
)

// Token is an opaque server endpoint. Only the api url and the continuation
// string are read; the rest of the payload is forwarded untouched.
type Token struct {
	Target   Target
	Endpoint map[string]any
}

func (t Token) APIURL() string {
	return digString(t.Endpoint, "commandMetadata", "webCommandMetadata", "apiUrl")
}

func (t Token) Continuation() string {
	return digString(t.Endpoint, "continuationCommand", "token")
}

// ContinuationQueue is the pending token stack of one traversal. Pop takes
// the most recently pushed token.
//
//	PushNext     puts a token on top; it is popped next.
//	PushDeferred puts tokens under everything already queued, keeping their
//	             order, so they are popped after all known work.
type ContinuationQueue struct {
	items []Token // top is the last element
}

func NewContinuationQueue(tokens ...Token) *ContinuationQueue {
	q := &ContinuationQueue{}
	q.Replace(tokens...)
	return q
}

func (q *ContinuationQueue) Len() int { return len(q.items) }

func (q *ContinuationQueue) Pop() (Token, bool) {
	n := len(q.items)
	if n == 0 {
		return Token{}, false
	}
	t := q.items[n-1]
	q.items[n-1] = Token{}
	q.items = q.items[:n-1]
	return t, true
}

func (q *ContinuationQueue) PushNext(t Token) {
	q.items = append(q.items, t)
}

// PushDeferred inserts tokens at the bottom. Among themselves they are popped
// in reverse of the given order once everything above them is gone.
func (q *ContinuationQueue) PushDeferred(tokens ...Token) {
	if len(tokens) == 0 {
		return
	}
	items := make([]Token, 0, len(tokens)+len(q.items))
	items = append(items, tokens...)
	q.items = append(items, q.items...)
}

// Replace drops every pending token and queues tokens, the last one on top.
func (q *ContinuationQueue) Replace(tokens ...Token) {
	q.items = append(q.items[:0:0], tokens...)
}
