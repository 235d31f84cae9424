package youtube

import (
	"strconv"
	"strings"
)

// ReplySeparator joins a parent comment id and a reply suffix.
const ReplySeparator = "."

// Comment is one emitted comment record. The JSON names match the line
// format consumed by cmd/json2text and the stores.
type Comment struct {
	ID                string `json:"cid"`
	Text              string `json:"text"`
	PublishedTimeText string `json:"time"`
	AuthorName        string `json:"author"`
	AuthorChannelID   string `json:"channel"`
	VoteCount         string `json:"votes"`
	AuthorPhotoURL    string `json:"photo"`
	IsHearted         bool   `json:"heart"`
}

// IsReplyID reports whether id names a reply.
func IsReplyID(id string) bool {
	return strings.Contains(id, ReplySeparator)
}

func (c Comment) IsReply() bool { return IsReplyID(c.ID) }

// ParentID returns the top-level id a comment belongs to. For a top-level
// comment that is its own id.
func (c Comment) ParentID() string {
	return parentOf(c.ID)
}

func parentOf(id string) string {
	if i := strings.Index(id, ReplySeparator); i >= 0 {
		return id[:i]
	}
	return id
}

func (c Comment) CommentID() string { return c.ID }

// ParentCommentID is the parent of a reply and empty otherwise.
func (c Comment) ParentCommentID() string {
	if c.IsReply() {
		return c.ParentID()
	}
	return ""
}

// CSVHeader lists the columns written by CSVRecord.
func (Comment) CSVHeader() []string {
	return []string{"cid", "parent_cid", "is_reply", "author", "channel", "time", "votes", "heart", "photo", "text"}
}

func (c Comment) CSVRecord() []string {
	return []string{
		c.ID,
		c.ParentCommentID(),
		strconv.FormatBool(c.IsReply()),
		c.AuthorName,
		c.AuthorChannelID,
		c.PublishedTimeText,
		c.VoteCount,
		strconv.FormatBool(c.IsHearted),
		c.AuthorPhotoURL,
		c.Text,
	}
}

// TextBlock renders the human readable form: author, time and text on
// separate lines, indented by one tab for replies, then a blank line.
func (c Comment) TextBlock() string {
	indent := ""
	if c.IsReply() {
		indent = "\t"
	}
	var b strings.Builder
	b.WriteString(indent + c.AuthorName + "\n")
	b.WriteString(indent + c.PublishedTimeText + "\n")
	for _, line := range strings.Split(c.Text, "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// commentFromRenderer converts a raw commentRenderer node. Missing fields
// become empty values; votes default to "0".
func commentFromRenderer(node any) (Comment, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return Comment{}, false
	}
	id := digString(m, "commentId")
	if id == "" {
		return Comment{}, false
	}

	var text strings.Builder
	for _, run := range digSlice(m, "contentText", "runs") {
		text.WriteString(digString(run, "text"))
	}
	if text.Len() == 0 {
		text.WriteString(digString(m, "contentText", "simpleText"))
	}

	votes := digString(m, "voteCount", "simpleText")
	if votes == "" {
		votes = "0"
	}

	hearted := false
	if v, ok := FirstKey(m, "isHearted"); ok {
		hearted = asBool(v)
	}

	return Comment{
		ID:                id,
		Text:              text.String(),
		PublishedTimeText: digString(m, "publishedTimeText", "runs", 0, "text"),
		AuthorName:        digString(m, "authorText", "simpleText"),
		AuthorChannelID:   digString(m, "authorEndpoint", "browseEndpoint", "browseId"),
		VoteCount:         votes,
		AuthorPhotoURL:    digString(m, "authorThumbnail", "thumbnails", -1, "url"),
		IsHearted:         hearted,
	}, true
}

// commentsInResponse returns the comments of one response in output order.
// The structure walk yields them newest first, so the slice is reversed.
func commentsInResponse(resp map[string]any) []Comment {
	raw := CollectKey(resp, "commentRenderer")
	out := make([]Comment, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		if c, ok := commentFromRenderer(raw[i]); ok {
			out = append(out, c)
		}
	}
	return out
}
