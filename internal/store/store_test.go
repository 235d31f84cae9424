package store

import (
	"strings"
)

type testComment struct {
	ID     string `json:"cid"`
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (c testComment) CommentID() string { return c.ID }

func (c testComment) ParentCommentID() string {
	if i := strings.Index(c.ID, "."); i >= 0 {
		return c.ID[:i]
	}
	return ""
}

func (c testComment) CSVHeader() []string { return []string{"cid", "author", "text"} }

func (c testComment) CSVRecord() []string { return []string{c.ID, c.Author, c.Text} }

func (c testComment) TextBlock() string { return c.Author + "\n" + c.Text + "\n\n" }

func records(cs ...testComment) []Record {
	out := make([]Record, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
