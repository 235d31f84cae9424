package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/store"
)

func TestDataFilesPreviewDownload(t *testing.T) {
	dataDir := t.TempDir()
	config.AppConfig = config.Config{Platform: "youtube", DataDir: dataDir}

	v1 := filepath.Join(dataDir, "youtube", "videos", "vid00000001")
	v2 := filepath.Join(dataDir, "youtube", "videos", "vid00000002")
	for _, d := range []string{v1, v2} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	comments := "{\"cid\":\"c1\"}\n{\"cid\":\"c1.r\"}\n"
	if err := os.WriteFile(filepath.Join(v1, "comments.jsonl"), []byte(comments), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	csvContent := "\uFEFFcid,text\n1,a\n2,b\n"
	if err := os.WriteFile(filepath.Join(v2, "comments.csv"), []byte(csvContent), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	text := "amy\nnow\nhi\n\n\tbob\n\tnow\n\tyo\n\n"
	if err := os.WriteFile(filepath.Join(v2, "comments.txt"), []byte(text), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	summary, _ := json.Marshal(store.VideoSummary{VideoID: "vid00000001", Comments: 2, StopReason: "queue_empty"})
	if err := os.WriteFile(filepath.Join(v1, "video.json"), summary, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	srv := NewServer(NewTaskManagerWithRunner(noopRunner))
	get := func(path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, r)
		return w
	}

	{
		w := get("/data/files?video_id=vid00000002")
		if w.Code != http.StatusOK {
			t.Fatalf("list code=%d body=%s", w.Code, w.Body.String())
		}
		var resp struct {
			Files []dataFileInfo `json:"files"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(resp.Files) != 2 {
			t.Fatalf("files = %+v", resp.Files)
		}
		for _, f := range resp.Files {
			if f.VideoID != "vid00000002" || f.RecordCount == nil || *f.RecordCount != 2 {
				t.Fatalf("file = %+v", f)
			}
		}
	}

	{
		w := get("/data/files/youtube/videos/vid00000001/comments.jsonl?limit=1")
		var resp struct {
			Data  []map[string]any `json:"data"`
			Total int              `json:"total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
		}
		if resp.Total != 2 || len(resp.Data) != 1 || resp.Data[0]["cid"] != "c1" {
			t.Fatalf("preview = %+v", resp)
		}
	}

	{
		w := get("/data/files/youtube/videos/vid00000002/comments.csv")
		var resp struct {
			Data    []map[string]string `json:"data"`
			Columns []string            `json:"columns"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(resp.Columns) != 2 || resp.Columns[0] != "cid" || resp.Data[1]["text"] != "b" {
			t.Fatalf("csv preview = %+v", resp)
		}
	}

	{
		w := get("/data/files/youtube/videos/vid00000002/comments.txt")
		var resp struct {
			Data []string `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(resp.Data) != 2 || !strings.HasPrefix(resp.Data[1], "\tbob") {
			t.Fatalf("text preview = %q", resp.Data)
		}
	}

	{
		w := get("/data/download/youtube/videos/vid00000001/comments.jsonl")
		if w.Code != http.StatusOK || w.Body.String() != comments {
			t.Fatalf("download code=%d body=%q", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Header().Get("content-disposition"), "comments.jsonl") {
			t.Fatalf("content-disposition = %q", w.Header().Get("content-disposition"))
		}
	}

	if w := get("/data/download/youtube/videos/none.jsonl"); w.Code != http.StatusNotFound {
		t.Fatalf("missing file code=%d", w.Code)
	}

	{
		w := get("/data/stats")
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp["videos"] != 2.0 || resp["total_files"] != 4.0 {
			t.Fatalf("stats = %v", resp)
		}
	}

	{
		w := get("/videos/vid00000001")
		var resp struct {
			Video store.VideoSummary `json:"video"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if w.Code != http.StatusOK || resp.Video.Comments != 2 {
			t.Fatalf("video code=%d body=%s", w.Code, w.Body.String())
		}
		if w := get("/videos/unknown0000"); w.Code != http.StatusNotFound {
			t.Fatalf("unknown video code=%d", w.Code)
		}
	}
}

func TestSafeDataPath(t *testing.T) {
	dir := t.TempDir()
	for _, bad := range []string{"../etc/passwd", "a/../../x", ".", "a\x00b"} {
		if _, err := safeDataPath(dir, bad); err == nil {
			t.Fatalf("safeDataPath(%q) accepted", bad)
		}
	}
	got, err := safeDataPath(dir, "youtube/videos/x/comments.jsonl")
	if err != nil || !strings.HasPrefix(got, dir) {
		t.Fatalf("got=%q err=%v", got, err)
	}
}
