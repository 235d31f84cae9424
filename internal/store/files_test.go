package store

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-comment-crawler-go/internal/config"

	"github.com/xuri/excelize/v2"
)

func TestAppendUniqueJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.jsonl")
	items := records(testComment{ID: "1", Text: "a"}, testComment{ID: "2", Text: "b"})
	n, err := AppendUniqueJSONL(path, items)
	if err != nil {
		t.Fatalf("AppendUniqueJSONL err: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 appended, got %d", n)
	}

	n, err = AppendUniqueJSONL(path, records(testComment{ID: "2", Text: "b"}, testComment{ID: "3", Text: "c"}, testComment{ID: "3", Text: "c"}))
	if err != nil {
		t.Fatalf("AppendUniqueJSONL(2) err: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 appended, got %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var c testComment
		if err := json.Unmarshal(sc.Bytes(), &c); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "1,2,3" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestAppendUniqueJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.json")
	if _, err := AppendUniqueJSONArray(path, records(testComment{ID: "1"})); err != nil {
		t.Fatal(err)
	}
	if _, err := AppendUniqueJSONArray(path, records(testComment{ID: "1"}, testComment{ID: "1.r"})); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var arr []testComment
	if err := json.Unmarshal(b, &arr); err != nil {
		t.Fatalf("not a json array: %v", err)
	}
	if len(arr) != 2 || arr[1].ID != "1.r" {
		t.Fatalf("unexpected array: %+v", arr)
	}
}

func TestAppendUniqueCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.csv")
	if _, err := AppendUniqueCSV(path, records(testComment{ID: "1", Author: "a", Text: "x,y"})); err != nil {
		t.Fatal(err)
	}
	if _, err := AppendUniqueCSV(path, records(testComment{ID: "2", Author: "b", Text: "z"})); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "\xEF\xBB\xBF") {
		t.Fatalf("missing BOM")
	}
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(b), "\xEF\xBB\xBF"))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "cid" || rows[1][2] != "x,y" || rows[2][0] != "2" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestAppendUniqueText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.txt")
	if _, err := AppendUniqueText(path, records(testComment{ID: "1", Author: "a", Text: "hello"})); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a\nhello\n\n" {
		t.Fatalf("got %q", string(b))
	}
}

func TestAppendUniqueXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.xlsx")
	if _, err := AppendUniqueXLSX(path, records(testComment{ID: "1", Author: "a"}, testComment{ID: "2", Author: "b"})); err != nil {
		t.Fatal(err)
	}
	if _, err := AppendUniqueXLSX(path, records(testComment{ID: "2"}, testComment{ID: "3", Author: "c"})); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(commentsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[3][0] != "3" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestSaveCommentsUsesOutputFile(t *testing.T) {
	tmp := t.TempDir()
	config.AppConfig.DataDir = tmp
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.SaveDataOption = "jsonl"
	config.AppConfig.OutputFile = filepath.Join(tmp, "out", "all.jsonl")
	t.Cleanup(func() { config.AppConfig.OutputFile = "" })

	if _, err := SaveComments("vid1", records(testComment{ID: "a"})); err != nil {
		t.Fatal(err)
	}
	if _, err := SaveComments("vid2", records(testComment{ID: "b"})); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(config.AppConfig.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(b), "\n"); n != 2 {
		t.Fatalf("expected 2 lines, got %d", n)
	}
}

func TestSaveCommentsPerVideoDir(t *testing.T) {
	tmp := t.TempDir()
	config.AppConfig.DataDir = tmp
	config.AppConfig.Platform = "youtube"
	config.AppConfig.StoreBackend = "file"
	config.AppConfig.SaveDataOption = "csv"
	config.AppConfig.OutputFile = ""

	if _, err := SaveComments("vid1", records(testComment{ID: "a"})); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(tmp, "youtube", "videos", "vid1", "comments.csv")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected %s: %v", want, err)
	}
	if err := SaveVideo(VideoSummary{VideoID: "vid1", Comments: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "youtube", "videos", "vid1", "video.json")); err != nil {
		t.Fatalf("video.json missing: %v", err)
	}
}
