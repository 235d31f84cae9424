package api

import (
	"bufio"
	"cmp"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/store"

	"github.com/xuri/excelize/v2"
)

type dataFileInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	VideoID     string `json:"video_id,omitempty"`
	Size        int64  `json:"size"`
	ModifiedAt  int64  `json:"modified_at"`
	RecordCount *int   `json:"record_count,omitempty"`
	Type        string `json:"type"`
}

var supportedExt = map[string]struct{}{
	".json":  {},
	".jsonl": {},
	".csv":   {},
	".xlsx":  {},
	".txt":   {},
	".db":    {},
}

func dataDir() string {
	d := strings.TrimSpace(config.AppConfig.DataDir)
	if d == "" {
		d = "data"
	}
	return d
}

func (s *Server) handleDataFilesList(w http.ResponseWriter, r *http.Request) {
	files, err := listDataFiles(dataDir(), r.URL.Query())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleDataFile(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" {
		s.handleDataFilesList(w, r)
		return
	}
	fullPath, ok := resolveDataFile(w, rel)
	if !ok {
		return
	}

	if !queryValue(r.URL.Query(), "preview", true, strconv.ParseBool) {
		serveDownload(w, r, fullPath)
		return
	}
	limit := max(1, min(queryValue(r.URL.Query(), "limit", 100, strconv.Atoi), 1000))
	data, total, columns, err := previewDataFile(fullPath, limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp := map[string]any{"data": data, "total": total}
	if len(columns) > 0 {
		resp["columns"] = columns
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDataDownload(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing file path"))
		return
	}
	fullPath, ok := resolveDataFile(w, rel)
	if !ok {
		return
	}
	serveDownload(w, r, fullPath)
}

func (s *Server) handleDataStats(w http.ResponseWriter, r *http.Request) {
	stats, err := dataStats(dataDir())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleVideo returns the saved crawl summary of one video and, with a
// database backend, how many of its comments are stored.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" || strings.ContainsAny(id, `/\.`) {
		writeError(w, http.StatusBadRequest, errors.New("invalid video id"))
		return
	}
	b, err := os.ReadFile(filepath.Join(store.VideoDir(id), "video.json"))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, errors.New("video not crawled"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var summary store.VideoSummary
	if err := json.Unmarshal(b, &summary); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	resp := map[string]any{"video": summary}
	if n, err := store.CountComments(id); err == nil {
		resp["stored_comments"] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

func resolveDataFile(w http.ResponseWriter, rel string) (string, bool) {
	fullPath, err := safeDataPath(dataDir(), rel)
	if err != nil {
		writeError(w, http.StatusForbidden, errors.New("access denied"))
		return "", false
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, errors.New("file not found"))
			return "", false
		}
		writeError(w, http.StatusInternalServerError, err)
		return "", false
	}
	if info.IsDir() {
		writeError(w, http.StatusBadRequest, errors.New("not a file"))
		return "", false
	}
	return fullPath, true
}

// videoOf returns the video id of a path laid out as
// <platform>/videos/<id>/..., or "".
func videoOf(rel string) string {
	parts := strings.Split(rel, "/")
	for i := 0; i+1 < len(parts)-1; i++ {
		if parts[i] == "videos" {
			return parts[i+1]
		}
	}
	return ""
}

func listDataFiles(dir string, q url.Values) ([]dataFileInfo, error) {
	video := strings.TrimSpace(q.Get("video_id"))
	fileType := strings.ToLower(strings.TrimSpace(q.Get("file_type")))

	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []dataFileInfo{}, nil
		}
		return nil, err
	}

	out := make([]dataFileInfo, 0, 64)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := supportedExt[ext]; !ok {
			return nil
		}
		if fileType != "" && strings.TrimPrefix(ext, ".") != fileType {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		vid := videoOf(rel)
		if video != "" && vid != video {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		item := dataFileInfo{
			Name:       d.Name(),
			Path:       rel,
			VideoID:    vid,
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime().Unix(),
			Type:       strings.TrimPrefix(ext, "."),
		}
		if rc, err := tryCountRecords(path); err == nil && rc != nil {
			item.RecordCount = rc
		}
		out = append(out, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(out, func(a, b dataFileInfo) int {
		if c := cmp.Compare(b.ModifiedAt, a.ModifiedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out, nil
}

// safeDataPath resolves rel below dir and rejects anything that would leave
// it.
func safeDataPath(dir, rel string) (string, error) {
	rel = filepath.FromSlash(strings.TrimPrefix(rel, "/"))
	if strings.ContainsRune(rel, 0) || !filepath.IsLocal(rel) || filepath.Clean(rel) == "." {
		return "", errors.New("access denied")
	}
	return filepath.Abs(filepath.Join(dir, rel))
}

// queryValue parses q[key] with parse, returning def when the key is absent
// or malformed.
func queryValue[T any](q url.Values, key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}


func previewDataFile(path string, limit int) (any, int, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err := readJSONFile(path)
		if err != nil {
			return nil, 0, nil, err
		}
		if arr, ok := v.([]any); ok {
			return arr[:min(len(arr), limit)], len(arr), nil, nil
		}
		return v, 1, nil, nil
	case ".jsonl":
		data := make([]any, 0, min(limit, 64))
		total, err := scanLines(path, func(line string) error {
			if len(data) >= limit {
				return nil
			}
			var item any
			if err := json.Unmarshal([]byte(line), &item); err != nil {
				return err
			}
			data = append(data, item)
			return nil
		})
		if err != nil {
			return nil, 0, nil, err
		}
		return data, total, nil, nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, nil, err
		}
		defer f.Close()
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		header, err := reader.Read()
		if err != nil {
			return nil, 0, nil, err
		}
		if len(header) > 0 {
			header[0] = strings.TrimPrefix(header[0], "\uFEFF")
		}
		var rows [][]string
		for {
			rec, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, 0, nil, err
			}
			rows = append(rows, rec)
		}
		return rowsAsObjects(header, rows, limit), len(rows), header, nil
	case ".xlsx":
		header, rows, err := readXLSX(path)
		if err != nil {
			return nil, 0, nil, err
		}
		return rowsAsObjects(header, rows, limit), len(rows), header, nil
	case ".txt":
		blocks, err := readTextBlocks(path)
		if err != nil {
			return nil, 0, nil, err
		}
		return blocks[:min(len(blocks), limit)], len(blocks), nil, nil
	default:
		return nil, 0, nil, errors.New("unsupported file type for preview")
	}
}

func tryCountRecords(path string) (*int, error) {
	var n int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err := readJSONFile(path)
		if err != nil {
			return nil, err
		}
		n = 1
		if arr, ok := v.([]any); ok {
			n = len(arr)
		}
	case ".jsonl":
		total, err := scanLines(path, nil)
		if err != nil {
			return nil, err
		}
		n = total
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader := csv.NewReader(f)
		reader.FieldsPerRecord = -1
		for {
			_, err := reader.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			n++
		}
		n = max(0, n-1)
	case ".xlsx":
		_, rows, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		n = len(rows)
	case ".txt":
		blocks, err := readTextBlocks(path)
		if err != nil {
			return nil, err
		}
		n = len(blocks)
	default:
		return nil, nil
	}
	return &n, nil
}

func readJSONFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var v any
	if err := json.NewDecoder(f).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// scanLines calls fn for every non-blank line and returns their count.
func scanLines(path string, fn func(string) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	n := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		n++
		if fn != nil {
			if err := fn(line); err != nil {
				return 0, err
			}
		}
	}
	return n, sc.Err()
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, nil, err
	}
	return rows[0], rows[1:], nil
}

// readTextBlocks splits the human readable output into one entry per
// comment; comments are separated by a blank line.
func readTextBlocks(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, blk := range strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n\n") {
		if strings.TrimSpace(blk) != "" {
			out = append(out, strings.Trim(blk, "\n"))
		}
	}
	return out, nil
}

func rowsAsObjects(header []string, rows [][]string, limit int) []map[string]string {
	out := make([]map[string]string, 0, min(limit, len(rows)))
	for _, rec := range rows {
		if len(out) >= limit {
			break
		}
		obj := make(map[string]string, len(header))
		for i, k := range header {
			if i < len(rec) {
				obj[k] = rec[i]
			} else {
				obj[k] = ""
			}
		}
		out = append(out, obj)
	}
	return out
}

func dataStats(dir string) (map[string]any, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return map[string]any{"total_files": 0, "total_size": 0, "videos": 0, "by_type": map[string]int{}}, nil
		}
		return nil, err
	}

	byType := map[string]int{}
	videos := map[string]struct{}{}
	totalFiles := 0
	var totalSize int64

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == "" {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		totalFiles++
		totalSize += fi.Size()
		byType[strings.TrimPrefix(ext, ".")]++
		if rel, err := filepath.Rel(dir, path); err == nil {
			if vid := videoOf(filepath.ToSlash(rel)); vid != "" {
				videos[vid] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"total_files":  totalFiles,
		"total_size":   totalSize,
		"videos":       len(videos),
		"by_type":      byType,
		"generated_at": time.Now().Unix(),
	}, nil
}

// serveDownload sends path as an attachment; http.ServeContent adds range
// and conditional request support.
func serveDownload(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("content-type", "application/octet-stream")
	w.Header().Set("content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": st.Name()}))
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}
