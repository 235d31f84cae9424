package store

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// one lock for every file writer; videos crawled in parallel may share
// OUTPUT_FILE
var fileMu sync.Mutex

// IndexPath is the dedupe index kept next to a data file.
func IndexPath(dataPath string) string {
	return dataPath + ".idx"
}

// filterNew drops items whose id is already listed in the index or repeated
// in items.
func filterNew(indexPath string, items []Record) ([]Record, []string, error) {
	seen, err := loadIndex(indexPath)
	if err != nil {
		return nil, nil, err
	}
	fresh := make([]Record, 0, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		k := strings.TrimSpace(item.CommentID())
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		fresh = append(fresh, item)
		keys = append(keys, k)
	}
	return fresh, keys, nil
}

type appendFunc func(path string, items []Record) error

// appendUnique writes the items not yet in path's index and records them.
func appendUnique(path string, items []Record, write appendFunc) (int, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}
	indexPath := IndexPath(path)
	fresh, keys, err := filterNew(indexPath, items)
	if err != nil {
		return 0, err
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := write(path, fresh); err != nil {
		return 0, err
	}
	if err := appendIndex(indexPath, keys); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

func AppendUniqueJSONL(path string, items []Record) (int, error) {
	return appendUnique(path, items, writeJSONL)
}

func AppendUniqueJSONArray(path string, items []Record) (int, error) {
	return appendUnique(path, items, writeJSONArray)
}

func AppendUniqueCSV(path string, items []Record) (int, error) {
	return appendUnique(path, items, writeCSV)
}

func AppendUniqueText(path string, items []Record) (int, error) {
	return appendUnique(path, items, writeText)
}

func AppendUniqueXLSX(path string, items []Record) (int, error) {
	return appendUnique(path, items, writeXLSX)
}

func writeJSONL(path string, items []Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONArray rewrites the whole file; an unreadable array starts over.
func writeJSONArray(path string, items []Record) error {
	var arr []json.RawMessage
	if b, err := os.ReadFile(path); err == nil && len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, &arr); err != nil {
			arr = nil
		}
	}
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return err
		}
		arr = append(arr, b)
	}
	b, err := json.MarshalIndent(arr, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

func writeCSV(path string, items []Record) error {
	fileExists := false
	if _, err := os.Stat(path); err == nil {
		fileExists = true
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	// BOM for Excel
	if !fileExists {
		if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
			return err
		}
	}
	w := csv.NewWriter(f)
	if !fileExists {
		if err := w.Write(items[0].CSVHeader()); err != nil {
			return err
		}
	}
	for _, item := range items {
		if err := w.Write(item.CSVRecord()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeText(path string, items []Record) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, item := range items {
		if _, err := w.WriteString(item.TextBlock()); err != nil {
			return err
		}
	}
	return w.Flush()
}

func loadIndex(path string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		k := strings.TrimSpace(scanner.Text())
		if k == "" {
			continue
		}
		out[k] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func appendIndex(path string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, k := range keys {
		if _, err := f.WriteString(k + "\n"); err != nil {
			return err
		}
	}
	return nil
}
