// Command json2text converts a line-delimited comment file into the grouped
// text form: author, time and text per comment, replies indented by a tab.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/platform/youtube"
)

func main() {
	input := flag.String("input", "-", "comments file, - for stdin")
	output := flag.String("output", "-", "text file, - for stdout")
	flag.Parse()

	logger.Init(os.Stderr, "info", "text")

	in := io.Reader(os.Stdin)
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Error("open input failed", "path", *input, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}
	out := io.Writer(os.Stdout)
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("create output failed", "path", *output, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	n, err := convert(in, out)
	if err != nil {
		logger.Error("convert failed", "err", err, "converted", n)
		os.Exit(1)
	}
	logger.Info("converted comments", "count", n)
}

// convert writes one text block per non-blank input line.
func convert(r io.Reader, w io.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	bw := bufio.NewWriter(w)
	n := 0
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var c youtube.Comment
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if _, err := bw.WriteString(c.TextBlock()); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, err
	}
	return n, bw.Flush()
}
