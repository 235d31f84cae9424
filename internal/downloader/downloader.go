package downloader

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"

	"github.com/go-resty/resty/v2"
)

// Downloader saves remote files into Dir. Existing files are not fetched
// again.
type Downloader struct {
	client *resty.Client
	Dir    string
}

func NewDownloader(dir string) *Downloader {
	rc := resty.New().
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return crawler.ShouldRetryError(err)
			}
			return r != nil && crawler.ShouldRetryStatus(r.StatusCode())
		})
	return &Downloader{client: rc, Dir: dir}
}

func (d *Downloader) Download(ctx context.Context, url, filename string) error {
	return d.DownloadWithHeaders(ctx, url, filename, nil)
}

func (d *Downloader) DownloadWithHeaders(ctx context.Context, url, filename string, headers map[string]string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("url is empty")
	}
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(d.Dir, filename)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	tmp := path + ".part"
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetOutput(tmp).
		Get(url)
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		_ = os.Remove(tmp)
		return crawler.NewHTTPStatusError("", url, resp.StatusCode(), "")
	}
	return os.Rename(tmp, path)
}

// Job is one file to fetch.
type Job struct {
	URL      string
	Filename string
}

// BatchDownload fetches jobs with at most limit downloads in flight and
// returns the number of failures.
func (d *Downloader) BatchDownload(ctx context.Context, jobs []Job, limit int) int {
	res := crawler.ForEachLimit(ctx, jobs, limit, func(ctx context.Context, j Job) error {
		if err := d.Download(ctx, j.URL, j.Filename); err != nil {
			logger.Warn("download failed", "url", j.URL, "err", err)
			return err
		}
		return nil
	})
	return res.Failed
}
