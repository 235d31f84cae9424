package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/platform"
)

var ErrTaskRunning = errors.New("task is running")

// ValidationError rejects a run request before anything starts.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

type Status struct {
	State      string          `json:"state"`
	Platform   string          `json:"platform,omitempty"`
	Videos     []string        `json:"videos,omitempty"`
	Sort       string          `json:"sort,omitempty"`
	StartedAt  int64           `json:"started_at,omitempty"`
	FinishedAt int64           `json:"finished_at,omitempty"`
	LastError  string          `json:"last_error,omitempty"`
	ExitCode   int             `json:"exit_code"`
	Result     *crawler.Result `json:"result,omitempty"`
}

// RunRequest overrides configuration for one run. Empty fields keep the
// configured value.
type RunRequest struct {
	Platform    string   `json:"platform,omitempty"`
	VideoIDs    []string `json:"video_ids,omitempty"`
	Sort        string   `json:"sort,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
	SaveOption  string   `json:"save_option,omitempty"`
	OutputFile  string   `json:"output_file,omitempty"`
	Concurrency *int     `json:"concurrency,omitempty"`
}

type RunFunc func(ctx context.Context) (crawler.Result, error)

type TaskManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	status Status
	runFn  RunFunc
}

func NewTaskManager() *TaskManager {
	return NewTaskManagerWithRunner(runCrawler)
}

func NewTaskManagerWithRunner(runFn RunFunc) *TaskManager {
	if runFn == nil {
		runFn = runCrawler
	}
	return &TaskManager{status: Status{State: "idle"}, runFn: runFn}
}

func (m *TaskManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status
	st.Videos = append([]string(nil), m.status.Videos...)
	return st
}

func (m *TaskManager) Run(req RunRequest) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return ErrTaskRunning
	}
	cfg := config.AppConfig
	if err := applyRunRequest(&cfg, req); err != nil {
		m.mu.Unlock()
		return err
	}
	config.AppConfig = cfg

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.status = Status{
		State:     "running",
		Platform:  cfg.Platform,
		Videos:    append([]string(nil), cfg.VideoList...),
		Sort:      cfg.SortType,
		StartedAt: time.Now().Unix(),
	}
	m.mu.Unlock()

	go func() {
		res, err := m.runFn(ctx)
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cancel = nil
		m.status.State = "idle"
		m.status.FinishedAt = time.Now().Unix()
		m.status.Result = &res
		m.status.LastError = ""
		kind := res.WorstKind()
		if err != nil {
			m.status.LastError = err.Error()
			kind = crawler.KindOf(err)
		}
		m.status.ExitCode = crawler.ExitCode(kind)
		logger.Info("api task finished", "exit_code", m.status.ExitCode, "comments", res.Comments, "err", err)
	}()
	return nil
}

func (m *TaskManager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return false
	}
	m.cancel()
	m.status.State = "stopping"
	return true
}

func runCrawler(ctx context.Context) (crawler.Result, error) {
	req := crawler.RequestFromConfig(config.AppConfig)
	c, err := platform.New(req.Platform)
	if err != nil {
		return crawler.Result{}, err
	}
	return c.Run(ctx, req)
}

func applyRunRequest(cfg *config.Config, req RunRequest) error {
	if v := strings.TrimSpace(req.Platform); v != "" {
		name, ok := platform.Canonical(v)
		if !ok {
			return ValidationError{Field: "platform", Msg: fmt.Sprintf("unknown platform %q", v)}
		}
		cfg.Platform = name
	}
	if len(req.VideoIDs) > 0 {
		cfg.VideoList = req.VideoIDs
	}
	if v := strings.TrimSpace(req.Sort); v != "" {
		sorted := config.Config{SortType: v}
		config.Normalize(&sorted)
		if !config.KnownSortType(sorted.SortType) {
			return ValidationError{Field: "sort", Msg: fmt.Sprintf("unknown sort order %q", v)}
		}
		cfg.SortType = sorted.SortType
	}
	if req.Limit != nil {
		if *req.Limit < 0 {
			return ValidationError{Field: "limit", Msg: "must not be negative"}
		}
		cfg.CrawlerMaxComments = *req.Limit
	}
	if req.Concurrency != nil {
		if *req.Concurrency < 1 {
			return ValidationError{Field: "concurrency", Msg: "must be at least 1"}
		}
		cfg.MaxConcurrencyNum = *req.Concurrency
	}
	if v := strings.TrimSpace(req.SaveOption); v != "" {
		cfg.SaveDataOption = v
	}
	if v := strings.TrimSpace(req.OutputFile); v != "" {
		cfg.OutputFile = v
	}
	config.Normalize(cfg)

	switch cfg.SaveDataOption {
	case "jsonl", "json", "csv", "xlsx", "text":
	default:
		return ValidationError{Field: "save_option", Msg: fmt.Sprintf("unsupported format %q", cfg.SaveDataOption)}
	}
	if len(cfg.VideoList) == 0 {
		return ValidationError{Field: "video_ids", Msg: "at least one video id or url is required"}
	}
	if !platform.Exists(cfg.Platform) {
		return ValidationError{Field: "platform", Msg: fmt.Sprintf("unknown platform %q", cfg.Platform)}
	}
	return nil
}
