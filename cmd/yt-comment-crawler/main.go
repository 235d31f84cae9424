package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"yt-comment-crawler-go/internal/api"
	"yt-comment-crawler-go/internal/config"
	"yt-comment-crawler-go/internal/crawler"
	"yt-comment-crawler-go/internal/logger"
	"yt-comment-crawler-go/internal/platform"
	_ "yt-comment-crawler-go/internal/platform/youtube"
)

func main() {
	configPath := flag.String("config", ".", "path to config file")
	apiMode := flag.Bool("api", false, "start api server")
	apiAddr := flag.String("addr", ":8080", "api server address")
	videos := flag.String("youtubeid", "", "video ids or urls, comma separated (overrides VIDEO_LIST)")
	output := flag.String("output", "", "write all comments to this file (overrides OUTPUT_FILE)")
	format := flag.String("format", "", "jsonl, json, csv, xlsx or text; inferred from -output when empty")
	limit := flag.Int("limit", -1, "stop after this many comments per video, 0 for no limit")
	sortBy := flag.String("sort", "", "popular (0) or recent (1)")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(&config.AppConfig, *videos, *output, *format, *limit, *sortBy); err != nil {
		fmt.Printf("Invalid arguments: %v\n", err)
		os.Exit(crawler.ExitCode(crawler.KindOf(err)))
	}
	logger.InitFromConfig()

	if *apiMode {
		srv := api.NewServer(nil)
		logger.Info("starting api server", "addr", *apiAddr)
		if err := http.ListenAndServe(*apiAddr, srv.Handler()); err != nil {
			logger.Error("api server failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting crawler", "platform", config.AppConfig.Platform, "videos", len(config.AppConfig.VideoList), "sort", config.AppConfig.SortType)

	r, err := platform.New(config.AppConfig.Platform)
	if err != nil {
		logger.Error("crawler init failed", "err", err)
		os.Exit(1)
	}
	req := crawler.RequestFromConfig(config.AppConfig)
	res, err := r.Run(ctx, req)

	kind := res.WorstKind()
	if err != nil {
		kind = crawler.KindOf(err)
		riskHint := ""
		var ce crawler.Error
		if errors.As(err, &ce) && ce.Kind == crawler.ErrorKindRiskHint {
			riskHint = ce.Msg
		}
		logger.Error("crawler failed", "err", err, "error_kind", kind, "risk_hint", riskHint, "processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed, "comments", res.Comments)
		os.Exit(crawler.ExitCode(kind))
	}

	logger.Info("crawler finished", "platform", res.Platform, "processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed, "skipped", res.Skipped, "comments", res.Comments, "failure_kinds", res.FailureKinds, "skip_kinds", res.SkipKinds)
	os.Exit(crawler.ExitCode(kind))
}

func applyFlags(cfg *config.Config, videos, output, format string, limit int, sortBy string) error {
	if v := strings.TrimSpace(videos); v != "" {
		cfg.VideoList = []string{v}
	}
	if v := strings.TrimSpace(output); v != "" {
		cfg.OutputFile = v
		if format == "" {
			format = formatFromExt(v)
		}
	}
	if v := strings.TrimSpace(format); v != "" {
		cfg.SaveDataOption = v
	}
	if limit >= 0 {
		cfg.CrawlerMaxComments = limit
	}
	if v := strings.TrimSpace(sortBy); v != "" {
		cfg.SortType = v
	}
	config.Normalize(cfg)
	if !config.KnownSortType(cfg.SortType) {
		return crawler.Error{Kind: crawler.ErrorKindInvalidInput, Msg: fmt.Sprintf("unknown sort order %q, want popular (0) or recent (1)", cfg.SortType)}
	}
	return nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	case ".txt":
		return "text"
	case ".jsonl", ".ndjson":
		return "jsonl"
	}
	return ""
}
