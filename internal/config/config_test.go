package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_NormalizesAliases(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	dir := t.TempDir()
	cfg := []byte("SAVE_DATA_OPTION: \"excel\"\nSTORE_BACKEND: \"SQLite\"\nSORT_TYPE: \"0\"\nVIDEO_LIST:\n  - \"abc, def\"\n  - \" ghi \"\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), cfg, 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(dir); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if AppConfig.SaveDataOption != "xlsx" {
		t.Fatalf("SaveDataOption = %q, want %q", AppConfig.SaveDataOption, "xlsx")
	}
	if AppConfig.StoreBackend != "sqlite" {
		t.Fatalf("StoreBackend = %q, want %q", AppConfig.StoreBackend, "sqlite")
	}
	if AppConfig.SortType != "popular" {
		t.Fatalf("SortType = %q, want %q", AppConfig.SortType, "popular")
	}
	if len(AppConfig.VideoList) != 3 || AppConfig.VideoList[2] != "ghi" {
		t.Fatalf("VideoList = %#v", AppConfig.VideoList)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if err := LoadConfig(t.TempDir()); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if AppConfig.Platform != "youtube" {
		t.Fatalf("Platform = %q", AppConfig.Platform)
	}
	if AppConfig.SortType != "recent" {
		t.Fatalf("SortType = %q", AppConfig.SortType)
	}
	if AppConfig.HttpRetryCount != 5 || AppConfig.HttpRetryDelaySec != 20 {
		t.Fatalf("retry = %d/%d", AppConfig.HttpRetryCount, AppConfig.HttpRetryDelaySec)
	}
	if AppConfig.SaveDataOption != "jsonl" {
		t.Fatalf("SaveDataOption = %q", AppConfig.SaveDataOption)
	}
}

func TestNormalizeKeepsUnknownSort(t *testing.T) {
	cfg := Config{SortType: " Oldest "}
	Normalize(&cfg)
	if cfg.SortType != "oldest" || KnownSortType(cfg.SortType) {
		t.Fatalf("SortType = %q", cfg.SortType)
	}
	cfg = Config{SortType: "newest"}
	Normalize(&cfg)
	if cfg.SortType != "recent" {
		t.Fatalf("SortType = %q, want recent", cfg.SortType)
	}
}
