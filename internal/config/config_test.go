package config

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.OutputDir != "output" {
		t.Errorf("expected output dir %q, got %q", "output", cfg.OutputDir)
	}
	if cfg.Search.Strategy != StrategySearch {
		t.Errorf("expected default strategy %q, got %q", StrategySearch, cfg.Search.Strategy)
	}
	if cfg.Search.NumFramesVideoA != 30 || cfg.Search.NumFramesVideoB != 10 {
		t.Errorf("unexpected default sample counts: %d/%d",
			cfg.Search.NumFramesVideoA, cfg.Search.NumFramesVideoB)
	}
	if cfg.Search.ComparisonFrames != 3 {
		t.Errorf("expected 3 comparison frames, got %d", cfg.Search.ComparisonFrames)
	}
	if cfg.Search.SimilarityThreshold != 0.3 {
		t.Errorf("expected threshold 0.3, got %f", cfg.Search.SimilarityThreshold)
	}
	if !cfg.Search.ExcludeEdgeFrames {
		t.Error("edge exclusion should default to enabled")
	}
	if len(cfg.SupportedFormats) != 7 {
		t.Errorf("expected 7 default formats, got %d", len(cfg.SupportedFormats))
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Search.NumFramesVideoA != 30 {
		t.Errorf("expected defaults, got %+v", cfg.Search)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.OutputDir = "merged"
	cfg.Search.Strategy = StrategyFixed
	cfg.Search.NumFramesVideoA = 12

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.OutputDir != "merged" {
		t.Errorf("expected output dir %q, got %q", "merged", loaded.OutputDir)
	}
	if loaded.Search.Strategy != StrategyFixed {
		t.Errorf("expected strategy %q, got %q", StrategyFixed, loaded.Search.Strategy)
	}
	if loaded.Search.NumFramesVideoA != 12 {
		t.Errorf("expected 12 samples for video A, got %d", loaded.Search.NumFramesVideoA)
	}
}

func TestConfigContext(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = "elsewhere"

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.OutputDir != "elsewhere" {
		t.Errorf("expected context config, got %+v", got)
	}
	if got := FromContext(context.Background()); got.OutputDir != "output" {
		t.Errorf("expected defaults from bare context, got %+v", got)
	}
}
