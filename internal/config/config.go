package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Strategy names accepted by search.strategy.
const (
	StrategySearch = "search"
	StrategyFixed  = "fixed"
)

// Config holds all application configuration
type Config struct {
	// Directory receiving batch outputs and reports. Created on demand.
	OutputDir string `yaml:"output_dir"`

	// Extensions recognized by directory discovery, dot included.
	SupportedFormats []string `yaml:"supported_formats"`

	Search SearchConfig `yaml:"search"`
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

// SearchConfig controls connection-point selection.
type SearchConfig struct {
	Strategy string `yaml:"strategy"`

	// Advisory only: surfaced to callers for quality filtering, never
	// gates control flow here.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`

	ExcludeEdgeFrames bool `yaml:"exclude_edge_frames"`
	NumFramesVideoA   int  `yaml:"num_frames_video_a"`
	NumFramesVideoB   int  `yaml:"num_frames_video_b"`
	ComparisonFrames  int  `yaml:"comparison_frames"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir: "output",
		SupportedFormats: []string{
			".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm",
		},
		Search: SearchConfig{
			Strategy:            StrategySearch,
			SimilarityThreshold: 0.3,
			ExcludeEdgeFrames:   true,
			NumFramesVideoA:     30,
			NumFramesVideoB:     10,
			ComparisonFrames:    3,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath: "",
			ProbePath:  "",
			Threads:    0,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".framebridge", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
