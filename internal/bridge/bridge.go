package bridge

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keagan/framebridge/internal/ffmpeg"
	"github.com/keagan/framebridge/pkg/util"
)

// Result describes a completed bridge between two videos
type Result struct {
	Text       string
	OutputPath string
	FrameAPath string
	FrameBPath string
	Score      float64
	IndexA     int
	IndexB     int
}

// Bridger joins two videos at a connection point chosen by its strategy
type Bridger struct {
	logger   zerolog.Logger
	ffmpeg   *ffmpeg.Executor
	strategy Strategy
}

// New creates a bridger using the given strategy
func New(logger zerolog.Logger, exec *ffmpeg.Executor, strategy Strategy) *Bridger {
	return &Bridger{
		logger:   logger.With().Str("component", "bridge").Logger(),
		ffmpeg:   exec,
		strategy: strategy,
	}
}

// Bridge finds the connection point between videoA and videoB and writes the
// spliced result to outputPath. The connection frames are saved as preview
// images on a best-effort basis; a preview failure never fails the bridge.
func (b *Bridger) Bridge(ctx context.Context, videoA, videoB, outputPath string) (*Result, error) {
	if videoA == "" || videoB == "" {
		return nil, fmt.Errorf("two input videos are required")
	}
	if !util.FileExists(videoA) {
		return nil, fmt.Errorf("video not found: %s", videoA)
	}
	if !util.FileExists(videoB) {
		return nil, fmt.Errorf("video not found: %s", videoB)
	}

	b.logger.Info().
		Str("video_a", filepath.Base(videoA)).
		Str("video_b", filepath.Base(videoB)).
		Str("strategy", b.strategy.Name()).
		Msg("bridging videos")

	conn, err := b.strategy.Select(ctx, videoA, videoB)
	if err != nil {
		return nil, fmt.Errorf("connection search failed: %w", err)
	}

	previewA := b.savePreview(conn.FrameA, "connection_a")
	previewB := b.savePreview(conn.FrameB, "connection_b")

	if err := b.ffmpeg.Splice(ctx, ffmpeg.SpliceOptions{
		InputA: videoA,
		InputB: videoB,
		CutA:   conn.IndexA,
		CutB:   conn.IndexB,
		Output: outputPath,
	}); err != nil {
		return nil, fmt.Errorf("splice failed: %w", err)
	}

	text := fmt.Sprintf("Bridged %s and %s at frames %d/%d (similarity %.3f, %s) -> %s",
		filepath.Base(videoA), filepath.Base(videoB),
		conn.IndexA, conn.IndexB, conn.Score, QualityLabel(conn.Score),
		filepath.Base(outputPath))

	b.logger.Info().
		Float64("score", conn.Score).
		Str("quality", QualityLabel(conn.Score)).
		Str("output", outputPath).
		Msg("bridge complete")

	return &Result{
		Text:       text,
		OutputPath: outputPath,
		FrameAPath: previewA,
		FrameBPath: previewB,
		Score:      conn.Score,
		IndexA:     conn.IndexA,
		IndexB:     conn.IndexB,
	}, nil
}

// savePreview writes a connection frame to the temp dir for inspection.
// Returns the path, or "" if the frame could not be written.
func (b *Bridger) savePreview(img image.Image, label string) string {
	if img == nil {
		return ""
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("%s_%s.png", label, uuid.NewString()[:8]))
	f, err := os.Create(path)
	if err != nil {
		b.logger.Warn().Err(err).Msg("could not save preview frame")
		return ""
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		b.logger.Warn().Err(err).Msg("could not encode preview frame")
		os.Remove(path)
		return ""
	}
	return path
}

// QualityLabel maps a similarity score to a human-readable verdict
func QualityLabel(score float64) string {
	switch {
	case score > 0.8:
		return "excellent"
	case score > 0.6:
		return "good"
	case score > 0.4:
		return "fair"
	default:
		return "needs review"
	}
}
