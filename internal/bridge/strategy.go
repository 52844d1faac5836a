package bridge

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/keagan/framebridge/internal/config"
	"github.com/keagan/framebridge/internal/ffmpeg"
	"github.com/keagan/framebridge/internal/frames"
)

// Connection is a chosen splice point between two videos. Indices always
// lie within [0, totalFrames-1] of their respective sources.
type Connection struct {
	IndexA int
	IndexB int
	Score  float64
	FrameA image.Image
	FrameB image.Image
}

// FrameSource provides decoded frames and metadata from a video
type FrameSource interface {
	Extract(ctx context.Context, videoPath string, count int) ([]frames.Frame, error)
	FrameAt(ctx context.Context, videoPath string, index int) (frames.Frame, error)
	Info(ctx context.Context, videoPath string) (*ffmpeg.VideoInfo, error)
}

// FrameScorer computes a similarity score between two frames
type FrameScorer interface {
	Score(a, b image.Image) float64
}

// Strategy selects a connection point between two videos
type Strategy interface {
	Name() string
	Select(ctx context.Context, videoA, videoB string) (*Connection, error)
}

// NewStrategy builds the strategy named by the configuration
func NewStrategy(logger zerolog.Logger, source FrameSource, scorer FrameScorer, cfg config.SearchConfig) Strategy {
	if cfg.Strategy == config.StrategyFixed {
		return NewFixedStrategy(logger, source, scorer)
	}
	return NewSearchStrategy(logger, source, scorer, cfg)
}

// SearchStrategy samples both videos and exhaustively compares a target set
// of early frames from video B against video A's candidates.
type SearchStrategy struct {
	logger zerolog.Logger
	source FrameSource
	scorer FrameScorer
	cfg    config.SearchConfig
}

// NewSearchStrategy creates the exhaustive-search strategy
func NewSearchStrategy(logger zerolog.Logger, source FrameSource, scorer FrameScorer, cfg config.SearchConfig) *SearchStrategy {
	return &SearchStrategy{
		logger: logger.With().Str("strategy", "search").Logger(),
		source: source,
		scorer: scorer,
		cfg:    cfg,
	}
}

func (s *SearchStrategy) Name() string { return config.StrategySearch }

// Select compares every target frame of B against every candidate of A and
// returns the best-scoring pair. Ties keep the first pair encountered, in
// target-major order.
func (s *SearchStrategy) Select(ctx context.Context, videoA, videoB string) (*Connection, error) {
	samplesA, err := s.source.Extract(ctx, videoA, s.cfg.NumFramesVideoA)
	if err != nil {
		return nil, fmt.Errorf("sampling first video failed: %w", err)
	}
	samplesB, err := s.source.Extract(ctx, videoB, s.cfg.NumFramesVideoB)
	if err != nil {
		return nil, fmt.Errorf("sampling second video failed: %w", err)
	}

	candidatesA := trimEdges(samplesA, s.cfg.ExcludeEdgeFrames)
	candidatesB := trimEdges(samplesB, s.cfg.ExcludeEdgeFrames)

	targets := candidatesB
	if s.cfg.ComparisonFrames > 0 && len(targets) > s.cfg.ComparisonFrames {
		targets = targets[:s.cfg.ComparisonFrames]
	}

	if len(candidatesA) == 0 || len(targets) == 0 {
		return nil, fmt.Errorf("no comparable frames between %s and %s", videoA, videoB)
	}

	s.logger.Debug().
		Int("candidates_a", len(candidatesA)).
		Int("targets_b", len(targets)).
		Msg("searching connection point")

	var best *Connection
	bestScore := -1.0
	for _, target := range targets {
		for _, candidate := range candidatesA {
			score := s.scorer.Score(candidate.Image, target.Image)
			if score > bestScore {
				bestScore = score
				best = &Connection{
					IndexA: candidate.Index,
					IndexB: target.Index,
					Score:  score,
					FrameA: candidate.Image,
					FrameB: target.Image,
				}
			}
		}
	}

	s.logger.Info().
		Int("index_a", best.IndexA).
		Int("index_b", best.IndexB).
		Float64("score", best.Score).
		Msg("connection point selected")

	return best, nil
}

// trimEdges drops the first and last sample to avoid fade-in/fade-out
// contamination. Sets of two or fewer are kept whole so a candidate always
// remains.
func trimEdges(samples []frames.Frame, exclude bool) []frames.Frame {
	if !exclude || len(samples) <= 2 {
		return samples
	}
	return samples[1 : len(samples)-1]
}

// FixedStrategy bypasses search: it always joins video A's second-to-last
// frame to video B's second frame. Suited to clips trimmed consistently by
// the same capture pipeline.
type FixedStrategy struct {
	logger zerolog.Logger
	source FrameSource
	scorer FrameScorer
}

// NewFixedStrategy creates the fixed-position strategy
func NewFixedStrategy(logger zerolog.Logger, source FrameSource, scorer FrameScorer) *FixedStrategy {
	return &FixedStrategy{
		logger: logger.With().Str("strategy", "fixed").Logger(),
		source: source,
		scorer: scorer,
	}
}

func (s *FixedStrategy) Name() string { return config.StrategyFixed }

// Select picks the fixed indices from probe metadata and decodes just those
// two frames. The similarity score is computed for reporting only; it never
// influences the choice.
func (s *FixedStrategy) Select(ctx context.Context, videoA, videoB string) (*Connection, error) {
	infoA, err := s.source.Info(ctx, videoA)
	if err != nil {
		return nil, fmt.Errorf("cannot open first video: %w", err)
	}
	infoB, err := s.source.Info(ctx, videoB)
	if err != nil {
		return nil, fmt.Errorf("cannot open second video: %w", err)
	}

	indexA := infoA.FrameCount - 2
	if indexA < 0 {
		indexA = 0
	}
	indexB := 1
	if infoB.FrameCount < 2 {
		indexB = 0
	}

	frameA, err := s.source.FrameAt(ctx, videoA, indexA)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %d of first video: %w", indexA, err)
	}
	frameB, err := s.source.FrameAt(ctx, videoB, indexB)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %d of second video: %w", indexB, err)
	}

	score := s.scorer.Score(frameA.Image, frameB.Image)

	s.logger.Info().
		Int("index_a", indexA).
		Int("index_b", indexB).
		Float64("score", score).
		Msg("fixed connection point")

	return &Connection{
		IndexA: indexA,
		IndexB: indexB,
		Score:  score,
		FrameA: frameA.Image,
		FrameB: frameB.Image,
	}, nil
}
