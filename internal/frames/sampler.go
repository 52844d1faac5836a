package frames

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keagan/framebridge/internal/ffmpeg"
)

// Frame pairs a 0-based frame index with its decoded pixels. Frames are
// transient: no component retains them across calls.
type Frame struct {
	Index int
	Image image.Image
}

// Sampler decodes evenly spaced frame subsets from a video
type Sampler struct {
	logger zerolog.Logger
	ffmpeg *ffmpeg.Executor
}

// NewSampler creates a sampler backed by the given executor
func NewSampler(logger zerolog.Logger, exec *ffmpeg.Executor) *Sampler {
	return &Sampler{
		logger: logger.With().Str("component", "sampler").Logger(),
		ffmpeg: exec,
	}
}

// SampleIndices returns count frame indices evenly spaced, endpoints
// included, across [0, total-1], rounded to the nearest integer. When count
// exceeds total, duplicate indices appear and are preserved.
func SampleIndices(total, count int) []int {
	if total <= 0 || count <= 0 {
		return nil
	}
	if count == 1 {
		return []int{0}
	}

	indices := make([]int, count)
	step := float64(total-1) / float64(count-1)
	for i := range indices {
		indices[i] = int(math.Round(float64(i) * step))
	}
	return indices
}

// Extract decodes count evenly spaced frames from the video. A frame that
// fails to decode is skipped, so the result may be shorter than count; a
// video that cannot be opened or reports zero frames is a hard failure.
func (s *Sampler) Extract(ctx context.Context, videoPath string, count int) ([]Frame, error) {
	info, err := s.ffmpeg.Probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open video %s: %w", videoPath, err)
	}
	if info.FrameCount == 0 {
		return nil, fmt.Errorf("no frames found in %s", videoPath)
	}

	s.logger.Info().
		Str("video", filepath.Base(videoPath)).
		Int("total_frames", info.FrameCount).
		Int("requested", count).
		Msg("sampling frames")

	indices := SampleIndices(info.FrameCount, count)
	frames := make([]Frame, 0, len(indices))
	for _, idx := range indices {
		img, err := s.decodeAt(ctx, videoPath, idx)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", idx).Msg("frame skipped")
			continue
		}
		frames = append(frames, Frame{Index: idx, Image: img})
	}

	s.logger.Debug().
		Int("sampled", len(frames)).
		Int("requested", count).
		Msg("frame sampling complete")

	return frames, nil
}

// FrameAt decodes the single frame at the given index
func (s *Sampler) FrameAt(ctx context.Context, videoPath string, index int) (Frame, error) {
	img, err := s.decodeAt(ctx, videoPath, index)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Index: index, Image: img}, nil
}

// Info returns the probe metadata snapshot for a video
func (s *Sampler) Info(ctx context.Context, videoPath string) (*ffmpeg.VideoInfo, error) {
	return s.ffmpeg.Probe(ctx, videoPath)
}

func (s *Sampler) decodeAt(ctx context.Context, videoPath string, index int) (image.Image, error) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("frame_%d_%s.png", index, uuid.NewString()[:8]))
	defer os.Remove(tmp)

	if err := s.ffmpeg.ExtractFrameIndex(ctx, videoPath, index, tmp); err != nil {
		return nil, err
	}

	f, err := os.Open(tmp)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %d: %w", index, err)
	}
	return img, nil
}
