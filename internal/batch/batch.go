package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/keagan/framebridge/internal/bridge"
	"github.com/keagan/framebridge/pkg/util"
)

// ErrTooFewVideos is returned when a directory holds fewer than two usable
// videos.
var ErrTooFewVideos = errors.New("at least two videos are required")

// Merger joins two videos into one output file
type Merger interface {
	Bridge(ctx context.Context, videoA, videoB, outputPath string) (*bridge.Result, error)
}

// Orchestrator runs merge plans over a directory of videos
type Orchestrator struct {
	logger    zerolog.Logger
	merger    Merger
	outputDir string
	formats   []string

	// ProgressFunc, when set, is called after each completed step with the
	// number of steps done and the total planned.
	ProgressFunc func(done, total int)
}

// NewOrchestrator creates a batch orchestrator writing results to outputDir
func NewOrchestrator(logger zerolog.Logger, merger Merger, outputDir string, formats []string) *Orchestrator {
	return &Orchestrator{
		logger:    logger.With().Str("component", "batch").Logger(),
		merger:    merger,
		outputDir: outputDir,
		formats:   formats,
	}
}

// Discover lists the video files in dir, sorted case-insensitively by name.
// The order is plain lexicographic: clip10 sorts before clip2, so zero-pad
// numbered filenames when order matters.
func (o *Orchestrator) Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read directory %s: %w", dir, err)
	}

	exts := make(map[string]bool, len(o.formats))
	for _, f := range o.formats {
		exts[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		if exts[ext] {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Slice(videos, func(i, j int) bool {
		return strings.ToLower(filepath.Base(videos[i])) < strings.ToLower(filepath.Base(videos[j]))
	})

	o.logger.Info().Int("count", len(videos)).Str("dir", dir).Msg("videos discovered")
	return videos, nil
}

// SequentialMerge folds the videos left to right into a single output named
// outputName. A failed step is skipped: the accumulated result so far is
// carried forward and the next video is tried against it. Intermediate
// results are deleted as soon as they are superseded, so at most one
// intermediate exists at a time.
func (o *Orchestrator) SequentialMerge(ctx context.Context, videos []string, outputName string) (*FoldOutcome, error) {
	if len(videos) < 2 {
		return nil, fmt.Errorf("%w, found %d", ErrTooFewVideos, len(videos))
	}
	if err := util.EnsureDir(o.outputDir); err != nil {
		return nil, err
	}

	finalPath := filepath.Join(o.outputDir, outputName)
	total := len(videos) - 1

	current := videos[0]
	prevIntermediate := ""
	var steps []StepResult

	for i := 1; i < len(videos); i++ {
		next := videos[i]
		isFinal := i == len(videos)-1

		output := finalPath
		if !isFinal {
			output = filepath.Join(o.outputDir,
				fmt.Sprintf("intermediate_%s.mp4", uuid.NewString()[:8]))
		}

		o.logger.Info().
			Int("step", i).
			Int("total", total).
			Str("current", filepath.Base(current)).
			Str("next", filepath.Base(next)).
			Msg("merging")

		result, err := o.merger.Bridge(ctx, current, next, output)
		if err != nil {
			o.logger.Warn().Err(err).
				Str("video", filepath.Base(next)).
				Msg("step failed, carrying current result forward")
			steps = append(steps, FailedStep(current, next, err))
			o.reportProgress(i, total)
			continue
		}

		steps = append(steps, MergeStep(current, next, output, result.Score))

		if prevIntermediate != "" {
			util.CleanupFiles(prevIntermediate)
		}
		if !isFinal {
			prevIntermediate = output
		}
		current = output
		o.reportProgress(i, total)
	}

	// success means the named output actually exists: a run whose last
	// steps all failed leaves only an intermediate behind
	outcome := &FoldOutcome{
		Success:    util.FileExists(finalPath),
		OutputPath: finalPath,
		Steps:      steps,
	}
	if !outcome.Success {
		o.logger.Error().Str("output", finalPath).Msg("sequential merge did not produce final output")
	}
	return outcome, nil
}

// PairwiseMerge merges videos two at a time: (1,2), (3,4), and so on. An
// odd trailing video is copied to the output directory unmodified.
func (o *Orchestrator) PairwiseMerge(ctx context.Context, videos []string) (*PairOutcome, error) {
	if len(videos) < 2 {
		return nil, fmt.Errorf("%w, found %d", ErrTooFewVideos, len(videos))
	}
	if err := util.EnsureDir(o.outputDir); err != nil {
		return nil, err
	}

	total := (len(videos) + 1) / 2
	var steps []StepResult
	var outputs []string

	done := 0
	for i := 0; i+1 < len(videos); i += 2 {
		a, b := videos[i], videos[i+1]
		pair := i/2 + 1
		output := filepath.Join(o.outputDir,
			fmt.Sprintf("merged_pair_%d_%s_%s.mp4", pair, util.BaseNoExt(a), util.BaseNoExt(b)))

		o.logger.Info().
			Int("pair", pair).
			Str("video_a", filepath.Base(a)).
			Str("video_b", filepath.Base(b)).
			Msg("merging pair")

		result, err := o.merger.Bridge(ctx, a, b, output)
		if err != nil {
			o.logger.Warn().Err(err).Int("pair", pair).Msg("pair failed")
			steps = append(steps, FailedStep(a, b, err))
		} else {
			steps = append(steps, MergeStep(a, b, output, result.Score))
			outputs = append(outputs, output)
		}
		done++
		o.reportProgress(done, total)
	}

	if len(videos)%2 == 1 {
		last := videos[len(videos)-1]
		output := filepath.Join(o.outputDir, "single_"+filepath.Base(last))
		if err := util.CopyFile(last, output); err != nil {
			o.logger.Warn().Err(err).Str("video", filepath.Base(last)).Msg("copy failed")
			steps = append(steps, FailedStep(last, "", err))
		} else {
			steps = append(steps, CopiedStep(last, output))
			outputs = append(outputs, output)
		}
		done++
		o.reportProgress(done, total)
	}

	return &PairOutcome{
		Success:     len(outputs) > 0,
		OutputPaths: outputs,
		Steps:       steps,
	}, nil
}

func (o *Orchestrator) reportProgress(done, total int) {
	if o.ProgressFunc != nil {
		o.ProgressFunc(done, total)
	}
}
