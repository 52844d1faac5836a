package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/framebridge/internal/bridge"
)

// Reporter renders batch runs as plain-text summaries
type Reporter struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewReporter creates a reporter
func NewReporter(logger zerolog.Logger) *Reporter {
	return &Reporter{
		logger: logger.With().Str("component", "report").Logger(),
		now:    time.Now,
	}
}

// Render builds the report text for a set of batch steps
func (r *Reporter) Render(steps []StepResult) string {
	var succeeded, failed int
	for _, step := range steps {
		if step.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Frame Bridge batch report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Steps: %d\n\n", len(steps))
	fmt.Fprintf(&b, "Succeeded: %d\n", succeeded)
	fmt.Fprintf(&b, "Failed: %d\n\n", failed)

	for i, step := range steps {
		switch step.Status {
		case StatusSuccess:
			fmt.Fprintf(&b, "%d. %s + %s -> %s\n", i+1,
				filepath.Base(step.Video1), filepath.Base(step.Video2),
				filepath.Base(step.Output))
			fmt.Fprintf(&b, "   similarity %.3f (%s)\n", step.Score, bridge.QualityLabel(step.Score))
		case StatusCopied:
			fmt.Fprintf(&b, "%d. %s copied unpaired -> %s\n", i+1,
				filepath.Base(step.Video1), filepath.Base(step.Output))
		case StatusFailure:
			fmt.Fprintf(&b, "%d. %s + %s FAILED\n", i+1,
				filepath.Base(step.Video1), filepath.Base(step.Video2))
			fmt.Fprintf(&b, "   error: %v\n", step.Err)
		}
	}

	return b.String()
}

// Write renders the report and persists it to path, returning the text
func (r *Reporter) Write(steps []StepResult, path string) (string, error) {
	text := r.Render(steps)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	r.logger.Info().Str("path", path).Int("steps", len(steps)).Msg("report written")
	return text, nil
}
