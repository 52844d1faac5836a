package ffmpeg

import (
	"context"
	"fmt"
	"os"
)

// ExtractFrameIndex decodes exactly one frame, addressed by 0-based index,
// into an image file at outputPath. The image format follows the output
// extension.
func (e *Executor) ExtractFrameIndex(ctx context.Context, input string, index int, outputPath string) error {
	if input == "" {
		return fmt.Errorf("input path is required")
	}
	if index < 0 {
		return fmt.Errorf("frame index must be non-negative, got %d", index)
	}

	args := frameIndexArgs(input, index, outputPath)

	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("frame extraction")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("frame %d extraction failed: %w", index, err)
	}

	// ffmpeg exits zero when the select filter matches nothing (index past
	// end of stream); treat a missing output as a decode failure.
	if stat, err := os.Stat(outputPath); err != nil || stat.Size() == 0 {
		return fmt.Errorf("frame %d not decoded from %s", index, input)
	}

	return nil
}

// frameIndexArgs builds the argument list for single-frame extraction. The
// comma inside eq() is escaped because the filter string is passed to the
// process directly, without a shell.
func frameIndexArgs(input string, index int, outputPath string) []string {
	return []string{
		"-i", input,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-fps_mode", "passthrough",
		"-frames:v", "1",
		outputPath,
	}
}
