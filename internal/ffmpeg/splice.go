package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/keagan/framebridge/pkg/util"
)

// SpliceOptions defines a two-video splice. CutA and CutB are inclusive
// frame indices: the output carries frames 0..CutA of InputA followed by
// frames CutB..EOS of InputB.
type SpliceOptions struct {
	InputA       string
	InputB       string
	CutA         int
	CutB         int
	Output       string
	ProgressFunc ProgressFunc
}

// Splice writes a new video joined at the given cut frames. The output's
// frame rate and dimensions are fixed to InputA's metadata at call time;
// InputB frames are rescaled when their dimensions differ. A partially
// written Output may remain when encoding fails midway.
func (e *Executor) Splice(ctx context.Context, opts SpliceOptions) error {
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.CutA < 0 || opts.CutB < 0 {
		return fmt.Errorf("cut frames must be non-negative, got %d/%d", opts.CutA, opts.CutB)
	}

	infoA, err := e.Probe(ctx, opts.InputA)
	if err != nil {
		return fmt.Errorf("cannot open first video: %w", err)
	}
	if _, err := e.Probe(ctx, opts.InputB); err != nil {
		return fmt.Errorf("cannot open second video: %w", err)
	}

	e.logger.Info().
		Str("output", filepath.Base(opts.Output)).
		Int("cut_a", opts.CutA).
		Int("cut_b", opts.CutB).
		Int("width", infoA.Width).
		Int("height", infoA.Height).
		Float64("fps", infoA.FPS).
		Msg("splicing videos")

	tag := uuid.NewString()[:8]
	head := filepath.Join(os.TempDir(), fmt.Sprintf("bridge_head_%s.mp4", tag))
	tail := filepath.Join(os.TempDir(), fmt.Sprintf("bridge_tail_%s.mp4", tag))
	defer util.CleanupFiles(head, tail)

	if err := e.encodeSegment(ctx, headSegmentArgs(opts.InputA, opts.CutA, head), "head"); err != nil {
		return err
	}
	if err := e.encodeSegment(ctx, tailSegmentArgs(opts.InputB, opts.CutB, infoA.Width, infoA.Height, tail), "tail"); err != nil {
		return err
	}

	return e.concatSegments(ctx, head, tail, opts.Output, opts.ProgressFunc)
}

func (e *Executor) encodeSegment(ctx context.Context, args []string, name string) error {
	opts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg(name + " segment")
		},
	}
	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("%s segment encode failed: %w", name, err)
	}
	return nil
}

// headSegmentArgs selects frames 0..cut inclusive of the first source.
// trim's end_frame is exclusive, hence cut+1.
func headSegmentArgs(input string, cut int, output string) []string {
	return []string{
		"-i", input,
		"-vf", fmt.Sprintf("trim=start_frame=0:end_frame=%d,setpts=PTS-STARTPTS", cut+1),
		"-fps_mode", "passthrough",
		"-an",
		"-c:v", OutputVideoCodec,
		"-vtag", OutputFourCC,
		"-q:v", fmt.Sprintf("%d", OutputQScale),
		output,
	}
}

// tailSegmentArgs selects frames cut..EOS of the second source, rescaled to
// the canonical output size.
func tailSegmentArgs(input string, cut, width, height int, output string) []string {
	return []string{
		"-i", input,
		"-vf", fmt.Sprintf("trim=start_frame=%d,setpts=PTS-STARTPTS,scale=%d:%d", cut, width, height),
		"-fps_mode", "passthrough",
		"-an",
		"-c:v", OutputVideoCodec,
		"-vtag", OutputFourCC,
		"-q:v", fmt.Sprintf("%d", OutputQScale),
		output,
	}
}

// concatSegments joins the two encoded segments without re-encoding, via the
// concat demuxer and a temporary list file.
func (e *Executor) concatSegments(ctx context.Context, head, tail, output string, progress ProgressFunc) error {
	listFile, err := writeConcatList(head, tail)
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	defer os.Remove(listFile)

	opts := RunOptions{
		Args: []string{
			"-f", "concat",
			"-safe", "0",
			"-i", listFile,
			"-c", "copy",
			output,
		},
		ProgressHandler: progress,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("concatenating")
		},
	}

	if err := e.Run(ctx, opts); err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}

	e.logger.Info().Str("output", filepath.Base(output)).Msg("splice complete")
	return nil
}

func writeConcatList(inputs ...string) (string, error) {
	tmpFile, err := os.CreateTemp("", "framebridge-concat-*.txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	for _, input := range inputs {
		absPath, err := filepath.Abs(input)
		if err != nil {
			return "", err
		}
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", absPath); err != nil {
			return "", err
		}
	}

	return tmpFile.Name(), nil
}
