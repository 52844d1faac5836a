package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

// generateVideo writes a synthetic test video with the given frame count.
func generateVideo(t *testing.T, path string, frames int, rate int, size string) {
	t.Helper()
	duration := float64(frames) / float64(rate)
	cmd := exec.Command("ffmpeg", "-y", "-f", "lavfi",
		"-i", fmt.Sprintf("testsrc=duration=%f:size=%s:rate=%d", duration, size, rate),
		"-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test video: %v\n%s", err, out)
	}
}

// countFrames decodes the stream to get an exact frame count.
func countFrames(t *testing.T, path string) int {
	t.Helper()
	cmd := exec.Command("ffprobe", "-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=nokey=1:noprint_wrappers=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("frame count probe failed: %v", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("unexpected frame count output %q: %v", out, err)
	}
	return n
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, "", "", 2)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	return exec
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec := newTestExecutor(t)
	if exec.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if exec.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
	t.Logf("ffmpeg: %s", exec.ffmpegPath)
	t.Logf("ffprobe: %s", exec.ffprobePath)
}

func TestExecutorMissingBinary(t *testing.T) {
	logger := zerolog.New(os.Stderr)
	if _, err := New(logger, "definitely-not-ffmpeg", "", 0); err == nil {
		t.Error("expected error for nonexistent binary")
	}
}

func TestProbe(t *testing.T) {
	skipIfNoFFmpeg(t)

	video := filepath.Join(t.TempDir(), "probe.mp4")
	generateVideo(t, video, 30, 10, "320x240")

	exec := newTestExecutor(t)
	info, err := exec.Probe(context.Background(), video)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected 320x240, got %dx%d", info.Width, info.Height)
	}
	if info.FPS < 9.9 || info.FPS > 10.1 {
		t.Errorf("expected 10 fps, got %f", info.FPS)
	}
	if info.FrameCount != 30 {
		t.Errorf("expected 30 frames, got %d", info.FrameCount)
	}
	t.Logf("probe: %dx%d %.1f fps, %d frames, %v",
		info.Width, info.Height, info.FPS, info.FrameCount, info.Duration)
}

func TestProbeInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec := newTestExecutor(t)
	ctx := context.Background()

	if _, err := exec.Probe(ctx, "nonexistent.mp4"); err == nil {
		t.Error("Probe should fail for a missing file")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.mp4")
	os.WriteFile(invalid, []byte("not a video"), 0644)
	if _, err := exec.Probe(ctx, invalid); err == nil {
		t.Error("Probe should fail for a non-video file")
	}
}

func TestExtractFrameIndex(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	video := filepath.Join(dir, "frames.mp4")
	generateVideo(t, video, 20, 10, "160x120")

	exec := newTestExecutor(t)
	out := filepath.Join(dir, "frame7.png")

	if err := exec.ExtractFrameIndex(context.Background(), video, 7, out); err != nil {
		t.Fatalf("ExtractFrameIndex failed: %v", err)
	}
	stat, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output frame missing: %v", err)
	}
	t.Logf("frame 7 extracted (%d bytes)", stat.Size())
}

func TestExtractFrameIndexPastEnd(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	video := filepath.Join(dir, "short.mp4")
	generateVideo(t, video, 5, 5, "160x120")

	exec := newTestExecutor(t)
	out := filepath.Join(dir, "frame99.png")

	if err := exec.ExtractFrameIndex(context.Background(), video, 99, out); err == nil {
		t.Error("expected error extracting a frame past end of stream")
	}
}

func TestSpliceFrameCount(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	videoA := filepath.Join(dir, "a.mp4")
	videoB := filepath.Join(dir, "b.mp4")
	generateVideo(t, videoA, 10, 10, "320x240")
	generateVideo(t, videoB, 8, 8, "320x240")

	exec := newTestExecutor(t)
	out := filepath.Join(dir, "merged.mp4")

	err := exec.Splice(context.Background(), SpliceOptions{
		InputA: videoA,
		InputB: videoB,
		CutA:   4,
		CutB:   2,
		Output: out,
	})
	if err != nil {
		t.Fatalf("Splice failed: %v", err)
	}

	// frames 0..4 of A plus frames 2..7 of B
	got := countFrames(t, out)
	want := (4 + 1) + (8 - 2)
	if got != want {
		t.Errorf("expected %d frames in spliced output, got %d", want, got)
	}

	info, err := exec.Probe(context.Background(), out)
	if err != nil {
		t.Fatalf("probe of spliced output failed: %v", err)
	}
	if info.Width != 320 || info.Height != 240 {
		t.Errorf("expected canonical 320x240 output, got %dx%d", info.Width, info.Height)
	}
	t.Logf("spliced output: %d frames, %dx%d", got, info.Width, info.Height)
}

func TestSpliceMissingSource(t *testing.T) {
	skipIfNoFFmpeg(t)

	exec := newTestExecutor(t)
	err := exec.Splice(context.Background(), SpliceOptions{
		InputA: "missing_a.mp4",
		InputB: "missing_b.mp4",
		CutA:   0,
		CutB:   0,
		Output: filepath.Join(t.TempDir(), "out.mp4"),
	})
	if err == nil {
		t.Error("expected error for missing splice sources")
	}
	t.Logf("error (expected): %v", err)
}

func TestHeadSegmentArgs(t *testing.T) {
	args := headSegmentArgs("in.mp4", 4, "head.mp4")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "trim=start_frame=0:end_frame=5") {
		t.Errorf("head trim should be exclusive of frame 5, got %q", joined)
	}
	if !strings.Contains(joined, "setpts=PTS-STARTPTS") {
		t.Errorf("head segment must reset timestamps, got %q", joined)
	}
	if !strings.Contains(joined, "-vtag mp4v") {
		t.Errorf("output fourcc missing, got %q", joined)
	}
}

func TestTailSegmentArgs(t *testing.T) {
	args := tailSegmentArgs("in.mp4", 2, 640, 480, "tail.mp4")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, "trim=start_frame=2") {
		t.Errorf("tail trim should start at frame 2, got %q", joined)
	}
	if !strings.Contains(joined, "scale=640:480") {
		t.Errorf("tail must rescale to canonical size, got %q", joined)
	}
}

func TestFrameIndexArgs(t *testing.T) {
	args := frameIndexArgs("in.mp4", 12, "out.png")
	joined := strings.Join(args, " ")

	if !strings.Contains(joined, `select=eq(n\,12)`) {
		t.Errorf("select filter malformed: %q", joined)
	}
	if !strings.Contains(joined, "-frames:v 1") {
		t.Errorf("single-frame limit missing: %q", joined)
	}
}

func TestWriteConcatList(t *testing.T) {
	list, err := writeConcatList("head.mp4", "tail.mp4")
	if err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	defer os.Remove(list)

	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatalf("failed to read concat list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "file '") {
			t.Errorf("malformed concat entry: %q", line)
		}
	}
}
