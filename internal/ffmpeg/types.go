package ffmpeg

import "time"

// VideoInfo is a metadata snapshot taken when a video is probed. It is not
// revalidated mid-operation; callers treat it as read-only.
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data parsed from stderr
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is a callback invoked periodically while an ffmpeg operation
// executes.
type ProgressFunc func(*Progress)

// RunOptions configures a single ffmpeg invocation
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Merged output encoding. The mp4v tag keeps outputs readable by the same
// decoders that handled the inputs.
const (
	OutputVideoCodec = "mpeg4"
	OutputFourCC     = "mp4v"
	OutputQScale     = 4
)
