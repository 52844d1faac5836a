package batch

// StepStatus categorizes one unit of batch work
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusFailure StepStatus = "failure"
	StatusCopied  StepStatus = "copied"
)

// StepResult records the outcome of one merge (or copy) in a batch run
type StepResult struct {
	Status StepStatus
	Video1 string
	Video2 string
	Score  float64
	Output string
	Err    error
}

// MergeStep records a successful merge of two videos
func MergeStep(video1, video2, output string, score float64) StepResult {
	return StepResult{
		Status: StatusSuccess,
		Video1: video1,
		Video2: video2,
		Score:  score,
		Output: output,
	}
}

// FailedStep records a merge that could not be completed
func FailedStep(video1, video2 string, err error) StepResult {
	return StepResult{
		Status: StatusFailure,
		Video1: video1,
		Video2: video2,
		Err:    err,
	}
}

// CopiedStep records an unpaired video carried through verbatim
func CopiedStep(video, output string) StepResult {
	return StepResult{
		Status: StatusCopied,
		Video1: video,
		Output: output,
	}
}

// Succeeded reports whether the step produced an output. Copies count as
// successes.
func (s StepResult) Succeeded() bool {
	return s.Status != StatusFailure
}

// FoldOutcome summarizes a sequential merge run
type FoldOutcome struct {
	Success    bool
	OutputPath string
	Steps      []StepResult
}

// PairOutcome summarizes a pairwise merge run
type PairOutcome struct {
	Success     bool
	OutputPaths []string
	Steps       []StepResult
}
