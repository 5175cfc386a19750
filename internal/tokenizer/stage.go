package tokenizer

// Stage names one step of the tokenization pipeline.
type Stage string

// Pipeline stages in the order a call runs them. StageNormalize only runs
// when normalization is on, StageTags only when tags are predicted and
// StageRender only for string output.
const (
	StageLoad      Stage = "load"
	StageNormalize Stage = "normalize"
	StagePredict   Stage = "predict"
	StageFilter    Stage = "filter"
	StageTags      Stage = "tags"
	StageRender    Stage = "render"
)

// StageHook is called when a stage starts. The function it returns, if not
// nil, is called when the stage ends.
type StageHook func(Stage) func()

func noop() {}

func (h StageHook) begin(st Stage) func() {
	if h == nil {
		return noop
	}
	if end := h(st); end != nil {
		return end
	}
	return noop
}
