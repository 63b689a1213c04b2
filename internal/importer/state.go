// Package importer turns a video URL into a persisted note: fetch the transcript,
// ask the generative service for running notes, extract the JSON result, save it.
// Package importer 将视频链接转换为笔记：获取字幕、请求生成、提取结果并保存
package importer

// State pipeline state
// State 流水线状态
type State int

const (
	Idle State = iota
	FetchingTranscript
	RequestingTransform
	ExtractingResult
	Persisting
	Done
	Failed
)

var stateNames = [...]string{
	Idle:                "Idle",
	FetchingTranscript:  "FetchingTranscript",
	RequestingTransform: "RequestingTransform",
	ExtractingResult:    "ExtractingResult",
	Persisting:          "Persisting",
	Done:                "Done",
	Failed:              "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal Done and Failed are absorbing
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// next returns the state following s on the success path
func (s State) next() State {
	switch s {
	case Idle:
		return FetchingTranscript
	case FetchingTranscript:
		return RequestingTransform
	case RequestingTransform:
		return ExtractingResult
	case ExtractingResult:
		return Persisting
	case Persisting:
		return Done
	}
	return s
}

// action describes the stage for failure messages
func (s State) action() string {
	switch s {
	case FetchingTranscript:
		return "fetching the transcript"
	case RequestingTransform:
		return "generating notes"
	case ExtractingResult:
		return "reading the generated notes"
	case Persisting:
		return "saving the note"
	}
	return "importing"
}
