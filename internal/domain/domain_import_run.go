package domain

import "time"

// ImportRun one execution of the import pipeline, recorded for history
// ImportRun 一次导入流水线执行记录
type ImportRun struct {
	ID        string
	UID       int64
	SourceURL string
	VideoID   string
	// State final pipeline state, Done or Failed; the in-progress state while running
	State string
	// ErrorKind empty unless State is Failed
	ErrorKind string
	Message   string
	NoteID    string
	StartedAt time.Time
	// FinishedAt nil while the run is in flight
	FinishedAt *time.Time
}

// IsFinished 是否已结束
func (r *ImportRun) IsFinished() bool {
	return r.FinishedAt != nil
}
