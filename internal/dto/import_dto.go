package dto

import "github.com/haierkeys/fast-note-ai-service/pkg/timex"

// NoteImportRequest 视频导入请求参数
type NoteImportRequest struct {
	URL string `json:"url" form:"url" binding:"required,max=2048"`
}

// NoteImportDTO 导入成功结果
type NoteImportDTO struct {
	RunID   string   `json:"runId"`
	NoteID  string   `json:"noteId"`
	VideoID string   `json:"videoId"`
	Note    *NoteDTO `json:"note,omitempty"`
}

// ImportRunDTO 导入记录
type ImportRunDTO struct {
	ID         string     `json:"id"`
	SourceURL  string     `json:"sourceUrl"`
	VideoID    string     `json:"videoId"`
	State      string     `json:"state"`
	ErrorKind  string     `json:"errorKind,omitempty"`
	Message    string     `json:"message,omitempty"`
	NoteID     string     `json:"noteId,omitempty"`
	StartedAt  timex.Time `json:"startedAt"`
	FinishedAt timex.Time `json:"finishedAt"`
}

// ExportDTO 导出结果
type ExportDTO struct {
	Storage   string `json:"storage"`
	Path      string `json:"path"`
	NoteCount int    `json:"noteCount"`
}
