package logger

// Shared log field names
// 统一的日志字段命名常量，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldRunID 导入任务 ID 字段
	FieldRunID = "runId"

	// FieldVideoID 视频 ID 字段
	FieldVideoID = "videoId"

	// FieldSourceURL 来源链接字段
	FieldSourceURL = "sourceUrl"

	// FieldState 状态机状态字段
	FieldState = "state"

	// FieldStage 流水线阶段字段
	FieldStage = "stage"

	// FieldKind 错误类别字段
	FieldKind = "kind"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldStorage 存储类型字段
	FieldStorage = "storage"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
