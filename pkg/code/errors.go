package code

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	Failed                    = NewError(0, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal       = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFoundAPI          = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorInvalidParams        = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests      = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorNotUserAuthToken     = NewError(401, lang{en: "Missing user auth token", zh_cn: "缺少用户认证 Token"})
	ErrorInvalidUserAuthToken = NewError(402, lang{en: "Invalid user auth token", zh_cn: "无效的用户认证 Token"})

	// user
	ErrorUserRegisterIsDisable   = NewError(1001, lang{en: "User registration is disabled", zh_cn: "用户注册已关闭"})
	ErrorUserAlreadyExists       = NewError(1002, lang{en: "User already exists", zh_cn: "用户已存在"})
	ErrorUserEmailAlreadyExists  = NewError(1003, lang{en: "Email already registered", zh_cn: "邮箱已被注册"})
	ErrorUserNotFound            = NewError(1004, lang{en: "User not found", zh_cn: "用户不存在"})
	ErrorUserLoginPasswordFailed = NewError(1005, lang{en: "Wrong username or password", zh_cn: "用户名或密码错误"})
	ErrorUserPasswordNotMatch    = NewError(1006, lang{en: "Passwords do not match", zh_cn: "两次密码不一致"})
	ErrorUserUsernameNotValid    = NewError(1007, lang{en: "Username must be 3-20 letters, digits or underscores", zh_cn: "用户名须为 3-20 位字母、数字或下划线"})
	ErrorUserRegister            = NewError(1008, lang{en: "User registration failed", zh_cn: "用户注册失败"})
	ErrorTokenGenerate           = NewError(1009, lang{en: "Token generation failed", zh_cn: "Token 生成失败"})

	// note
	ErrorNoteNotFound              = NewError(2001, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteTitleRequired         = NewError(2002, lang{en: "Note title cannot be empty", zh_cn: "笔记标题不能为空"})
	ErrorNoteDescriptionRequired   = NewError(2003, lang{en: "Note description cannot be empty", zh_cn: "笔记内容不能为空"})
	ErrorNoteGetFailed             = NewError(2004, lang{en: "Failed to get note", zh_cn: "获取笔记失败"})
	ErrorNoteListFailed            = NewError(2005, lang{en: "Failed to list notes", zh_cn: "获取笔记列表失败"})
	ErrorNoteSaveFailed            = NewError(2006, lang{en: "Failed to save note", zh_cn: "保存笔记失败"})
	ErrorNoteDeleteFailed          = NewError(2007, lang{en: "Failed to delete note", zh_cn: "删除笔记失败"})
	ErrorGrammarCheckFailed        = NewError(2008, lang{en: "Grammar check failed", zh_cn: "语法检查失败"})
	ErrorGrammarCheckNotConfigured = NewError(2009, lang{en: "Grammar check is not configured", zh_cn: "语法检查未配置"})
	ErrorNoteExportFailed          = NewError(2010, lang{en: "Note export failed", zh_cn: "笔记导出失败"})
	ErrorNoteExportNotConfigured   = NewError(2011, lang{en: "Note export is not configured", zh_cn: "笔记导出未配置"})
	ErrorInvalidStorageType        = NewError(2012, lang{en: "Invalid storage type", zh_cn: "无效的存储类型"})

	// import
	ErrorImportInFlight              = NewError(3001, lang{en: "An import is already running", zh_cn: "已有导入任务正在进行"})
	ErrorImportInvalidSourceURL      = NewError(3002, lang{en: "Unsupported video URL", zh_cn: "不支持的视频链接"})
	ErrorImportTranscriptUnavailable = NewError(3003, lang{en: "Transcript unavailable", zh_cn: "无法获取字幕"})
	ErrorImportEmptyTranscript       = NewError(3004, lang{en: "Transcript is empty", zh_cn: "字幕内容为空"})
	ErrorImportGenerationFailed      = NewError(3005, lang{en: "Note generation failed", zh_cn: "笔记生成失败"})
	ErrorImportNoJSONFound           = NewError(3006, lang{en: "No JSON found in model response", zh_cn: "模型响应中未找到 JSON"})
	ErrorImportMalformedJSON         = NewError(3007, lang{en: "Model response JSON is malformed", zh_cn: "模型响应 JSON 格式错误"})
	ErrorImportIncompleteResult      = NewError(3008, lang{en: "Model response is missing title or notes", zh_cn: "模型响应缺少标题或笔记"})
	ErrorImportPersistence           = NewError(3009, lang{en: "Failed to save imported note", zh_cn: "保存导入笔记失败"})
	ErrorImportNotConfigured         = NewError(3010, lang{en: "Import is not configured", zh_cn: "导入功能未配置"})
	ErrorImportRunListFailed         = NewError(3011, lang{en: "Failed to list import runs", zh_cn: "获取导入记录失败"})
	ErrorImportBusy                  = NewError(3012, lang{en: "Import queue is full, try again later", zh_cn: "导入队列已满，请稍后重试"})
)
