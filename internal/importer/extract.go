package importer

import (
	"errors"
	"strings"

	"github.com/bytedance/sonic"
)

// Result structured generation result
// Result 生成结果
type Result struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// Extract reads the JSON object spanning the first '{' to the last '}' of raw,
// tolerating prose or code fences around it.
// Extract 截取首个 '{' 到最后一个 '}' 之间的 JSON 并解析
func Extract(raw string) (Result, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || end < start {
		return Result{}, newError(KindNoJSONFound, nil)
	}

	var res Result
	if err := sonic.UnmarshalString(raw[start:end+1], &res); err != nil {
		return Result{}, newError(KindMalformedJSON, err)
	}

	if strings.TrimSpace(res.Title) == "" {
		return Result{}, newError(KindIncompleteResult, errors.New("title is empty"))
	}
	if strings.TrimSpace(res.Notes) == "" {
		return Result{}, newError(KindIncompleteResult, errors.New("notes are empty"))
	}
	return res, nil
}
