// Package diff compares an original text with its grammar-corrected version
// Package diff 对比原文与语法修正后的文本
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op segment operation
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Segment one run of equal, inserted or deleted text
// Segment 一段相同、插入或删除的文本
type Segment struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Stats changed character counts in runes
type Stats struct {
	Inserted int `json:"inserted"`
	Deleted  int `json:"deleted"`
}

// Segments diffs original against corrected, cleaned up for human reading
// Segments 计算差异并做语义清理，便于阅读
func Segments(original, corrected string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, corrected, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		segments = append(segments, Segment{Op: opOf(d.Type), Text: d.Text})
	}
	return segments
}

func opOf(t diffmatchpatch.Operation) Op {
	switch t {
	case diffmatchpatch.DiffInsert:
		return OpInsert
	case diffmatchpatch.DiffDelete:
		return OpDelete
	}
	return OpEqual
}

// Original rebuilds the original text from segments
func Original(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Op != OpInsert {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Corrected rebuilds the corrected text from segments
func Corrected(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Op != OpDelete {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Count 统计插入与删除的字符数
func Count(segments []Segment) Stats {
	var st Stats
	for _, s := range segments {
		switch s.Op {
		case OpInsert:
			st.Inserted += len([]rune(s.Text))
		case OpDelete:
			st.Deleted += len([]rune(s.Text))
		}
	}
	return st
}
