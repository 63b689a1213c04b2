package util

import "unicode/utf16"

// StringHash32 computes hash = code + ((hash << 5) - hash) over the UTF-16
// code units of s, matching JavaScript number semantics: the shift truncates
// to int32 while the subtraction and addition do not.
// StringHash32 以 JavaScript 语义计算字符串哈希
func StringHash32(s string) int64 {
	var hash int64
	for _, unit := range utf16.Encode([]rune(s)) {
		shifted := int64(int32(uint32(int32(hash)) << 5))
		hash = int64(unit) + (shifted - hash)
	}
	return hash
}

// HashIndex maps s onto [0, n) with StringHash32
// HashIndex 使用 StringHash32 将字符串映射到 [0, n)
func HashIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	h := StringHash32(s)
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
