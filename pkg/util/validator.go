package util

import (
	"regexp"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

// IsValidEmail reports whether email looks like an address
// IsValidEmail 验证邮箱格式
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidUsername accepts letters, digits and underscores, 3-20 long
// IsValidUsername 用户名格式：字母、数字、下划线，长度 3-20
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}
