package util

import (
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 10

// GeneratePasswordHash returns the bcrypt hash of password
// GeneratePasswordHash 生成密码的 bcrypt 哈希
func GeneratePasswordHash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	return string(bytes), err
}

// CheckPasswordHash reports whether password matches hash
// CheckPasswordHash 校验密码与哈希是否匹配
func CheckPasswordHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
