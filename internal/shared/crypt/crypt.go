// Package crypt 密码哈希
//
// 明文密码只在请求内存中存在，入库前经 bcrypt 哈希。
package crypt

import "golang.org/x/crypto/bcrypt"

// HashPassword 使用 bcrypt 哈希密码
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	return string(bytes), err
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
