package domain

import (
	"errors"
	"strings"
)

// ErrInvalidAddress 地址无法解析为用户 ID
var ErrInvalidAddress = errors.New("invalid address")

// UserIDFromAddress 把邮箱地址解析为用户 ID：取 @ 前的本地部分并小写，
// 没有 @ 的输入视为已经是用户 ID。用户 ID 同时是存储目录名，
// 会逃出目录的值一律拒绝。
func UserIDFromAddress(addr string) (string, error) {
	addr = strings.TrimSpace(strings.ToLower(addr))
	local := addr
	if at := strings.Index(addr, "@"); at >= 0 {
		if at == 0 || at == len(addr)-1 {
			return "", ErrInvalidAddress
		}
		local = addr[:at]
	}
	if local == "" || strings.ContainsAny(local, "/\\") || strings.Contains(local, "..") {
		return "", ErrInvalidAddress
	}
	return local, nil
}

// UserInfo 用户账户信息（保存在 info.json，密码为 bcrypt 哈希）。
type UserInfo struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	PhoneNumber string   `json:"phoneNumber"`
	BirthDate   string   `json:"birthDate"`
	Extra       InfoPlus `json:"infoPlus"`
}

// InfoPlus 账户之外的扩展资料
type InfoPlus struct {
	JobTitle     string `json:"jobTitle"`
	Phone        string `json:"phone"`
	Bio          string `json:"bio"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}
