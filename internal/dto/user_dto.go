package dto

import "github.com/haierkeys/fast-note-ai-service/pkg/timex"

// UserCreateRequest User registration request parameters
// 用户注册请求参数
type UserCreateRequest struct {
	Email           string `json:"email" form:"email" binding:"required,email"`               // User email // 用户邮件
	Username        string `json:"username" form:"username" binding:"required"`               // User name // 用户名
	Password        string `json:"password" form:"password" binding:"required,min=6"`         // User password // 用户密码
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword" binding:"required"` // Confirm password // 校验密码
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Credentials string `json:"credentials" form:"credentials" binding:"required"` // Username or Email // 登录凭证（用户名或邮件）
	Password    string `json:"password" form:"password" binding:"required"`       // Password // 密码
}

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`             // User ID // 用户唯一标识
	Email     string     `json:"email"`           // Email address // 邮件地址
	Username  string     `json:"username"`        // Username // 用户名
	Token     string     `json:"token,omitempty"` // Authentication Token // 认证 Token
	UpdatedAt timex.Time `json:"updatedAt"`       // Last updated time // 最后更新时间
	CreatedAt timex.Time `json:"createdAt"`       // Account created time // 账号创建时间
}
