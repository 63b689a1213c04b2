// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User    UserServiceConfig    // User related config // 用户相关配置
	Grammar GrammarServiceConfig // Grammar check config // 语法检查配置
	Import  ImportServiceConfig  // Import run config // 导入配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// GrammarServiceConfig 语法检查配置
type GrammarServiceConfig struct {
	Model string
}

// ImportServiceConfig 导入服务配置
type ImportServiceConfig struct {
	// RunRetention finished runs older than this are removed by the cleanup task
	RunRetention time.Duration
}
