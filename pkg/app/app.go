// Package app 应用环境辅助函数
package app

import (
	"time"

	"payugw/pkg/config"
)

// IsLocal 是否本地开发环境
func IsLocal() bool {
	return config.Get("app.env") == "local"
}

// IsProduction 是否生产环境
func IsProduction() bool {
	return config.Get("app.env") == "production"
}

// IsTesting 是否测试环境
func IsTesting() bool {
	return config.Get("app.env") == "testing"
}

// TimenowInTimezone 按 app.timezone 配置返回当前时间
// 对账时间戳统一用网关时区，避免跨机房部署时记录错乱。
func TimenowInTimezone() time.Time {
	tz, _ := time.LoadLocation(config.GetString("app.timezone"))
	return time.Now().In(tz)
}
