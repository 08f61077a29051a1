// Package config 站点配置信息
package config

// Initialize 触发本包下各配置文件的 init 注册。
// main 里空引用本包即可完成全部配置项加载。
func Initialize() {
}
