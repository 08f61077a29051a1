package config

import "payugw/pkg/config"

func init() {
	config.Add("payu", func() map[string]interface{} {
		return map[string]interface{}{
			// 浏览器回跳地址，留空时用 app.url 拼默认路径
			"success_url": config.Env("PAYU_SUCCESS_URL", ""),
			"failure_url": config.Env("PAYU_FAILURE_URL", ""),

			// verify_payment 出站调用超时（秒）
			"verify_timeout": config.Env("PAYU_VERIFY_TIMEOUT", 10),
		}
	})
}
