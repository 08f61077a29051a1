package gatewayresponse

// Source 通知来源渠道
type Source string

const (
	SourceRedirect Source = "redirect" // 浏览器重定向
	SourceWebhook  Source = "webhook"  // 服务器间回调
)

// 远端报告的支付状态
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusPending = "pending"
)
