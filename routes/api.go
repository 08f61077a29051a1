package routes

import (
	"github.com/gin-gonic/gin"

	"payugw/app/http/controllers/api/v1/payu"
	"payugw/app/http/middlewares"
	"payugw/pkg/queue"
)

// 路由限流配置
const (
	// 全局限流：每小时每 IP 30000 请求
	GlobalRateLimit = "30000-H"
	// 发起支付限流：每小时每 IP 100 请求
	CheckoutLimit = "100-H"
	// 回跳与 webhook 限流：每分钟每 IP 300 请求
	NotifyLimit = "300-M"
)

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, events *queue.QueueService) {
	v1 := r.Group("/v1")

	v1.Use(
		middlewares.SecurityHeaders(),
		middlewares.LimitIP(GlobalRateLimit),
		middlewares.Cors(),
	)

	payuRoutes := v1.Group("/payu")
	{
		cc := payu.NewCheckoutController()
		rc := payu.NewRedirectController(events)
		wc := payu.NewWebhookController(events)

		// 发起支付，返回提交到远端网关的表单字段
		// POST /v1/payu/checkout
		payuRoutes.POST("/checkout",
			middlewares.LimitPerRoute(CheckoutLimit),
			cc.Store,
		)

		// 浏览器成功回跳，网关用 GET 或 POST 均有可能
		payuRoutes.GET("/return/success",
			middlewares.LimitPerRoute(NotifyLimit),
			rc.Success,
		)
		payuRoutes.POST("/return/success",
			middlewares.LimitPerRoute(NotifyLimit),
			rc.Success,
		)

		// 浏览器失败回跳与本地失败报告
		payuRoutes.GET("/return/failure",
			middlewares.LimitPerRoute(NotifyLimit),
			rc.Failure,
		)
		payuRoutes.POST("/return/failure",
			middlewares.LimitPerRoute(NotifyLimit),
			rc.Failure,
		)

		// 服务器间回调
		payuRoutes.POST("/webhook",
			middlewares.LimitPerRoute(NotifyLimit),
			wc.Store,
		)
	}
}
