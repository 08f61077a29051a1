package payu

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"payugw/app/repositories"
	"payugw/pkg/logger"
	payupkg "payugw/pkg/payu"
	"payugw/pkg/queue"
	"payugw/pkg/response"
)

// WebhookController 服务器间回调入口。
// 来源不在白名单内的请求在落库之前就被拒绝，不产生任何写入。
type WebhookController struct {
	store  *repositories.PayuStore
	events *queue.QueueService
}

// NewWebhookController 创建控制器。events 可为 nil（测试）。
func NewWebhookController(events *queue.QueueService) *WebhookController {
	return &WebhookController{
		store:  repositories.NewPayuStore(),
		events: events,
	}
}

// Store 接收一条 webhook 投递
// POST /v1/payu/webhook
func (wc *WebhookController) Store(c *gin.Context) {
	n := parseNotification(c)
	if n.Txnid == "" {
		response.Abort400(c, "缺少 txnid")
		return
	}

	ctx := c.Request.Context()

	// 白名单校验要用网关配置，先按 txnid 解析
	info, err := wc.store.GetSubmitInfo(ctx, n.Txnid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "未知交易")
			return
		}
		response.ServerError(c, err)
		return
	}
	cfg, err := wc.store.Resolve(ctx, info)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	clientIP := c.ClientIP()
	if !cfg.AllowsWebhookFrom(clientIP) {
		logger.WarnString("PayU", "Webhook",
			"rejected source "+clientIP+" for txnid "+n.Txnid)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "来源地址不在白名单内",
		})
		return
	}

	var pusher repositories.EventPusher
	if wc.events != nil {
		pusher = wc.events
	}
	processor := payupkg.NewProcessor(
		payupkg.NewPolicy(payupkg.ChannelWebhook),
		wc.store,
		payupkg.NewRemoteVerifier(wc.store),
		repositories.NewOrderDeliverer(pusher),
		wc.store,
	)

	result := processor.Process(ctx, n, clientIP)

	status := result.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if result.Err != nil {
		logger.ErrorString("PayU", "Webhook", result.Err.Error())
	}

	c.JSON(status, gin.H{
		"status": string(result.State),
		"txnid":  result.Txnid,
	})
}
