package payu

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payugw/app/repositories"
	"payugw/pkg/config"
	"payugw/pkg/logger"
	payupkg "payugw/pkg/payu"
	"payugw/pkg/queue"
	"payugw/pkg/response"
)

// RedirectController 浏览器回跳入口。
// 成功回跳走完整对账管线，失败回跳只落库并生成交易报告。
type RedirectController struct {
	store  *repositories.PayuStore
	events *queue.QueueService
}

// NewRedirectController 创建控制器。events 可为 nil（测试）。
func NewRedirectController(events *queue.QueueService) *RedirectController {
	return &RedirectController{
		store:  repositories.NewPayuStore(),
		events: events,
	}
}

func (rc *RedirectController) newProcessor(channel payupkg.Channel) *payupkg.Processor {
	var pusher repositories.EventPusher
	if rc.events != nil {
		pusher = rc.events
	}
	return payupkg.NewProcessor(
		payupkg.NewPolicy(channel),
		rc.store,
		payupkg.NewRemoteVerifier(rc.store),
		repositories.NewOrderDeliverer(pusher),
		rc.store,
	)
}

// Success 成功回跳
// GET|POST /v1/payu/return/success
func (rc *RedirectController) Success(c *gin.Context) {
	n := parseNotification(c)

	result := rc.newProcessor(payupkg.ChannelRedirectSuccess).
		Process(c.Request.Context(), n, c.ClientIP())

	if result.State == payupkg.StateFaulted {
		logger.ErrorString("PayU", "ReturnSuccess", result.Err.Error())
		response.Abort500(c, "处理支付结果失败")
		return
	}

	if result.RedirectURL != "" {
		// 网关用 POST 回跳，303 让浏览器转成 GET
		c.Redirect(http.StatusSeeOther, result.RedirectURL)
		return
	}
	response.Data(c, gin.H{"state": string(result.State), "txnid": result.Txnid})
}

// Failure 失败回跳与本地失败报告
// GET|POST /v1/payu/return/failure
func (rc *RedirectController) Failure(c *gin.Context) {
	n := parseNotification(c)

	// 拒绝处理后的本地跳转只带 failurecode，没有网关报文
	if n.Txnid == "" {
		rc.localReport(c)
		return
	}

	result := rc.newProcessor(payupkg.ChannelRedirectFailure).
		Process(c.Request.Context(), n, c.ClientIP())

	if result.State == payupkg.StateFaulted {
		logger.ErrorString("PayU", "ReturnFailure", result.Err.Error())
		response.Abort500(c, "处理支付结果失败")
		return
	}

	// 远端报告的错误原样进入报告
	message := n.ErrorMessage
	if message == "" {
		message = n.Error
	}
	if result.FailureCode != payupkg.FailureNone {
		message = result.FailureCode.Message()
	}

	response.JSON(c, gin.H{
		"status":       "failure",
		"state":        string(result.State),
		"txnid":        result.Txnid,
		"message":      message,
		"continue_url": rc.continueURL(c, n.Txnid),
	})
}

// localReport 渲染本地拒绝后的交易报告，不经过管线
func (rc *RedirectController) localReport(c *gin.Context) {
	code := payupkg.FailureCode(c.Query("failurecode"))
	message := code.Message()
	if message == "" {
		response.Abort400(c, "缺少失败码")
		return
	}

	txnid := c.Query("response_txnid")
	response.JSON(c, gin.H{
		"status":       "failure",
		"failure_code": string(code),
		"txnid":        txnid,
		"message":      message,
		"continue_url": rc.continueURL(c, txnid),
	})
}

// continueURL 报告页"继续"按钮的去向：商品列表页，查不到时回站点首页
func (rc *RedirectController) continueURL(c *gin.Context, txnid string) string {
	fallback := config.GetString("app.url")
	if txnid == "" {
		return fallback
	}

	ctx := c.Request.Context()
	info, err := rc.store.GetSubmitInfo(ctx, txnid)
	if err != nil {
		return fallback
	}
	prod, err := rc.store.Products.GetByItem(ctx, info.Component, info.PaymentArea, info.ItemID)
	if err != nil || prod.ListingURL == "" {
		return fallback
	}
	return prod.ListingURL
}

// parseNotification 统一解析 GET 查询串与 POST 表单
func parseNotification(c *gin.Context) *payupkg.Notification {
	if err := c.Request.ParseForm(); err != nil {
		logger.ErrorString("PayU", "ParseForm", err.Error())
	}
	return payupkg.ParseNotification(c.Request.Form)
}
