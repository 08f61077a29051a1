// Package payu 支付网关对接的控制器
package payu

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"payugw/app/models/submitinfo"
	"payugw/app/repositories"
	"payugw/app/requests"
	payupkg "payugw/pkg/payu"
	"payugw/pkg/response"
)

// CheckoutController 发起支付。
// 生成 txnid、固化提交快照并计算出站摘要，
// 返回浏览器提交到远端网关所需的整套表单字段。
type CheckoutController struct {
	store        *repositories.PayuStore
	transactions *repositories.TransactionRepository
	users        *repositories.UserRepository
}

// NewCheckoutController 创建控制器
func NewCheckoutController() *CheckoutController {
	return &CheckoutController{
		store:        repositories.NewPayuStore(),
		transactions: repositories.NewTransactionRepository(),
		users:        repositories.NewUserRepository(),
	}
}

// Store 发起一次支付
// POST /v1/payu/checkout
func (cc *CheckoutController) Store(c *gin.Context) {
	req, err := requests.ValidatePayuCheckout(c)
	if err != nil {
		var verr requests.ValidationError
		if errors.As(err, &verr) {
			response.ValidationError(c, verr.Errors)
			return
		}
		response.BadRequest(c, err, "请求参数错误")
		return
	}

	ctx := c.Request.Context()

	prod, err := cc.store.Products.GetByItem(ctx, req.Component, req.PaymentArea, req.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "商品不存在")
			return
		}
		response.ServerError(c, err)
		return
	}

	u, err := cc.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort404(c, "用户不存在")
			return
		}
		response.ServerError(c, err)
		return
	}

	txn, err := cc.transactions.Create(ctx, u.ID, prod.TransactionPrefix)
	if err != nil {
		response.ServerError(c, err, "创建交易失败")
		return
	}

	surcharge, err := payupkg.Surcharge(prod.Amount, prod.SurchargePercent)
	if err != nil {
		response.ServerError(c, err, "计算附加费失败")
		return
	}

	// 固化提交快照，对账阶段逐项核对的基准
	snapshot := &submitinfo.SubmitInfo{
		Txnid:       txn.Txnid,
		Component:   req.Component,
		PaymentArea: req.PaymentArea,
		ItemID:      req.ItemID,
		Amount:      prod.Amount,
		ProductInfo: prod.Name,
		AccountID:   prod.AccountID,
	}
	if surcharge != "" {
		snapshot.AdditionalCharges = &surcharge
	}
	if err := cc.store.SubmitInfos.Create(ctx, snapshot); err != nil {
		response.ServerError(c, err, "保存提交快照失败")
		return
	}

	info, err := cc.store.GetSubmitInfo(ctx, txn.Txnid)
	if err != nil {
		response.ServerError(c, err)
		return
	}
	gw, err := cc.store.Resolve(ctx, info)
	if err != nil {
		response.ServerError(c, err)
		return
	}

	fields := payupkg.Fields{
		"txnid":       txn.Txnid,
		"amount":      prod.Amount,
		"productinfo": prod.Name,
		"firstname":   u.Firstname,
		"email":       u.Email,
	}
	if surcharge != "" {
		fields["additional_charges"] = surcharge
	}

	hash := payupkg.SubmissionHash(gw.RemoteKey, gw.RemoteSalt, fields)

	form := gin.H{
		"key":              gw.RemoteKey,
		"txnid":            txn.Txnid,
		"amount":           prod.Amount,
		"productinfo":      prod.Name,
		"firstname":        u.Firstname,
		"email":            u.Email,
		"phone":            u.Phone,
		"surl":             gw.SuccessURL,
		"furl":             gw.FailureURL,
		"curl":             gw.FailureURL,
		"service_provider": "payu_paisa",
		"hash":             hash,
	}
	if surcharge != "" {
		form["additional_charges"] = surcharge
	}

	response.Data(c, gin.H{
		"txnid":  txn.Txnid,
		"action": gw.PaymentURL(),
		"fields": form,
	})
}
