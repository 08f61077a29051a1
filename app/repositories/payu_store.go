package repositories

import (
	"context"

	"payugw/pkg/config"
	"payugw/pkg/payu"
)

// PayuStore 聚合各仓库，实现对账管线的持久化与配置解析依赖
type PayuStore struct {
	Transactions *TransactionRepository
	Responses    *ResponseRepository
	SubmitInfos  *SubmitInfoRepository
	Products     *ProductRepository
}

// NewPayuStore 创建聚合存储
func NewPayuStore() *PayuStore {
	return &PayuStore{
		Transactions: NewTransactionRepository(),
		Responses:    NewResponseRepository(),
		SubmitInfos:  NewSubmitInfoRepository(),
		Products:     NewProductRepository(),
	}
}

// GetSubmitInfo 按 txnid 取提交快照
func (s *PayuStore) GetSubmitInfo(ctx context.Context, txnid string) (*payu.SubmitInfo, error) {
	return s.SubmitInfos.GetByTxnid(ctx, txnid)
}

// RecordResponse 落一行通知记录
func (s *PayuStore) RecordResponse(ctx context.Context, n *payu.Notification, channel payu.Channel, remoteAddr string) (uint64, error) {
	return s.Responses.Record(ctx, n, channel, remoteAddr)
}

// ReceivedByMihpayid 按远端支付号查重
func (s *PayuStore) ReceivedByMihpayid(ctx context.Context, mihpayid string) (payu.ReceivedInfo, error) {
	return s.Responses.ReceivedByMihpayid(ctx, mihpayid)
}

// ReceivedByTxnid 按 txnid 查重
func (s *PayuStore) ReceivedByTxnid(ctx context.Context, txnid string) (payu.ReceivedInfo, error) {
	return s.Responses.ReceivedByTxnid(ctx, txnid)
}

// AnnotateFailure 覆盖写失败标注
func (s *PayuStore) AnnotateFailure(ctx context.Context, responseID uint64, code payu.FailureCode) error {
	return s.Responses.AnnotateFailure(ctx, responseID, code)
}

// IsAlreadyDelivered 权益是否已发放
func (s *PayuStore) IsAlreadyDelivered(ctx context.Context, txnid string) (bool, error) {
	return s.Transactions.IsDelivered(ctx, txnid)
}

// LogVerify 记录核验审计流水
func (s *PayuStore) LogVerify(ctx context.Context, responseID uint64, txnid, resultCode, payload string) error {
	return s.Responses.LogVerify(ctx, responseID, txnid, resultCode, payload)
}

// Resolve 按提交快照解析当前请求用的网关配置
func (s *PayuStore) Resolve(ctx context.Context, info *payu.SubmitInfo) (*payu.GatewayConfig, error) {
	prod, err := s.Products.GetByItem(ctx, info.Component, info.PaymentArea, info.ItemID)
	if err != nil {
		return nil, err
	}

	base := config.GetString("app.url")
	successURL := config.GetString("payu.success_url", base+"/v1/payu/return/success")
	failureURL := config.GetString("payu.failure_url", base+"/v1/payu/return/failure")

	return payu.NewGatewayConfig(Settings(prod), successURL, failureURL), nil
}
