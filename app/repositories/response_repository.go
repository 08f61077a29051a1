package repositories

import (
	"context"

	"gorm.io/gorm"

	"payugw/app/models/gatewayresponse"
	"payugw/pkg/app"
	"payugw/pkg/database"
	"payugw/pkg/payu"
)

// ResponseRepository 网关回执仓库
type ResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository 创建仓库实例
func NewResponseRepository() *ResponseRepository {
	return &ResponseRepository{
		db: database.DB,
	}
}

// Record 落库一条网关回执，返回行号。
// mihpayid 列带唯一索引，重复写入由上层先查重拦截。
func (r *ResponseRepository) Record(ctx context.Context, n *payu.Notification, channel payu.Channel, remoteAddr string) (uint64, error) {
	var mihpayid *string
	if n.Mihpayid != "" {
		mihpayid = &n.Mihpayid
	}
	var charges *string
	if n.AdditionalCharges != "" {
		charges = &n.AdditionalCharges
	}

	resp := gatewayresponse.Response{
		Mihpayid:          mihpayid,
		Txnid:             n.Txnid,
		Mode:              n.Mode,
		Status:            n.Status,
		UnmappedStatus:    n.UnmappedStatus,
		PayuKey:           n.Key,
		Amount:            n.Amount,
		Discount:          n.Discount,
		NetAmountDebit:    n.NetAmountDebit,
		AddedOn:           n.AddedOn,
		ProductInfo:       n.ProductInfo,
		Firstname:         n.Firstname,
		Lastname:          n.Lastname,
		Address1:          n.Address1,
		Address2:          n.Address2,
		City:              n.City,
		State:             n.State,
		Country:           n.Country,
		Zipcode:           n.Zipcode,
		Email:             n.Email,
		Phone:             n.Phone,
		Hash:              n.Hash,
		PaymentSource:     n.PaymentSource,
		PGType:            n.PGType,
		BankRefNum:        n.BankRefNum,
		Bankcode:          n.Bankcode,
		ErrorCode:         n.Error,
		ErrorMessage:      n.ErrorMessage,
		AdditionalCharges: charges,
		UDF:               n.JoinedUDF(),
		Field:             n.JoinedField(),
		Source:            gatewayresponse.Source(channel.Source()),
		RemoteAddr:        remoteAddr,
		ReceivedAt:        app.TimenowInTimezone(),
	}

	if err := r.db.WithContext(ctx).Create(&resp).Error; err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// ReceivedByMihpayid 按网关支付号查重，webhook 通道用
func (r *ResponseRepository) ReceivedByMihpayid(ctx context.Context, mihpayid string) (payu.ReceivedInfo, error) {
	var resp gatewayresponse.Response
	err := r.db.WithContext(ctx).
		Where("mihpayid = ?", mihpayid).
		First(&resp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return payu.ReceivedInfo{}, nil
		}
		return payu.ReceivedInfo{}, err
	}
	return receivedInfo(&resp), nil
}

// ReceivedByTxnid 按 txnid 查重，跳转通道用。
// 同一 txnid 可能有多条回执（跳转 + webhook），取最新一条判定来源。
func (r *ResponseRepository) ReceivedByTxnid(ctx context.Context, txnid string) (payu.ReceivedInfo, error) {
	var resp gatewayresponse.Response
	err := r.db.WithContext(ctx).
		Where("txnid = ?", txnid).
		Order("id DESC").
		First(&resp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return payu.ReceivedInfo{}, nil
		}
		return payu.ReceivedInfo{}, err
	}
	return receivedInfo(&resp), nil
}

// AnnotateFailure 给回执打失败标注，后写覆盖先写
func (r *ResponseRepository) AnnotateFailure(ctx context.Context, responseID uint64, code payu.FailureCode) error {
	codeStr := string(code)
	msg := code.Message()
	return r.db.WithContext(ctx).
		Model(&gatewayresponse.Response{}).
		Where("id = ?", responseID).
		Updates(map[string]interface{}{
			"failure_code":    &codeStr,
			"failure_message": msg,
		}).Error
}

// LogVerify 记录一次 verify_payment 审计流水
func (r *ResponseRepository) LogVerify(ctx context.Context, responseID uint64, txnid, resultCode, payload string) error {
	entry := gatewayresponse.VerifyLog{
		ResponseID: responseID,
		Txnid:      txnid,
		ResultCode: resultCode,
		Payload:    payload,
		CreatedAt:  app.TimenowInTimezone(),
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

func receivedInfo(resp *gatewayresponse.Response) payu.ReceivedInfo {
	state := payu.RecordClean
	if resp.IsFlagged() {
		state = payu.RecordFlagged
	}
	return payu.ReceivedInfo{
		Recorded:    true,
		FromWebhook: resp.Source == gatewayresponse.SourceWebhook,
		State:       state,
	}
}
