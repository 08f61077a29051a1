package payu

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cast"

	"payugw/pkg/config"
)

// VerifyLogger 核验审计落库。每次出站调用无论成败都留痕，
// 管线不会回读这些记录。
type VerifyLogger interface {
	LogVerify(ctx context.Context, responseID uint64, txnid, resultCode, payload string) error
}

// RemoteVerifier 调用远端网关的 verify_payment 接口做独立核验。
// 任何传输层失败都按核验失败处理（fail-closed），
// 不同步重试，重试责任在通知的发送方。
type RemoteVerifier struct {
	client *resty.Client
	logs   VerifyLogger
}

// NewRemoteVerifier 创建核验客户端，超时可通过 payu.verify_timeout 配置（秒）
func NewRemoteVerifier(logs VerifyLogger) *RemoteVerifier {
	timeout := time.Duration(config.GetInt("payu.verify_timeout", 10)) * time.Second

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &RemoteVerifier{
		client: client,
		logs:   logs,
	}
}

// verifyEnvelope 核验接口的响应报文
type verifyEnvelope struct {
	Status             int                               `json:"status"`
	Msg                string                            `json:"msg"`
	TransactionDetails map[string]map[string]interface{} `json:"transaction_details"`
}

// Verify 发起签名核验请求并逐字段核对。
// local 中值为 nil 的字段跳过；任一不等立即终止比较并判不匹配。
func (v *RemoteVerifier) Verify(ctx context.Context, cfg *GatewayConfig, txnid string, responseID uint64,
	local map[string]*string, fields []FieldPair) VerifyResult {

	hash := VerifyRequestHash(cfg.RemoteKey, cfg.RemoteSalt, txnid)

	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":     cfg.RemoteKey,
			"command": verifyCommand,
			"var1":    txnid,
			"hash":    hash,
		}).
		Post(cfg.VerifyURL())

	if err != nil {
		// 远端不可达、超时、网络故障等，记录后按失败收尾
		detail := fmt.Sprintf("transport error: %v", err)
		v.log(ctx, responseID, txnid, "transport error, no site access", detail)
		return VerifyResult{Matched: false, Detail: detail}
	}

	body := resp.Body()
	v.log(ctx, responseID, txnid, "get remote data OK", string(body))

	var envelope verifyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return VerifyResult{Matched: false, Detail: fmt.Sprintf("bad verify payload: %v", err)}
	}

	details, ok := envelope.TransactionDetails[txnid]
	if !ok {
		return VerifyResult{Matched: false, Detail: "txnid missing from transaction details"}
	}

	for _, pair := range fields {
		localValue, exists := local[pair.Local]
		if !exists || localValue == nil {
			continue
		}
		remoteValue := cast.ToString(details[pair.Remote])
		if !AmountsEqual(*localValue, remoteValue) {
			return VerifyResult{
				Matched: false,
				Detail:  fmt.Sprintf("field %s mismatch: local %q remote %q", pair.Local, *localValue, remoteValue),
			}
		}
	}

	return VerifyResult{Matched: true, Detail: "verified"}
}

func (v *RemoteVerifier) log(ctx context.Context, responseID uint64, txnid, code, payload string) {
	if v.logs == nil {
		return
	}
	// 审计失败不影响核验结论
	_ = v.logs.LogVerify(ctx, responseID, txnid, code, payload)
}
