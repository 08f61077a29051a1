package payu

import (
	"context"
	"errors"
)

// Channel 通知到达的渠道
type Channel string

const (
	ChannelRedirectSuccess Channel = "redirect_success" // 浏览器成功回跳
	ChannelRedirectFailure Channel = "redirect_failure" // 浏览器失败回跳
	ChannelWebhook         Channel = "webhook"          // 服务器间回调
)

// Source 渠道对应的落库来源标记
func (c Channel) Source() string {
	if c == ChannelWebhook {
		return "webhook"
	}
	return "redirect"
}

// FailureCode 内部失败码，落库并对外展示
type FailureCode string

const (
	FailureNone           FailureCode = ""
	FailureHashMismatch   FailureCode = "001" // 摘要不匹配
	FailureChargeMismatch FailureCode = "002" // 金额不一致
	FailureVerifyFailed   FailureCode = "003" // 远端核验失败或不可达
	FailureDuplicate      FailureCode = "004" // 重复通知
)

// Message 失败码的展示文案
func (f FailureCode) Message() string {
	switch f {
	case FailureHashMismatch:
		return "Remote and local hashes do not match."
	case FailureChargeMismatch:
		return "Submitted amount and reported amount do not match."
	case FailureVerifyFailed:
		return "Cannot verify transaction at this time."
	case FailureDuplicate:
		return "Response from payment site already received."
	}
	return ""
}

// State 管线的终止状态
type State string

const (
	StateDelivered       State = "delivered"        // 发放完成
	StateDuplicate       State = "duplicate"        // 重复通知，按渠道语义收尾
	StateHashMismatch    State = "hash_mismatch"    // 摘要校验失败
	StateChargeMismatch  State = "charge_mismatch"  // 金额核对失败
	StateVerifyFailed    State = "verify_failed"    // 远端核验失败
	StateAlreadyEnrolled State = "already_enrolled" // 权益早已发放，幂等收尾
	StateReported        State = "reported"         // 已记录并上报（失败渠道 / webhook 非成功状态）
	StateFaulted         State = "faulted"          // 记录或发放环节捕获异常
)

// Result 管线的外部可见结果，由渠道策略填写。
// 重定向渠道关心 RedirectURL，webhook 渠道关心 HTTPStatus。
type Result struct {
	State       State
	FailureCode FailureCode
	Txnid       string
	RedirectURL string
	HTTPStatus  int
	Err         error // Faulted 时携带被捕获的异常
}

// SubmitInfo 提交快照的领域视图，由存储层取回
type SubmitInfo struct {
	ID                uint64
	Txnid             string
	Component         string
	PaymentArea       string
	ItemID            uint64
	Amount            string
	AdditionalCharges *string // 未收附加费时为 nil
	ProductInfo       string
	AccountID         uint64
}

// RecordState 按 txnid 查询已收通知的三态结果
type RecordState int

const (
	RecordNotFound RecordState = iota // 尚未收到
	RecordClean                       // 已收到且无内部失败标注
	RecordFlagged                     // 已收到且被标注失败码
)

// ReceivedInfo ReceivedCheck 环节的查询结果
type ReceivedInfo struct {
	Recorded    bool
	FromWebhook bool        // 已存在的记录是否来自 webhook
	State       RecordState // 失败回跳渠道使用的三态
}

// ErrAlreadyDelivered 发放时发现权益已发放（并发竞争中落败的一方）
var ErrAlreadyDelivered = errors.New("payu: order already delivered")

// Store 对账管线依赖的持久化操作
type Store interface {
	// GetSubmitInfo 按 txnid 取提交快照
	GetSubmitInfo(ctx context.Context, txnid string) (*SubmitInfo, error)
	// RecordResponse 落一行通知记录，返回行 ID
	RecordResponse(ctx context.Context, n *Notification, channel Channel, remoteAddr string) (uint64, error)
	// ReceivedByMihpayid 按远端支付号查重（webhook 渠道）
	ReceivedByMihpayid(ctx context.Context, mihpayid string) (ReceivedInfo, error)
	// ReceivedByTxnid 按 txnid 查重（重定向渠道），附带三态
	ReceivedByTxnid(ctx context.Context, txnid string) (ReceivedInfo, error)
	// AnnotateFailure 覆盖写失败标注（last write wins）
	AnnotateFailure(ctx context.Context, responseID uint64, code FailureCode) error
	// IsAlreadyDelivered Transaction 的 paymentID 是否非空
	IsAlreadyDelivered(ctx context.Context, txnid string) (bool, error)
}

// FieldPair 本地字段与远端核验报文字段的对应关系
type FieldPair struct {
	Local  string
	Remote string
}

// DefaultVerifyFields 默认核对的字段对
var DefaultVerifyFields = []FieldPair{
	{Local: "amount", Remote: "transaction_amount"},
	{Local: "additional_charges", Remote: "additional_charges"},
}

// VerifyResult 远端核验结论
type VerifyResult struct {
	Matched bool
	Detail  string // 诊断信息，不参与判定
}

// Verifier 远端核验
type Verifier interface {
	// Verify 对照本地记录的字段值发起远端核验。
	// local 里值为 nil 的字段跳过比较。传输失败一律 fail-closed。
	Verify(ctx context.Context, cfg *GatewayConfig, txnid string, responseID uint64,
		local map[string]*string, fields []FieldPair) VerifyResult
}

// Deliverer 权益发放
type Deliverer interface {
	// Deliver 计算应付金额、落支付流水、发放权益。
	// 已发放时返回 ErrAlreadyDelivered，调用方按幂等完成处理。
	// emitEvent 为 true 时发放成功后投递领域事件。
	Deliver(ctx context.Context, info *SubmitInfo, n *Notification, emitEvent bool) error
}

// ConfigResolver 按提交快照解析网关配置
type ConfigResolver interface {
	Resolve(ctx context.Context, info *SubmitInfo) (*GatewayConfig, error)
}
