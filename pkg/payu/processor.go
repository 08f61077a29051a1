package payu

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"payugw/pkg/logger"
)

// Processor 回传通知处理管线。
// 固定的校验序列对三个渠道完全一致，每个环节产出一个布尔结论，
// 交由当前渠道的 Policy 决定是否继续以及对外的收尾方式。
// 管线绝不越过已终止的环节。
type Processor struct {
	policy    Policy
	store     Store
	verifier  Verifier
	deliverer Deliverer
	resolver  ConfigResolver

	n          *Notification
	remoteAddr string
	info       *SubmitInfo
	cfg        *GatewayConfig
	responseID uint64
	result     Result
}

// NewProcessor 创建处理管线
func NewProcessor(policy Policy, store Store, verifier Verifier, deliverer Deliverer, resolver ConfigResolver) *Processor {
	return &Processor{
		policy:    policy,
		store:     store,
		verifier:  verifier,
		deliverer: deliverer,
		resolver:  resolver,
	}
}

// Policy 渠道策略：决定每个校验环节结论的后果。
// 返回 true 继续下一环节，返回 false 终止，终止时由策略填写 Result。
type Policy interface {
	Channel() Channel
	OnReceived(p *Processor, ri ReceivedInfo) bool
	OnRecorded(p *Processor, err error) bool
	OnEnrolled(p *Processor, enrolled bool) bool
	OnHashChecked(p *Processor, match bool) bool
	OnChargesChecked(p *Processor, equal bool) bool
	OnVerified(p *Processor, res VerifyResult) bool
	OnDelivered(p *Processor, err error) bool
}

// Process 执行管线，返回外部可见结果。
// 通知字段在请求边界解析完毕后传入，处理过程中不再读取请求。
func (p *Processor) Process(ctx context.Context, n *Notification, remoteAddr string) Result {
	p.n = n
	p.remoteAddr = remoteAddr
	p.result = Result{Txnid: n.Txnid}

	// 提交快照与网关配置贯穿所有环节，先行解析
	if err := p.loadContext(ctx); err != nil {
		p.fault(fmt.Errorf("load submit info for txnid %q: %w", n.Txnid, err))
		return p.result
	}

	if !p.receivedCheck(ctx) {
		return p.result
	}
	if !p.recordResponse(ctx) {
		return p.result
	}
	if !p.enrollmentCheck(ctx) {
		return p.result
	}
	if !p.hashCheck(ctx) {
		return p.result
	}
	if !p.chargeCheck(ctx) {
		return p.result
	}
	if !p.remoteVerifyCheck(ctx) {
		return p.result
	}
	p.deliver(ctx)
	return p.result
}

func (p *Processor) loadContext(ctx context.Context) error {
	info, err := p.store.GetSubmitInfo(ctx, p.n.Txnid)
	if err != nil {
		return err
	}
	cfg, err := p.resolver.Resolve(ctx, info)
	if err != nil {
		return err
	}
	p.info = info
	p.cfg = cfg
	return nil
}

// receivedCheck 查重。重定向渠道按 txnid，webhook 按远端支付号。
func (p *Processor) receivedCheck(ctx context.Context) bool {
	var (
		ri  ReceivedInfo
		err error
	)
	if p.policy.Channel() == ChannelWebhook {
		ri, err = p.store.ReceivedByMihpayid(ctx, p.n.Mihpayid)
	} else {
		ri, err = p.store.ReceivedByTxnid(ctx, p.n.Txnid)
	}
	if err != nil {
		p.fault(fmt.Errorf("received check: %w", err))
		return false
	}
	return p.policy.OnReceived(p, ri)
}

// recordResponse 落库。持久化异常被捕获后交给策略，不向上抛
func (p *Processor) recordResponse(ctx context.Context) bool {
	id, err := p.store.RecordResponse(ctx, p.n, p.policy.Channel(), p.remoteAddr)
	if err == nil {
		p.responseID = id
	}
	return p.policy.OnRecorded(p, err)
}

func (p *Processor) enrollmentCheck(ctx context.Context) bool {
	enrolled, err := p.store.IsAlreadyDelivered(ctx, p.n.Txnid)
	if err != nil {
		p.fault(fmt.Errorf("enrollment check: %w", err))
		return false
	}
	return p.policy.OnEnrolled(p, enrolled)
}

// hashCheck 用配置里的商户 key 重算反向摘要并与报文携带的比对。
// 报文里的 key 字段不可信，重算一律以配置为准。
func (p *Processor) hashCheck(ctx context.Context) bool {
	reverse := ReverseHash(p.cfg.RemoteKey, p.cfg.RemoteSalt, p.n.HashFields())
	match := reverse == p.n.Hash
	if !match {
		p.annotate(ctx, FailureHashMismatch)
	}
	return p.policy.OnHashChecked(p, match)
}

// chargeCheck 核对申报金额与附加费。
// 一侧为空另一侧非空同样判为不等。
func (p *Processor) chargeCheck(ctx context.Context) bool {
	submittedAC := ""
	if p.info.AdditionalCharges != nil {
		submittedAC = *p.info.AdditionalCharges
	}

	equal := AmountsEqual(p.info.Amount, p.n.Amount) &&
		AmountsEqual(submittedAC, p.n.AdditionalCharges)
	if !equal {
		p.annotate(ctx, FailureChargeMismatch)
	}
	return p.policy.OnChargesChecked(p, equal)
}

func (p *Processor) remoteVerifyCheck(ctx context.Context) bool {
	local := map[string]*string{
		"amount": &p.n.Amount,
	}
	if p.n.AdditionalCharges != "" {
		local["additional_charges"] = &p.n.AdditionalCharges
	} else {
		local["additional_charges"] = nil
	}

	res := p.verifier.Verify(ctx, p.cfg, p.n.Txnid, p.responseID, local, DefaultVerifyFields)
	if !res.Matched {
		p.annotate(ctx, FailureVerifyFailed)
	}
	return p.policy.OnVerified(p, res)
}

func (p *Processor) deliver(ctx context.Context) {
	emitEvent := p.policy.Channel() != ChannelRedirectFailure
	err := p.deliverer.Deliver(ctx, p.info, p.n, emitEvent)
	if errors.Is(err, ErrAlreadyDelivered) {
		// 并发竞争中落败的一方，幂等完成
		err = nil
	}
	p.policy.OnDelivered(p, err)
}

// annotate 覆盖写失败标注并记入结果。
// 标注失败只记日志，不掩盖本身的拒绝结论。
func (p *Processor) annotate(ctx context.Context, code FailureCode) {
	p.result.FailureCode = code
	if p.responseID == 0 {
		return
	}
	if err := p.store.AnnotateFailure(ctx, p.responseID, code); err != nil {
		logger.ErrorString("PayU", "AnnotateFailure",
			fmt.Sprintf("response %d code %s: %v", p.responseID, code, err))
	}
}

func (p *Processor) fault(err error) {
	p.result.State = StateFaulted
	p.result.Err = err
}

// failureRedirectURL 拼接失败回跳地址，带失败码与 txnid
func (p *Processor) failureRedirectURL(code FailureCode) string {
	return fmt.Sprintf("%s?failurecode=%s&response_txnid=%s",
		p.cfg.FailureURL, code, url.QueryEscape(p.n.Txnid))
}
