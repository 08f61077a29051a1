package payu

import "net/http"

// 三个渠道的策略实现。环节逻辑本身渠道无关（见 processor.go），
// 这里只决定各环节结论的后果：继续、终止、以及终止时对外的表现
// （HTTP 状态码或浏览器跳转目标）。

// NewPolicy 按渠道取策略
func NewPolicy(channel Channel) Policy {
	switch channel {
	case ChannelRedirectFailure:
		return &redirectFailurePolicy{}
	case ChannelWebhook:
		return &webhookPolicy{}
	default:
		return &redirectSuccessPolicy{}
	}
}

// ---------------- 成功回跳 ----------------

type redirectSuccessPolicy struct{}

func (*redirectSuccessPolicy) Channel() Channel { return ChannelRedirectSuccess }

func (*redirectSuccessPolicy) OnReceived(p *Processor, ri ReceivedInfo) bool {
	if !ri.Recorded {
		return true
	}
	if ri.FromWebhook {
		// webhook 已经合法入账，直接带用户去交付确认页
		p.result.State = StateAlreadyEnrolled
		p.result.RedirectURL = p.cfg.SuccessURL
		return false
	}
	// 此前的记录来自重定向：用户刷新或重复提交
	p.result.State = StateDuplicate
	p.result.FailureCode = FailureDuplicate
	p.result.RedirectURL = p.failureRedirectURL(FailureDuplicate)
	return false
}

func (*redirectSuccessPolicy) OnRecorded(p *Processor, err error) bool {
	if err != nil {
		p.fault(err)
		return false
	}
	return true
}

func (*redirectSuccessPolicy) OnEnrolled(p *Processor, enrolled bool) bool {
	if enrolled {
		// 幂等完成，不标失败码
		p.result.State = StateAlreadyEnrolled
		p.result.RedirectURL = p.cfg.SuccessURL
		return false
	}
	return true
}

func (*redirectSuccessPolicy) OnHashChecked(p *Processor, match bool) bool {
	if !match {
		p.result.State = StateHashMismatch
		p.result.RedirectURL = p.failureRedirectURL(FailureHashMismatch)
		return false
	}
	return true
}

func (*redirectSuccessPolicy) OnChargesChecked(p *Processor, equal bool) bool {
	if !equal {
		p.result.State = StateChargeMismatch
		p.result.RedirectURL = p.failureRedirectURL(FailureChargeMismatch)
		return false
	}
	return true
}

func (*redirectSuccessPolicy) OnVerified(p *Processor, res VerifyResult) bool {
	if !res.Matched {
		p.result.State = StateVerifyFailed
		p.result.RedirectURL = p.failureRedirectURL(FailureVerifyFailed)
		return false
	}
	return true
}

func (*redirectSuccessPolicy) OnDelivered(p *Processor, err error) bool {
	if err != nil {
		p.fault(err)
		return false
	}
	p.result.State = StateDelivered
	p.result.RedirectURL = p.cfg.SuccessURL
	return true
}

// ---------------- 失败回跳 ----------------

// 远端已经报告交易失败，这个渠道只负责把通知落库并生成报告，
// 永远不会走到发放环节。
type redirectFailurePolicy struct{}

func (*redirectFailurePolicy) Channel() Channel { return ChannelRedirectFailure }

func (*redirectFailurePolicy) OnReceived(p *Processor, ri ReceivedInfo) bool {
	if !ri.Recorded {
		return true
	}
	p.result.State = StateDuplicate
	if ri.FromWebhook {
		// webhook 先行入账的重复不按用户重复提交对待
		return false
	}
	if ri.State == RecordFlagged {
		// 已带内部失败标注的记录重复到达时不盖 004，
		// 标注是覆盖写，盖上去会抹掉先前 001/002/003 的结论
		return false
	}
	p.result.FailureCode = FailureDuplicate
	return false
}

func (*redirectFailurePolicy) OnRecorded(p *Processor, err error) bool {
	if err != nil {
		// 捕获后仍然要出报告，由控制器呈现
		p.fault(err)
		return false
	}
	// 落库即完成：远端错误码原样进入报告
	p.result.State = StateReported
	return false
}

func (*redirectFailurePolicy) OnEnrolled(p *Processor, enrolled bool) bool {
	return !enrolled
}

func (*redirectFailurePolicy) OnHashChecked(p *Processor, match bool) bool { return false }

func (*redirectFailurePolicy) OnChargesChecked(p *Processor, equal bool) bool { return false }

func (*redirectFailurePolicy) OnVerified(p *Processor, res VerifyResult) bool { return false }

func (*redirectFailurePolicy) OnDelivered(p *Processor, err error) bool { return false }

// ---------------- webhook ----------------

// webhook 渠道没有任何用户可见输出，只以状态码回应：
// 所有已妥善处理的结果都是 200（包括重复投递与失败/待定状态），
// 捕获到异常才是 500，由远端的重投机制兜底。
type webhookPolicy struct{}

func (*webhookPolicy) Channel() Channel { return ChannelWebhook }

func (*webhookPolicy) OnReceived(p *Processor, ri ReceivedInfo) bool {
	if ri.Recorded {
		// 重复投递，幂等确认
		p.result.State = StateDuplicate
		p.result.FailureCode = FailureDuplicate
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnRecorded(p *Processor, err error) bool {
	if err != nil {
		p.fault(err)
		p.result.HTTPStatus = http.StatusInternalServerError
		return false
	}
	// 只有 success 状态继续处理；failure / pending 记录即止，
	// 依然确认收到
	if p.n.Status != "success" {
		p.result.State = StateReported
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnEnrolled(p *Processor, enrolled bool) bool {
	if enrolled {
		p.result.State = StateAlreadyEnrolled
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnHashChecked(p *Processor, match bool) bool {
	if !match {
		p.result.State = StateHashMismatch
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnChargesChecked(p *Processor, equal bool) bool {
	if !equal {
		p.result.State = StateChargeMismatch
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnVerified(p *Processor, res VerifyResult) bool {
	if !res.Matched {
		p.result.State = StateVerifyFailed
		p.result.HTTPStatus = http.StatusOK
		return false
	}
	return true
}

func (*webhookPolicy) OnDelivered(p *Processor, err error) bool {
	if err != nil {
		p.fault(err)
		p.result.HTTPStatus = http.StatusInternalServerError
		return false
	}
	p.result.State = StateDelivered
	p.result.HTTPStatus = http.StatusOK
	return true
}
