package payu

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------- 测试替身 ----------------

type fakeStore struct {
	info        *SubmitInfo
	infoErr     error
	received    ReceivedInfo
	receivedErr error
	recordErr   error
	delivered   bool

	recorded       int
	recordedVia    Channel
	annotations    []FailureCode
	txnidChecks    int
	mihpayidChecks int
}

func (s *fakeStore) GetSubmitInfo(ctx context.Context, txnid string) (*SubmitInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return s.info, nil
}

func (s *fakeStore) RecordResponse(ctx context.Context, n *Notification, channel Channel, remoteAddr string) (uint64, error) {
	if s.recordErr != nil {
		return 0, s.recordErr
	}
	s.recorded++
	s.recordedVia = channel
	return 42, nil
}

func (s *fakeStore) ReceivedByMihpayid(ctx context.Context, mihpayid string) (ReceivedInfo, error) {
	s.mihpayidChecks++
	return s.received, s.receivedErr
}

func (s *fakeStore) ReceivedByTxnid(ctx context.Context, txnid string) (ReceivedInfo, error) {
	s.txnidChecks++
	return s.received, s.receivedErr
}

func (s *fakeStore) AnnotateFailure(ctx context.Context, responseID uint64, code FailureCode) error {
	s.annotations = append(s.annotations, code)
	return nil
}

func (s *fakeStore) IsAlreadyDelivered(ctx context.Context, txnid string) (bool, error) {
	return s.delivered, nil
}

type fakeVerifier struct {
	result VerifyResult
	calls  int
}

func (v *fakeVerifier) Verify(ctx context.Context, cfg *GatewayConfig, txnid string, responseID uint64,
	local map[string]*string, fields []FieldPair) VerifyResult {
	v.calls = v.calls + 1
	return v.result
}

type fakeDeliverer struct {
	err        error
	calls      int
	emitEvents []bool
}

func (d *fakeDeliverer) Deliver(ctx context.Context, info *SubmitInfo, n *Notification, emitEvent bool) error {
	d.calls++
	d.emitEvents = append(d.emitEvents, emitEvent)
	return d.err
}

type fakeResolver struct {
	cfg *GatewayConfig
	err error
}

func (r *fakeResolver) Resolve(ctx context.Context, info *SubmitInfo) (*GatewayConfig, error) {
	return r.cfg, r.err
}

// ---------------- 构造辅助 ----------------

type pipeline struct {
	store     *fakeStore
	verifier  *fakeVerifier
	deliverer *fakeDeliverer
	cfg       *GatewayConfig
}

func newPipeline() *pipeline {
	cfg := NewGatewayConfig(testSettings("test"),
		"https://shop.example/success", "https://shop.example/failure")
	return &pipeline{
		store: &fakeStore{
			info: &SubmitInfo{
				ID:          7,
				Txnid:       "ORD9",
				Component:   "course",
				PaymentArea: "fee",
				ItemID:      3,
				Amount:      "100.00",
				ProductInfo: "Course",
			},
		},
		verifier:  &fakeVerifier{result: VerifyResult{Matched: true}},
		deliverer: &fakeDeliverer{},
		cfg:       cfg,
	}
}

func (p *pipeline) run(channel Channel, n *Notification) Result {
	proc := NewProcessor(NewPolicy(channel), p.store, p.verifier, p.deliverer,
		&fakeResolver{cfg: p.cfg})
	return proc.Process(context.Background(), n, "10.0.0.1")
}

// notification 构造一条摘要合法的通知
func (p *pipeline) notification(status string) *Notification {
	n := &Notification{
		Mihpayid:    "403993715527249840",
		Status:      status,
		Txnid:       "ORD9",
		Amount:      "100.00",
		ProductInfo: "Course",
		Firstname:   "Asha",
		Email:       "asha@example.com",
	}
	n.Hash = ReverseHash(p.cfg.RemoteKey, p.cfg.RemoteSalt, n.HashFields())
	return n
}

// ---------------- 成功回跳 ----------------

func TestRedirectSuccessHappyPath(t *testing.T) {
	p := newPipeline()
	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateDelivered, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
	assert.Equal(t, "https://shop.example/success", result.RedirectURL)

	assert.Equal(t, 1, p.store.recorded)
	assert.Equal(t, ChannelRedirectSuccess, p.store.recordedVia)
	assert.Equal(t, 1, p.store.txnidChecks, "redirect channel keys duplicates on txnid")
	assert.Equal(t, 0, p.store.mihpayidChecks)
	assert.Equal(t, 1, p.verifier.calls)
	require.Equal(t, 1, p.deliverer.calls)
	assert.True(t, p.deliverer.emitEvents[0])
	assert.Empty(t, p.store.annotations)
}

func TestRedirectSuccessDuplicateFromWebhook(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: true, State: RecordClean}

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	// webhook 已经入账，用户直接去交付确认页
	assert.Equal(t, StateAlreadyEnrolled, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
	assert.Equal(t, "https://shop.example/success", result.RedirectURL)
	assert.Equal(t, 0, p.store.recorded, "duplicate must not create a second row")
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessDuplicateFromRedirect(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: false, State: RecordClean}

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateDuplicate, result.State)
	assert.Equal(t, FailureDuplicate, result.FailureCode)
	assert.Contains(t, result.RedirectURL, "failurecode=004")
	assert.Contains(t, result.RedirectURL, "response_txnid=ORD9")
	assert.Equal(t, 0, p.store.recorded)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessAlreadyEnrolled(t *testing.T) {
	p := newPipeline()
	p.store.delivered = true

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	// 幂等完成：不标失败码，通知本身照常落库
	assert.Equal(t, StateAlreadyEnrolled, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
	assert.Equal(t, "https://shop.example/success", result.RedirectURL)
	assert.Equal(t, 1, p.store.recorded)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessTamperedAmount(t *testing.T) {
	p := newPipeline()
	n := p.notification("success")
	n.Amount = "1.00" // 报文被改动，摘要不再匹配

	result := p.run(ChannelRedirectSuccess, n)

	assert.Equal(t, StateHashMismatch, result.State)
	assert.Equal(t, FailureHashMismatch, result.FailureCode)
	assert.Contains(t, result.RedirectURL, "failurecode=001")
	assert.Equal(t, []FailureCode{FailureHashMismatch}, p.store.annotations)
	assert.Equal(t, 0, p.verifier.calls, "verification must not run after hash rejection")
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessChargeMismatch(t *testing.T) {
	p := newPipeline()
	charges := "5.00"
	p.store.info.AdditionalCharges = &charges // 提交时收了附加费，回传却没有

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateChargeMismatch, result.State)
	assert.Equal(t, FailureChargeMismatch, result.FailureCode)
	assert.Contains(t, result.RedirectURL, "failurecode=002")
	assert.Equal(t, []FailureCode{FailureChargeMismatch}, p.store.annotations)
	assert.Equal(t, 0, p.verifier.calls)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessVerifyFailed(t *testing.T) {
	p := newPipeline()
	p.verifier.result = VerifyResult{Matched: false, Detail: "transport error"}

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateVerifyFailed, result.State)
	assert.Equal(t, FailureVerifyFailed, result.FailureCode)
	assert.Contains(t, result.RedirectURL, "failurecode=003")
	assert.Equal(t, []FailureCode{FailureVerifyFailed}, p.store.annotations)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessRecordError(t *testing.T) {
	p := newPipeline()
	p.store.recordErr = errors.New("disk full")

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateFaulted, result.State)
	assert.Error(t, result.Err)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectSuccessLosingDeliveryRace(t *testing.T) {
	p := newPipeline()
	p.deliverer.err = ErrAlreadyDelivered

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	// 并发竞争中落败与正常发放对用户等价
	assert.Equal(t, StateDelivered, result.State)
	assert.Equal(t, "https://shop.example/success", result.RedirectURL)
}

func TestRedirectSuccessUnknownTxnid(t *testing.T) {
	p := newPipeline()
	p.store.infoErr = errors.New("record not found")

	result := p.run(ChannelRedirectSuccess, p.notification("success"))

	assert.Equal(t, StateFaulted, result.State)
	assert.Error(t, result.Err)
	assert.Equal(t, 0, p.store.recorded)
}

// ---------------- 失败回跳 ----------------

func TestRedirectFailureReportsAndStops(t *testing.T) {
	p := newPipeline()
	n := p.notification("failure")
	n.Error = "E501"
	n.ErrorMessage = "Bank declined"

	result := p.run(ChannelRedirectFailure, n)

	assert.Equal(t, StateReported, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
	assert.Equal(t, 1, p.store.recorded)
	assert.Equal(t, ChannelRedirectFailure, p.store.recordedVia)
	assert.Equal(t, 0, p.verifier.calls)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestRedirectFailureDuplicate(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: false, State: RecordClean}

	result := p.run(ChannelRedirectFailure, p.notification("failure"))

	assert.Equal(t, StateDuplicate, result.State)
	assert.Equal(t, FailureDuplicate, result.FailureCode)
	assert.Equal(t, 0, p.store.recorded)
}

func TestRedirectFailureDuplicateOfFlaggedRecordKeepsAnnotation(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: false, State: RecordFlagged}

	result := p.run(ChannelRedirectFailure, p.notification("failure"))

	// 已标注 001/002/003 的记录重复到达，不得被 004 覆盖
	assert.Equal(t, StateDuplicate, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
	assert.Equal(t, 0, p.store.recorded)
	assert.Empty(t, p.store.annotations)
}

func TestRedirectFailureDuplicateFromWebhook(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: true, State: RecordClean}

	result := p.run(ChannelRedirectFailure, p.notification("failure"))

	// webhook 先行入账的重复不按用户重复提交对待
	assert.Equal(t, StateDuplicate, result.State)
	assert.Equal(t, FailureNone, result.FailureCode)
}

// ---------------- webhook ----------------

func TestWebhookHappyPath(t *testing.T) {
	p := newPipeline()
	result := p.run(ChannelWebhook, p.notification("success"))

	assert.Equal(t, StateDelivered, result.State)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Equal(t, 1, p.store.mihpayidChecks, "webhook keys duplicates on mihpayid")
	assert.Equal(t, 0, p.store.txnidChecks)
	require.Equal(t, 1, p.deliverer.calls)
	assert.True(t, p.deliverer.emitEvents[0])
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	p := newPipeline()
	p.store.received = ReceivedInfo{Recorded: true, FromWebhook: true, State: RecordClean}

	result := p.run(ChannelWebhook, p.notification("success"))

	// 幂等确认：200 让远端停止重投
	assert.Equal(t, StateDuplicate, result.State)
	assert.Equal(t, FailureDuplicate, result.FailureCode)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Equal(t, 0, p.store.recorded)
}

func TestWebhookNonSuccessStatusRecordedOnly(t *testing.T) {
	p := newPipeline()
	result := p.run(ChannelWebhook, p.notification("pending"))

	assert.Equal(t, StateReported, result.State)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Equal(t, 1, p.store.recorded)
	assert.Equal(t, 0, p.verifier.calls)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestWebhookHashMismatchStillAcknowledged(t *testing.T) {
	p := newPipeline()
	n := p.notification("success")
	n.Hash = "0000"

	result := p.run(ChannelWebhook, n)

	assert.Equal(t, StateHashMismatch, result.State)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Equal(t, []FailureCode{FailureHashMismatch}, p.store.annotations)
	assert.Equal(t, 0, p.deliverer.calls)
}

func TestWebhookRecordErrorReturns500(t *testing.T) {
	p := newPipeline()
	p.store.recordErr = errors.New("disk full")

	result := p.run(ChannelWebhook, p.notification("success"))

	assert.Equal(t, StateFaulted, result.State)
	assert.Equal(t, http.StatusInternalServerError, result.HTTPStatus)
}

func TestWebhookDeliveryErrorReturns500(t *testing.T) {
	p := newPipeline()
	p.deliverer.err = errors.New("db down")

	result := p.run(ChannelWebhook, p.notification("success"))

	assert.Equal(t, StateFaulted, result.State)
	assert.Equal(t, http.StatusInternalServerError, result.HTTPStatus)
}

func TestWebhookLosingDeliveryRace(t *testing.T) {
	p := newPipeline()
	p.deliverer.err = ErrAlreadyDelivered

	result := p.run(ChannelWebhook, p.notification("success"))

	assert.Equal(t, StateDelivered, result.State)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
}
