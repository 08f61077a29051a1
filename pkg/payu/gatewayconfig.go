package payu

import (
	"strings"
)

// 远端网关地址
const (
	RemoteTestURL = "https://test.payu.in"
	RemoteProdURL = "https://secure.payu.in"

	// 追加在上面两个地址后的子路径
	RemotePaymentSubpath = "_payment"
	RemoteVerifySubpath  = "merchant/postservice?form=2"
)

// 生产环境 webhook 来源白名单，网关官方公布的出口地址
var ProdWebhookIPs = []string{
	"180.179.165.250",
	"180.179.174.1",
	"180.179.174.2",
	"3.7.89.1",
	"3.7.89.2",
	"3.7.89.8",
	"3.7.89.9",
	"52.140.8.64",
	"52.140.8.65",
	"52.140.8.66",
	"52.140.8.88",
	"52.140.8.89",
}

// GatewayConfig 按商品解析出的网关配置。
// 每个请求从商品的持久化配置现场构造，不跨请求缓存。
type GatewayConfig struct {
	TestOrProd        string   // test / prod
	MerchantID        string
	RemoteKey         string   // 当前环境的商户 key
	RemoteSalt        string   // 当前环境的盐
	TransactionPrefix string   // txnid 前缀
	RemoteBaseURL     string
	SuccessURL        string   // 本地成功回跳地址
	FailureURL        string   // 本地失败回跳地址
	WebhookIPs        []string // webhook 来源白名单
}

// GatewaySettings 商品上持久化的网关账户配置
type GatewaySettings struct {
	TestOrProd     string
	MerchantID     string
	Key            string
	Salt           string
	KeyLive        string
	SaltLive       string
	TxnPrefix      string
	TestWebhookIPs string // 逗号分隔
}

// NewGatewayConfig 由持久化配置构造当前请求用的 GatewayConfig。
// test 环境使用测试密钥与配置的白名单，
// prod 环境使用正式密钥与固定的官方白名单。
func NewGatewayConfig(s GatewaySettings, successURL, failureURL string) *GatewayConfig {
	cfg := &GatewayConfig{
		TestOrProd:        s.TestOrProd,
		MerchantID:        s.MerchantID,
		TransactionPrefix: s.TxnPrefix,
		SuccessURL:        successURL,
		FailureURL:        failureURL,
	}

	if s.TestOrProd == "test" {
		cfg.RemoteKey = s.Key
		cfg.RemoteSalt = s.Salt
		cfg.RemoteBaseURL = RemoteTestURL
		cfg.WebhookIPs = splitIPs(s.TestWebhookIPs)
	} else {
		cfg.RemoteKey = s.KeyLive
		cfg.RemoteSalt = s.SaltLive
		cfg.RemoteBaseURL = RemoteProdURL
		cfg.WebhookIPs = ProdWebhookIPs
	}

	return cfg
}

// VerifyURL 核验接口完整地址
func (c *GatewayConfig) VerifyURL() string {
	return c.RemoteBaseURL + "/" + RemoteVerifySubpath
}

// PaymentURL 支付提交完整地址
func (c *GatewayConfig) PaymentURL() string {
	return c.RemoteBaseURL + "/" + RemotePaymentSubpath
}

// AllowsWebhookFrom 判断来源地址是否在白名单内
func (c *GatewayConfig) AllowsWebhookFrom(remoteAddr string) bool {
	for _, ip := range c.WebhookIPs {
		if ip == remoteAddr {
			return true
		}
	}
	return false
}

func splitIPs(s string) []string {
	var ips []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ips = append(ips, part)
		}
	}
	return ips
}
