package payu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSettings(mode string) GatewaySettings {
	return GatewaySettings{
		TestOrProd:     mode,
		MerchantID:     "M1",
		Key:            "testkey",
		Salt:           "testsalt",
		KeyLive:        "livekey",
		SaltLive:       "livesalt",
		TxnPrefix:      "ORD",
		TestWebhookIPs: "10.0.0.1, 10.0.0.2",
	}
}

func TestNewGatewayConfigTestMode(t *testing.T) {
	cfg := NewGatewayConfig(testSettings("test"), "https://shop.example/s", "https://shop.example/f")

	assert.Equal(t, "testkey", cfg.RemoteKey)
	assert.Equal(t, "testsalt", cfg.RemoteSalt)
	assert.Equal(t, RemoteTestURL, cfg.RemoteBaseURL)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.WebhookIPs)
	assert.Equal(t, "https://test.payu.in/_payment", cfg.PaymentURL())
	assert.Equal(t, "https://test.payu.in/merchant/postservice?form=2", cfg.VerifyURL())
}

func TestNewGatewayConfigProdMode(t *testing.T) {
	cfg := NewGatewayConfig(testSettings("prod"), "", "")

	assert.Equal(t, "livekey", cfg.RemoteKey)
	assert.Equal(t, "livesalt", cfg.RemoteSalt)
	assert.Equal(t, RemoteProdURL, cfg.RemoteBaseURL)
	// 生产环境白名单固定为官方出口地址，不吃配置
	assert.Equal(t, ProdWebhookIPs, cfg.WebhookIPs)
}

func TestAllowsWebhookFrom(t *testing.T) {
	cfg := NewGatewayConfig(testSettings("test"), "", "")

	assert.True(t, cfg.AllowsWebhookFrom("10.0.0.1"))
	assert.True(t, cfg.AllowsWebhookFrom("10.0.0.2"))
	assert.False(t, cfg.AllowsWebhookFrom("10.0.0.3"))
	assert.False(t, cfg.AllowsWebhookFrom(""))

	prod := NewGatewayConfig(testSettings("prod"), "", "")
	assert.True(t, prod.AllowsWebhookFrom("180.179.165.250"))
	assert.False(t, prod.AllowsWebhookFrom("10.0.0.1"))
}
