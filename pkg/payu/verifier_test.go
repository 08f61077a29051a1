package payu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedVerifyLog struct {
	responseID uint64
	txnid      string
	resultCode string
	payload    string
}

type fakeVerifyLogger struct {
	entries []recordedVerifyLog
}

func (l *fakeVerifyLogger) LogVerify(ctx context.Context, responseID uint64, txnid, resultCode, payload string) error {
	l.entries = append(l.entries, recordedVerifyLog{responseID, txnid, resultCode, payload})
	return nil
}

func verifyConfig(baseURL string) *GatewayConfig {
	return &GatewayConfig{
		RemoteKey:     testKey,
		RemoteSalt:    testSalt,
		RemoteBaseURL: baseURL,
	}
}

func strPtr(s string) *string { return &s }

func TestRemoteVerifierMatch(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"key":     r.PostFormValue("key"),
			"command": r.PostFormValue("command"),
			"var1":    r.PostFormValue("var1"),
			"hash":    r.PostFormValue("hash"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":1,"msg":"ok","transaction_details":{"TX100":{"transaction_amount":"100.00","additional_charges":"5.00"}}}`))
	}))
	defer server.Close()

	logs := &fakeVerifyLogger{}
	v := NewRemoteVerifier(logs)

	local := map[string]*string{
		"amount":             strPtr("100.00"),
		"additional_charges": strPtr("5.00"),
	}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 42, local, DefaultVerifyFields)

	assert.True(t, result.Matched)
	assert.Equal(t, testKey, gotForm["key"])
	assert.Equal(t, "verify_payment", gotForm["command"])
	assert.Equal(t, "TX100", gotForm["var1"])
	assert.Equal(t, VerifyRequestHash(testKey, testSalt, "TX100"), gotForm["hash"])

	require.Len(t, logs.entries, 1)
	assert.Equal(t, uint64(42), logs.entries[0].responseID)
	assert.Equal(t, "get remote data OK", logs.entries[0].resultCode)
	assert.Contains(t, logs.entries[0].payload, "transaction_details")
}

func TestRemoteVerifierAmountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"transaction_details":{"TX100":{"transaction_amount":"1.00"}}}`))
	}))
	defer server.Close()

	v := NewRemoteVerifier(&fakeVerifyLogger{})
	local := map[string]*string{"amount": strPtr("100.00"), "additional_charges": nil}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 1, local, DefaultVerifyFields)

	assert.False(t, result.Matched)
	assert.Contains(t, result.Detail, "amount")
}

func TestRemoteVerifierNilLocalFieldSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"transaction_details":{"TX100":{"transaction_amount":"100.00","additional_charges":"9.99"}}}`))
	}))
	defer server.Close()

	v := NewRemoteVerifier(&fakeVerifyLogger{})
	// 本地没收附加费，远端报什么都不参与比较
	local := map[string]*string{"amount": strPtr("100.00"), "additional_charges": nil}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 1, local, DefaultVerifyFields)

	assert.True(t, result.Matched)
}

func TestRemoteVerifierTxnidMissingFromDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"transaction_details":{"OTHER":{"transaction_amount":"100.00"}}}`))
	}))
	defer server.Close()

	v := NewRemoteVerifier(&fakeVerifyLogger{})
	local := map[string]*string{"amount": strPtr("100.00")}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 1, local, DefaultVerifyFields)

	assert.False(t, result.Matched)
}

func TestRemoteVerifierBadPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	v := NewRemoteVerifier(&fakeVerifyLogger{})
	local := map[string]*string{"amount": strPtr("100.00")}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 1, local, DefaultVerifyFields)

	assert.False(t, result.Matched)
}

func TestRemoteVerifierTransportErrorFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 远端不可达

	logs := &fakeVerifyLogger{}
	v := NewRemoteVerifier(logs)
	local := map[string]*string{"amount": strPtr("100.00")}
	result := v.Verify(context.Background(), verifyConfig(server.URL), "TX100", 42, local, DefaultVerifyFields)

	assert.False(t, result.Matched)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "transport error, no site access", logs.entries[0].resultCode)
}
