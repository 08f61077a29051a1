package payu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"payugw/app/models/gatewayresponse"
	"payugw/app/models/payment"
	"payugw/app/models/product"
	"payugw/app/models/submitinfo"
	"payugw/app/repositories"
	"payugw/pkg/database"
	"payugw/pkg/database/migrations"
	"payugw/pkg/logger"
	payupkg "payugw/pkg/payu"
)

func setupWebhookTest(t *testing.T) *gin.Engine {
	t.Helper()

	logger.Logger = zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migrations.RegisterTables()...))

	database.DB = db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	database.SQLDB = sqlDB

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/payu/webhook", NewWebhookController(nil).Store)
	return router
}

func seedWebhookProduct(t *testing.T) {
	t.Helper()

	p := &product.Product{
		Component:         "course",
		PaymentArea:       "fee",
		ItemID:            3,
		Name:              "Course",
		Amount:            "100.00",
		Currency:          "INR",
		AccountID:         11,
		TestOrProd:        "test",
		RemoteKey:         "testkey",
		RemoteSalt:        "testsalt",
		TransactionPrefix: "ORD",
		TestWebhookIPs:    "10.0.0.1",
	}
	require.NoError(t, database.DB.Create(p).Error)

	info := &submitinfo.SubmitInfo{
		Txnid:       "ORD7",
		Component:   "course",
		PaymentArea: "fee",
		ItemID:      3,
		Amount:      "100.00",
		ProductInfo: "Course",
		AccountID:   11,
	}
	require.NoError(t, database.DB.Create(info).Error)
}

func postWebhook(router *gin.Engine, remoteAddr string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payu/webhook",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = remoteAddr

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsUnlistedSourceWithoutWriting(t *testing.T) {
	router := setupWebhookTest(t)
	seedWebhookProduct(t)

	w := postWebhook(router, "203.0.113.9:4433", url.Values{
		"txnid":    {"ORD7"},
		"mihpayid": {"403993715531342524"},
		"status":   {"success"},
		"amount":   {"100.00"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var responses int64
	require.NoError(t, database.DB.Model(&gatewayresponse.Response{}).Count(&responses).Error)
	assert.Zero(t, responses, "rejected source must not leave a record")

	var payments int64
	require.NoError(t, database.DB.Model(&payment.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestWebhookMissingTxnid(t *testing.T) {
	router := setupWebhookTest(t)
	seedWebhookProduct(t)

	w := postWebhook(router, "10.0.0.1:4433", url.Values{
		"status": {"success"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookUnknownTxnid(t *testing.T) {
	router := setupWebhookTest(t)
	seedWebhookProduct(t)

	w := postWebhook(router, "10.0.0.1:4433", url.Values{
		"txnid":  {"NOPE1"},
		"status": {"success"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebhookPendingStatusRecordsAndReturns200(t *testing.T) {
	router := setupWebhookTest(t)
	seedWebhookProduct(t)

	w := postWebhook(router, "10.0.0.1:4433", url.Values{
		"txnid":    {"ORD7"},
		"mihpayid": {"403993715531342524"},
		"status":   {"pending"},
		"amount":   {"100.00"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(payupkg.StateReported))

	var responses int64
	require.NoError(t, database.DB.Model(&gatewayresponse.Response{}).Count(&responses).Error)
	assert.EqualValues(t, 1, responses)

	var payments int64
	require.NoError(t, database.DB.Model(&payment.Payment{}).Count(&payments).Error)
	assert.Zero(t, payments)
}

func TestWebhookDuplicateMihpayidAnnotatesAndReturns200(t *testing.T) {
	router := setupWebhookTest(t)
	seedWebhookProduct(t)

	// 第一条落库，模拟此前已收到的 webhook
	store := repositories.NewPayuStore()
	first := payupkg.ParseNotification(url.Values{
		"txnid":    {"ORD7"},
		"mihpayid": {"403993715531342524"},
		"status":   {"success"},
		"amount":   {"100.00"},
	})
	responseID, err := store.RecordResponse(context.Background(), first, payupkg.ChannelWebhook, "10.0.0.1")
	require.NoError(t, err)
	require.NotZero(t, responseID)

	w := postWebhook(router, "10.0.0.1:4433", url.Values{
		"txnid":    {"ORD7"},
		"mihpayid": {"403993715531342524"},
		"status":   {"success"},
		"amount":   {"100.00"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(payupkg.StateDuplicate))

	var responses int64
	require.NoError(t, database.DB.Model(&gatewayresponse.Response{}).Count(&responses).Error)
	assert.EqualValues(t, 1, responses, "duplicate must not add a second record")

	// 原始记录保持原样，重复确认不回写失败标注
	var row gatewayresponse.Response
	require.NoError(t, database.DB.First(&row, responseID).Error)
	assert.Nil(t, row.FailureCode)
}
