package repositories

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"payugw/app/models/product"
	"payugw/app/models/submitinfo"
	"payugw/app/models/user"
	"payugw/pkg/database"
	"payugw/pkg/database/migrations"
)

// setupTestDB 每个用例独享一个内存数据库
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(migrations.RegisterTables()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	database.SQLDB = sqlDB
}

func seedUser(t *testing.T) *user.User {
	t.Helper()

	u := &user.User{
		Email:     "asha@example.com",
		Firstname: "Asha",
		Lastname:  "Rao",
		Phone:     "9999999999",
	}
	if err := database.DB.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T) *product.Product {
	t.Helper()

	p := &product.Product{
		Component:         "course",
		PaymentArea:       "fee",
		ItemID:            3,
		Name:              "Course",
		ListingURL:        "https://shop.example/courses",
		Amount:            "100.00",
		Currency:          "INR",
		SurchargePercent:  5,
		AccountID:         11,
		TestOrProd:        "test",
		MerchantID:        "M1",
		RemoteKey:         "testkey",
		RemoteSalt:        "testsalt",
		RemoteKeyLive:     "livekey",
		RemoteSaltLive:    "livesalt",
		TransactionPrefix: "ORD",
		TestWebhookIPs:    "10.0.0.1",
	}
	if err := database.DB.Create(p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p
}

func seedSubmitInfo(t *testing.T, txnid, amount, charges string) *submitinfo.SubmitInfo {
	t.Helper()

	info := &submitinfo.SubmitInfo{
		Txnid:       txnid,
		Component:   "course",
		PaymentArea: "fee",
		ItemID:      3,
		Amount:      amount,
		ProductInfo: "Course",
		AccountID:   11,
	}
	if charges != "" {
		info.AdditionalCharges = &charges
	}
	if err := NewSubmitInfoRepository().Create(context.Background(), info); err != nil {
		t.Fatalf("failed to seed submit info: %v", err)
	}
	return info
}
