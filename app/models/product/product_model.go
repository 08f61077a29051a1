// 可购买商品与其网关账户配置
package product

import (
	"payugw/app/models"
)

// Product 可购买商品，按 {component, payment_area, item_id} 唯一定位。
// 网关账户配置直接挂在商品上，每个请求按需取出重新构造 GatewayConfig，
// 不做跨请求缓存。
type Product struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Component   string `gorm:"type:varchar(64);uniqueIndex:idx_product_item" json:"component"`
	PaymentArea string `gorm:"type:varchar(64);uniqueIndex:idx_product_item" json:"payment_area"`
	ItemID      uint64 `gorm:"uniqueIndex:idx_product_item" json:"item_id"`

	Name       string `gorm:"type:varchar(255)" json:"name"`
	ListingURL string `gorm:"type:varchar(255)" json:"listing_url"` // 失败报告页"继续"按钮的去向

	Amount           string  `gorm:"type:varchar(20)" json:"amount"`   // 标价
	Currency         string  `gorm:"type:varchar(3)" json:"currency"`  // ISO 4217
	SurchargePercent float64 `gorm:"" json:"surcharge_percent"`        // 附加费百分比，0 表示不收
	AccountID        uint64  `gorm:"index" json:"account_id"`          // 收款账户

	// 网关账户配置，test 与 live 两套密钥
	TestOrProd        string `gorm:"type:varchar(10)" json:"test_or_prod"` // test / prod
	MerchantID        string `gorm:"type:varchar(64)" json:"merchant_id"`
	RemoteKey         string `gorm:"type:varchar(64)" json:"remote_key"`
	RemoteSalt        string `gorm:"type:varchar(64)" json:"remote_salt"`
	RemoteKeyLive     string `gorm:"type:varchar(64)" json:"remote_key_live"`
	RemoteSaltLive    string `gorm:"type:varchar(64)" json:"remote_salt_live"`
	TransactionPrefix string `gorm:"type:varchar(20)" json:"transaction_prefix"`
	TestWebhookIPs    string `gorm:"type:varchar(255)" json:"test_webhook_ips"` // 测试环境白名单，逗号分隔

	models.CommonTimestampsField
}

// TableName 指定表名
func (Product) TableName() string {
	return "payu_products"
}
