// 支付流水
package payment

import (
	"time"
)

// Payment 支付流水模型
// 只在权益发放成功的提交里写入，Transaction.PaymentID 指向这里。
type Payment struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID   uint64     `gorm:"index" json:"account_id"`              // 收款账户
	Component   string     `gorm:"type:varchar(64)" json:"component"`    // 商品类型
	PaymentArea string     `gorm:"type:varchar(64)" json:"payment_area"` // 商品区域
	ItemID      uint64     `gorm:"index" json:"item_id"`                 // 商品 ID
	UserID      uint64     `gorm:"index" json:"user_id"`                 // 付款用户
	Gateway     string     `gorm:"type:varchar(20)" json:"gateway"`      // 固定 payuindia
	Amount      string     `gorm:"type:varchar(20)" json:"amount"`       // 入账金额（标价+附加费，已取整）
	Currency    string     `gorm:"type:varchar(3)" json:"currency"`
	ExtraData   JSON       `gorm:"type:json" json:"extra_data"`
	PayAt       *time.Time `gorm:"" json:"pay_at"`
	CreatedAt   time.Time  `gorm:"" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"" json:"updated_at"`
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payu_payments"
}
