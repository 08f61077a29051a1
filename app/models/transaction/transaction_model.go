// 支付交易主记录
package transaction

import (
	"payugw/app/models"
)

// Transaction 交易主记录模型
// 发起购买时创建，txnid 在同一事务内根据行号补写（前缀 + 自增序号）。
// PaymentID 只会被写入一次，非空即表示权益已发放。
type Transaction struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Txnid        string  `gorm:"type:varchar(64);uniqueIndex" json:"txnid"`   // 交易号，前缀+序号
	UserID       uint64  `gorm:"index" json:"user_id"`                        // 发起购买的用户
	PaymentID    *uint64 `gorm:"" json:"payment_id"`                          // 支付流水 ID，发放成功后写入
	SubmitInfoID *uint64 `gorm:"" json:"submit_info_id"`                      // 提交快照 ID

	models.CommonTimestampsField
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "payu_transactions"
}

// IsDelivered 权益是否已发放
func (t *Transaction) IsDelivered() bool {
	return t.PaymentID != nil
}
