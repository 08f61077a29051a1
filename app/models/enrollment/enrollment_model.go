// 权益发放记录
package enrollment

import (
	"payugw/app/models"
)

// Enrollment 权益发放记录模型
// 一次成功的支付对应一行，(user_id, component, payment_area, item_id)
// 上的唯一索引保证同一商品不会给同一用户重复发放。
type Enrollment struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64 `gorm:"uniqueIndex:idx_enroll_user_item" json:"user_id"`
	Component   string `gorm:"type:varchar(64);uniqueIndex:idx_enroll_user_item" json:"component"`
	PaymentArea string `gorm:"type:varchar(64);uniqueIndex:idx_enroll_user_item" json:"payment_area"`
	ItemID      uint64 `gorm:"uniqueIndex:idx_enroll_user_item" json:"item_id"`
	PaymentID   uint64 `gorm:"index" json:"payment_id"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Enrollment) TableName() string {
	return "payu_enrollments"
}
