// 发往远端网关的提交快照
package submitinfo

import (
	"payugw/app/models"
)

// SubmitInfo 记录某个 txnid 实际发往远端网关的内容，创建后不再修改。
// 对账时按 txnid 取回，用于与网关回传的金额、附加费逐项核对。
type SubmitInfo struct {
	ID                uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Txnid             string  `gorm:"type:varchar(64);uniqueIndex" json:"txnid"`
	Component         string  `gorm:"type:varchar(64);index:idx_submit_item" json:"component"`     // 商品类型
	PaymentArea       string  `gorm:"type:varchar(64);index:idx_submit_item" json:"payment_area"`  // 商品区域
	ItemID            uint64  `gorm:"index:idx_submit_item" json:"item_id"`                        // 商品 ID
	Amount            string  `gorm:"type:varchar(20)" json:"amount"`                              // 申报金额，保留提交时的原始字符串
	AdditionalCharges *string `gorm:"type:varchar(20)" json:"additional_charges"`                  // 附加费，未收取时为 null
	ProductInfo       string  `gorm:"type:varchar(255)" json:"product_info"`
	AccountID         uint64  `gorm:"" json:"account_id"` // 网关账户引用，仅透传

	models.CommonTimestampsField
}

// TableName 指定表名
func (SubmitInfo) TableName() string {
	return "payu_submit_infos"
}
