// 网关回传通知记录与核验审计日志
package gatewayresponse

import (
	"time"

	"payugw/app/models"
)

// Response 每收到一条通知（重定向或 webhook）就落一行。
// 唯一约束在 mihpayid 上而不是 txnid 上：同一笔交易允许多条记录
// （重复重定向、后到的 webhook），webhook 并发重投靠唯一索引拦截。
type Response struct {
	ID                uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Mihpayid          *string `gorm:"type:varchar(64);uniqueIndex" json:"mihpayid"` // 远端支付号，非空时唯一
	Txnid             string  `gorm:"type:varchar(64);index" json:"txnid"`
	Mode              string  `gorm:"type:varchar(20)" json:"mode"`
	Status            string  `gorm:"type:varchar(20);index" json:"status"` // success / failure / pending
	UnmappedStatus    string  `gorm:"type:varchar(40)" json:"unmapped_status"`
	PayuKey           string  `gorm:"type:varchar(64)" json:"payu_key"` // 报文里的 key 字段
	Amount            string  `gorm:"type:varchar(20)" json:"amount"`
	Discount          string  `gorm:"type:varchar(20)" json:"discount"`
	NetAmountDebit    string  `gorm:"type:varchar(20)" json:"net_amount_debit"`
	AddedOn           string  `gorm:"type:varchar(40)" json:"added_on"`
	ProductInfo       string  `gorm:"type:varchar(255)" json:"product_info"`
	Firstname         string  `gorm:"type:varchar(100)" json:"firstname"`
	Lastname          string  `gorm:"type:varchar(100)" json:"lastname"`
	Address1          string  `gorm:"type:varchar(255)" json:"address1"`
	Address2          string  `gorm:"type:varchar(255)" json:"address2"`
	City              string  `gorm:"type:varchar(100)" json:"city"`
	State             string  `gorm:"type:varchar(100)" json:"state"`
	Country           string  `gorm:"type:varchar(100)" json:"country"`
	Zipcode           string  `gorm:"type:varchar(20)" json:"zipcode"`
	Email             string  `gorm:"type:varchar(255)" json:"email"`
	Phone             string  `gorm:"type:varchar(40)" json:"phone"`
	Hash              string  `gorm:"type:varchar(160)" json:"hash"` // 远端携带的 sha512 摘要
	PaymentSource     string  `gorm:"type:varchar(40)" json:"payment_source"`
	PGType            string  `gorm:"type:varchar(40)" json:"pg_type"`
	BankRefNum        string  `gorm:"type:varchar(64)" json:"bank_ref_num"`
	Bankcode          string  `gorm:"type:varchar(40)" json:"bankcode"`
	ErrorCode         string  `gorm:"type:varchar(40)" json:"error_code"`       // 远端报告的错误码
	ErrorMessage      string  `gorm:"type:varchar(255)" json:"error_message"`   // 远端报告的错误信息
	AdditionalCharges *string `gorm:"type:varchar(20)" json:"additional_charges"`
	UDF               string  `gorm:"type:varchar(255)" json:"udf"`   // udf1..10 原样用 | 连接
	Field             string  `gorm:"type:varchar(255)" json:"field"` // field1..9 原样用 | 连接

	Source     Source    `gorm:"type:varchar(10);index" json:"source"` // redirect / webhook
	RemoteAddr string    `gorm:"type:varchar(45)" json:"remote_addr"`
	ReceivedAt time.Time `gorm:"index" json:"received_at"`

	// 内部失败标注，覆盖写（last write wins），替代源协议里借用 udf 槽位的做法
	FailureCode    *string `gorm:"type:varchar(3);index" json:"failure_code"`
	FailureMessage string  `gorm:"type:varchar(255)" json:"failure_message"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Response) TableName() string {
	return "payu_responses"
}

// IsFlagged 是否已被标注内部失败码
func (r *Response) IsFlagged() bool {
	return r.FailureCode != nil && *r.FailureCode != ""
}

// VerifyLog 每次出站核验调用的审计行，只追加，管线不回读
type VerifyLog struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID uint64    `gorm:"index" json:"response_id"`
	Txnid      string    `gorm:"type:varchar(64);index" json:"txnid"`
	ResultCode string    `gorm:"type:varchar(64)" json:"result_code"` // 简短结论，例如 remote data OK / transport error
	Payload    string    `gorm:"type:text" json:"payload"`            // 原始核验报文或错误详情
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (VerifyLog) TableName() string {
	return "payu_verify_logs"
}
