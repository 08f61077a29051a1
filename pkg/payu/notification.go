package payu

import (
	"net/url"
	"strconv"
	"strings"
)

// Notification 一条入站通知（重定向或 webhook）的完整字段集。
// 在请求边界解析一次，之后各个环节只接收这个结构体，
// 不再回头读请求参数。
type Notification struct {
	Mihpayid          string
	Mode              string
	Status            string
	UnmappedStatus    string
	Key               string // 报文里的 key 字段，即商户 key
	Txnid             string
	Amount            string
	Discount          string
	NetAmountDebit    string
	AddedOn           string
	ProductInfo       string
	Firstname         string
	Lastname          string
	Address1          string
	Address2          string
	City              string
	State             string
	Country           string
	Zipcode           string
	Email             string
	Phone             string
	Hash              string
	PaymentSource     string
	PGType            string
	BankRefNum        string
	Bankcode          string
	Error             string
	ErrorMessage      string
	AdditionalCharges string
	UDF               [10]string // udf1..udf10
	Field             [9]string  // field1..field9
}

// ParseNotification 从表单参数解析通知字段。
// GET 重定向与 POST webhook 携带的字段集相同。
func ParseNotification(values url.Values) *Notification {
	n := &Notification{
		Mihpayid:          values.Get("mihpayid"),
		Mode:              values.Get("mode"),
		Status:            values.Get("status"),
		UnmappedStatus:    values.Get("unmappedstatus"),
		Key:               values.Get("key"),
		Txnid:             values.Get("txnid"),
		Amount:            values.Get("amount"),
		Discount:          values.Get("discount"),
		NetAmountDebit:    values.Get("net_amount_debit"),
		AddedOn:           values.Get("addedon"),
		ProductInfo:       values.Get("productinfo"),
		Firstname:         values.Get("firstname"),
		Lastname:          values.Get("lastname"),
		Address1:          values.Get("address1"),
		Address2:          values.Get("address2"),
		City:              values.Get("city"),
		State:             values.Get("state"),
		Country:           values.Get("country"),
		Zipcode:           values.Get("zipcode"),
		Email:             values.Get("email"),
		Phone:             values.Get("phone"),
		Hash:              values.Get("hash"),
		PaymentSource:     values.Get("payment_source"),
		PGType:            values.Get("PG_TYPE"),
		BankRefNum:        values.Get("bank_ref_num"),
		Bankcode:          values.Get("bankcode"),
		Error:             values.Get("error"),
		ErrorMessage:      values.Get("error_Message"),
		AdditionalCharges: values.Get("additional_charges"),
	}

	for i := 0; i < 10; i++ {
		n.UDF[i] = values.Get("udf" + strconv.Itoa(i+1))
	}
	for i := 0; i < 9; i++ {
		n.Field[i] = values.Get("field" + strconv.Itoa(i+1))
	}

	return n
}

// HashFields 构造反向摘要所需的字段集合。
// 报文里的商户 key 字段名是 key，而配置里的属性名不同，
// 调用方用配置的 key 重算时直接传 GatewayConfig，不经过这里。
func (n *Notification) HashFields() Fields {
	f := Fields{
		"txnid":              n.Txnid,
		"amount":             n.Amount,
		"productinfo":        n.ProductInfo,
		"firstname":          n.Firstname,
		"email":              n.Email,
		"status":             n.Status,
		"additional_charges": n.AdditionalCharges,
	}
	for i := 0; i < 5; i++ {
		f["udf"+strconv.Itoa(i+1)] = n.UDF[i]
	}
	return f
}

// JoinedUDF 将 udf1..10 用 | 连接后原样保存；全部为空时返回空串
func (n *Notification) JoinedUDF() string {
	if !hasAny(n.UDF[:]) {
		return ""
	}
	return strings.Join(n.UDF[:], "|")
}

// JoinedField 同 JoinedUDF，针对 field1..9
func (n *Notification) JoinedField() string {
	if !hasAny(n.Field[:]) {
		return ""
	}
	return strings.Join(n.Field[:], "|")
}

func hasAny(ss []string) bool {
	for _, s := range ss {
		if s != "" {
			return true
		}
	}
	return false
}
