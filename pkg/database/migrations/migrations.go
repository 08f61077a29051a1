// Package migrations 注册需要自动迁移的数据表
package migrations

import (
	"payugw/app/models/enrollment"
	"payugw/app/models/gatewayresponse"
	"payugw/app/models/payment"
	"payugw/app/models/product"
	"payugw/app/models/submitinfo"
	"payugw/app/models/transaction"
	"payugw/app/models/user"
)

// RegisterTables 返回所有参与自动迁移的模型
func RegisterTables() []interface{} {
	return []interface{}{
		&user.User{},
		&product.Product{},
		&transaction.Transaction{},
		&submitinfo.SubmitInfo{},
		&gatewayresponse.Response{},
		&gatewayresponse.VerifyLog{},
		&payment.Payment{},
		&enrollment.Enrollment{},
	}
}
