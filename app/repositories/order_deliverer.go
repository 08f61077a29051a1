package repositories

import (
	"context"

	"gorm.io/gorm"

	"payugw/app/models/enrollment"
	"payugw/app/models/payment"
	"payugw/app/models/transaction"
	"payugw/pkg/app"
	"payugw/pkg/database"
	"payugw/pkg/logger"
	"payugw/pkg/payu"
	"payugw/pkg/queue"
)

// EventPusher 发放成功后的事件投递
type EventPusher interface {
	PushEvent(ctx context.Context, event *queue.PaymentEvent) error
}

// OrderDeliverer 权益发放。
// 落支付流水、写发放记录、回填交易指针，全部在一个数据库事务里，
// 并发重投靠 payment_id 仍为空的条件更新决出唯一赢家。
type OrderDeliverer struct {
	db           *gorm.DB
	transactions *TransactionRepository
	products     *ProductRepository
	events       EventPusher // 可为 nil，表示不投递事件
}

// NewOrderDeliverer 创建发放器
func NewOrderDeliverer(events EventPusher) *OrderDeliverer {
	return &OrderDeliverer{
		db:           database.DB,
		transactions: NewTransactionRepository(),
		products:     NewProductRepository(),
		events:       events,
	}
}

// Deliver 计算应付金额、落支付流水、发放权益。
// 权益已发放时返回 payu.ErrAlreadyDelivered。
func (d *OrderDeliverer) Deliver(ctx context.Context, info *payu.SubmitInfo, n *payu.Notification, emitEvent bool) error {
	prod, err := d.products.GetByItem(ctx, info.Component, info.PaymentArea, info.ItemID)
	if err != nil {
		return err
	}

	charges := ""
	if info.AdditionalCharges != nil {
		charges = *info.AdditionalCharges
	}
	cost, err := payu.RoundedCost(info.Amount, charges)
	if err != nil {
		return err
	}

	var event *queue.PaymentEvent

	err = d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn transaction.Transaction
		if err := tx.Where("txnid = ?", info.Txnid).First(&txn).Error; err != nil {
			return err
		}
		if txn.IsDelivered() {
			return payu.ErrAlreadyDelivered
		}

		now := app.TimenowInTimezone()
		pay := payment.Payment{
			AccountID:   info.AccountID,
			Component:   info.Component,
			PaymentArea: info.PaymentArea,
			ItemID:      info.ItemID,
			UserID:      txn.UserID,
			Gateway:     payment.Gateway,
			Amount:      cost,
			Currency:    prod.Currency,
			ExtraData: payment.JSON{
				"txnid":    info.Txnid,
				"mihpayid": n.Mihpayid,
				"mode":     n.Mode,
				"bankcode": n.Bankcode,
			},
			PayAt: &now,
		}
		if err := pay.Validate(); err != nil {
			return err
		}
		if err := tx.Create(&pay).Error; err != nil {
			return err
		}

		enroll := enrollment.Enrollment{
			UserID:      txn.UserID,
			Component:   info.Component,
			PaymentArea: info.PaymentArea,
			ItemID:      info.ItemID,
			PaymentID:   pay.ID,
		}
		if err := tx.Create(&enroll).Error; err != nil {
			return err
		}

		// 条件更新：并发重投里只有一条能把 payment_id 从空改成非空，
		// 落败的一方整个事务回滚
		won, err := d.transactions.AttachPayment(tx, info.Txnid, pay.ID, info.ID)
		if err != nil {
			return err
		}
		if !won {
			return payu.ErrAlreadyDelivered
		}

		event = &queue.PaymentEvent{
			PaymentID:   pay.ID,
			Txnid:       info.Txnid,
			Mihpayid:    n.Mihpayid,
			UserID:      txn.UserID,
			Component:   info.Component,
			PaymentArea: info.PaymentArea,
			ItemID:      info.ItemID,
			ProductName: prod.Name,
			Amount:      cost,
			Currency:    prod.Currency,
			Email:       n.Email,
			Firstname:   n.Firstname,
			AcceptedAt:  now,
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 事件投递在事务提交后，失败只记日志，不影响已完成的发放
	if emitEvent && d.events != nil && event != nil {
		if err := d.events.PushEvent(ctx, event); err != nil {
			logger.ErrorString("Deliver", "PushEvent", err.Error())
		}
	}

	return nil
}
