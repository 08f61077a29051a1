// Package repositories 数据仓库层
package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"payugw/app/models/transaction"
	"payugw/pkg/app"
	"payugw/pkg/database"
)

// TransactionRepository 交易主记录仓库
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建仓库实例
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		db: database.DB,
	}
}

// Create 创建交易记录并生成 txnid。
// txnid = 前缀 + 行号，先插入拿到行号再在同一事务里补写，
// 避免崩溃后留下没有 txnid 的孤儿行。
func (r *TransactionRepository) Create(ctx context.Context, userID uint64, prefix string) (*transaction.Transaction, error) {
	var txn transaction.Transaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn = transaction.Transaction{UserID: userID}
		if err := tx.Create(&txn).Error; err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		txn.Txnid = fmt.Sprintf("%s%d", prefix, txn.ID)
		if err := tx.Model(&txn).Update("txnid", txn.Txnid).Error; err != nil {
			return fmt.Errorf("assign txnid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// GetByTxnid 按 txnid 获取交易记录
func (r *TransactionRepository) GetByTxnid(ctx context.Context, txnid string) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := r.db.WithContext(ctx).Where("txnid = ?", txnid).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// IsDelivered 判断权益是否已发放（paymentID 非空）
func (r *TransactionRepository) IsDelivered(ctx context.Context, txnid string) (bool, error) {
	txn, err := r.GetByTxnid(ctx, txnid)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}
	return txn.IsDelivered(), nil
}

// AttachPayment 条件更新：仅当 payment_id 仍为空时写入。
// 返回 false 表示另一条并发通知已经抢先完成发放。
func (r *TransactionRepository) AttachPayment(tx *gorm.DB, txnid string, paymentID, submitInfoID uint64) (bool, error) {
	result := tx.Model(&transaction.Transaction{}).
		Where("txnid = ? AND payment_id IS NULL", txnid).
		Updates(map[string]interface{}{
			"payment_id":     paymentID,
			"submit_info_id": submitInfoID,
			"updated_at":     app.TimenowInTimezone(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
