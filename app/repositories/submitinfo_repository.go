package repositories

import (
	"context"

	"gorm.io/gorm"

	"payugw/app/models/submitinfo"
	"payugw/pkg/database"
	"payugw/pkg/payu"
)

// SubmitInfoRepository 提交快照仓库
type SubmitInfoRepository struct {
	db *gorm.DB
}

// NewSubmitInfoRepository 创建仓库实例
func NewSubmitInfoRepository() *SubmitInfoRepository {
	return &SubmitInfoRepository{
		db: database.DB,
	}
}

// Create 落一条提交快照，创建后不再修改
func (r *SubmitInfoRepository) Create(ctx context.Context, info *submitinfo.SubmitInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

// GetByTxnid 按 txnid 取提交快照的领域视图
func (r *SubmitInfoRepository) GetByTxnid(ctx context.Context, txnid string) (*payu.SubmitInfo, error) {
	var row submitinfo.SubmitInfo
	err := r.db.WithContext(ctx).Where("txnid = ?", txnid).First(&row).Error
	if err != nil {
		return nil, err
	}

	return &payu.SubmitInfo{
		ID:                row.ID,
		Txnid:             row.Txnid,
		Component:         row.Component,
		PaymentArea:       row.PaymentArea,
		ItemID:            row.ItemID,
		Amount:            row.Amount,
		AdditionalCharges: row.AdditionalCharges,
		ProductInfo:       row.ProductInfo,
		AccountID:         row.AccountID,
	}, nil
}
