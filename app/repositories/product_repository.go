package repositories

import (
	"context"

	"gorm.io/gorm"

	"payugw/app/models/product"
	"payugw/pkg/database"
	"payugw/pkg/payu"
)

// ProductRepository 商品与网关账户配置仓库
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建仓库实例
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		db: database.DB,
	}
}

// GetByItem 按 {component, payment_area, item_id} 定位商品
func (r *ProductRepository) GetByItem(ctx context.Context, component, paymentArea string, itemID uint64) (*product.Product, error) {
	var prod product.Product
	err := r.db.WithContext(ctx).
		Where("component = ? AND payment_area = ? AND item_id = ?", component, paymentArea, itemID).
		First(&prod).Error
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// Settings 商品上持久化的网关账户配置
func Settings(prod *product.Product) payu.GatewaySettings {
	return payu.GatewaySettings{
		TestOrProd:     prod.TestOrProd,
		MerchantID:     prod.MerchantID,
		Key:            prod.RemoteKey,
		Salt:           prod.RemoteSalt,
		KeyLive:        prod.RemoteKeyLive,
		SaltLive:       prod.RemoteSaltLive,
		TxnPrefix:      prod.TransactionPrefix,
		TestWebhookIPs: prod.TestWebhookIPs,
	}
}
