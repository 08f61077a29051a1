package requests

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// PayuCheckoutRequest 发起支付的请求体
type PayuCheckoutRequest struct {
	UserID      uint64 `json:"user_id" valid:"user_id"`
	Component   string `json:"component" valid:"component"`
	PaymentArea string `json:"payment_area" valid:"payment_area"`
	ItemID      uint64 `json:"item_id" valid:"item_id"`
}

// ValidatePayuCheckout 解析并验证发起支付请求
func ValidatePayuCheckout(c *gin.Context) (*PayuCheckoutRequest, error) {
	var req PayuCheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}

	rules := govalidator.MapData{
		"user_id":      []string{"required"},
		"component":    []string{"required", "min:1", "max:64"},
		"payment_area": []string{"required", "min:1", "max:64"},
		"item_id":      []string{"required"},
	}

	messages := govalidator.MapData{
		"user_id": []string{
			"required:用户 ID 不能为空",
		},
		"component": []string{
			"required:商品类型不能为空",
			"max:商品类型长度不能超过 64 个字符",
		},
		"payment_area": []string{
			"required:商品区域不能为空",
			"max:商品区域长度不能超过 64 个字符",
		},
		"item_id": []string{
			"required:商品 ID 不能为空",
		},
	}

	if err := ValidateStruct(&req, rules, messages); err != nil {
		return nil, err
	}

	if req.UserID == 0 {
		return nil, fmt.Errorf("无效的用户 ID")
	}
	if req.ItemID == 0 {
		return nil, fmt.Errorf("无效的商品 ID")
	}

	return &req, nil
}
