package payu

import (
	"github.com/shopspring/decimal"
)

// AmountsEqual 按数值比较两个金额字符串。
// "100.0" 与 "100.00" 视为相等；一侧为空另一侧非空视为不等；
// 任一侧无法解析时退回逐字符比较。
func AmountsEqual(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return da.Equal(db)
}

// RoundedCost 计算最终应付金额：标价 + 附加费，四舍五入保留两位小数。
// 取整规则是固定契约（half-up），所有入账金额都经过这里。
func RoundedCost(amount string, additionalCharges string) (string, error) {
	base, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}

	total := base
	if additionalCharges != "" {
		ac, err := decimal.NewFromString(additionalCharges)
		if err != nil {
			return "", err
		}
		total = total.Add(ac)
	}

	return total.Round(2).StringFixed(2), nil
}

// Surcharge 按百分比计算附加费，四舍五入保留两位小数。
// 百分比为 0 时返回空串，表示不收附加费。
func Surcharge(amount string, percent float64) (string, error) {
	if percent <= 0 {
		return "", nil
	}
	base, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}
	rate := decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100))
	return base.Mul(rate).Round(2).StringFixed(2), nil
}
