package payment

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Gateway 网关标识，写入流水的 gateway 列
const Gateway = "payuindia"

// JSON 自定义JSON类型
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return errors.New("invalid scan source")
}

// Validate 验证支付流水
func (p *Payment) Validate() error {
	if p.UserID == 0 {
		return errors.New("user_id is required")
	}
	if p.Amount == "" {
		return errors.New("amount is required")
	}
	if p.Gateway != Gateway {
		return errors.New("invalid payment gateway")
	}
	return nil
}
