// Package user 存放用户 Model 相关逻辑
package user

import (
	"payugw/app/models"
)

// User 用户模型
type User struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"unique;type:varchar(255)"`
	Nickname  string `gorm:"type:varchar(50)"`
	Firstname string `gorm:"type:varchar(100)"`
	Lastname  string `gorm:"type:varchar(100)"`
	Phone     string `gorm:"type:varchar(40)"`

	models.CommonTimestampsField
}

// TableName 表名
func (User) TableName() string {
	return "users"
}
