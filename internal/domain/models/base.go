package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 所有实体共享的主键与时间戳
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate 在插入前分配 uuid 主键
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All 返回需要迁移的全部模型，顺序即父表先于子表
func All() []interface{} {
	return []interface{}{
		&User{},
		&Company{},
		&Property{},
		&Unit{},
		&Tenant{},
		&Tenancy{},
		&MaintenanceRequest{},
		&Invoice{},
		&CalendarEvent{},
		&Upload{},
		&AssistantLog{},
	}
}
