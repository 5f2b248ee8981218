package models

import "time"

// Invoice 表示向租客开具的账单，invoice_number 全局唯一
type Invoice struct {
	BaseModel
	InvoiceNumber string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"invoice_number"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	DueDate       time.Time  `gorm:"not null;index" json:"due_date"`
	PaidDate      *time.Time `json:"paid_date"`
	IsPaid        bool       `gorm:"default:false" json:"is_paid"`
	Description   string     `gorm:"type:text" json:"description"`
	TenantID      string     `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	UnitID        string     `gorm:"type:varchar(36);not null;index" json:"unit_id"`
}
