package models

import "time"

// Tenancy 表示租客与单元之间的租约
// 同一单元同一时刻最多一条 is_active 租约
type Tenancy struct {
	BaseModel
	UnitID          string     `gorm:"type:varchar(36);not null;index" json:"unit_id"`
	TenantID        string     `gorm:"type:varchar(36);not null;index" json:"tenant_id"`
	LeaseStart      time.Time  `gorm:"not null" json:"lease_start"`
	LeaseEnd        *time.Time `json:"lease_end"`
	MonthlyRent     float64    `gorm:"type:decimal(10,2);not null" json:"monthly_rent"`
	SecurityDeposit float64    `gorm:"type:decimal(10,2);default:0" json:"security_deposit"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
}
