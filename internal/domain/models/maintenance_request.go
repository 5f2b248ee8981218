package models

import "time"

// Priority 维修优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid 判断优先级是否合法
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MaintenanceStatus 维修工单状态
type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// Valid 判断工单状态是否合法
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceOpen, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// MaintenanceRequest 表示单元的维修工单
type MaintenanceRequest struct {
	BaseModel
	Title         string            `gorm:"type:varchar(200);not null" json:"title"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	Category      string            `gorm:"type:varchar(50)" json:"category"` // 由分诊补全: Plumbing, Electrical, HVAC ...
	Priority      Priority          `gorm:"type:varchar(20);default:'medium'" json:"priority"`
	Status        MaintenanceStatus `gorm:"type:varchar(20);default:'open'" json:"status"`
	EstimatedCost float64           `gorm:"type:decimal(10,2);default:0" json:"estimated_cost"`
	ActualCost    *float64          `gorm:"type:decimal(10,2)" json:"actual_cost"`
	UnitID        string            `gorm:"type:varchar(36);not null;index" json:"unit_id"`
	TenantID      *string           `gorm:"type:varchar(36);index" json:"tenant_id"`
	AssignedTo    string            `gorm:"type:varchar(200)" json:"assigned_to"`
	CompletedAt   *time.Time        `json:"completed_at"`
}
