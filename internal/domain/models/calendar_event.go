package models

import "time"

// 日历事件类型
const (
	EventTypeInspection  = "inspection"
	EventTypeMaintenance = "maintenance"
	EventTypeLeaseEnd    = "lease_end"
	EventTypeRentDue     = "rent_due"
	EventTypeOther       = "other"
)

// CalendarEvent 表示公司日历上的事件，可选关联单元、租客或维修工单
type CalendarEvent struct {
	BaseModel
	Title                string    `gorm:"type:varchar(200);not null" json:"title"`
	Description          string    `gorm:"type:text" json:"description"`
	EventDate            time.Time `gorm:"not null;index" json:"event_date"`
	EventType            string    `gorm:"type:varchar(50);default:'other'" json:"event_type"`
	CompanyID            string    `gorm:"type:varchar(36);not null;index" json:"company_id"`
	UnitID               *string   `gorm:"type:varchar(36);index" json:"unit_id"`
	TenantID             *string   `gorm:"type:varchar(36);index" json:"tenant_id"`
	MaintenanceRequestID *string   `gorm:"type:varchar(36);index" json:"maintenance_request_id"`
}
