package models

// EntityType 可被授权检查与附件关联的实体种类
type EntityType string

const (
	EntityCompany            EntityType = "company"
	EntityProperty           EntityType = "property"
	EntityUnit               EntityType = "unit"
	EntityTenant             EntityType = "tenant"
	EntityTenancy            EntityType = "tenancy"
	EntityMaintenanceRequest EntityType = "maintenance_request"
	EntityInvoice            EntityType = "invoice"
	EntityCalendarEvent      EntityType = "calendar_event"
	EntityUpload             EntityType = "upload"
)

// AttachableEntityTypes 允许挂载附件的实体种类（封闭集合）
var AttachableEntityTypes = []EntityType{
	EntityCompany,
	EntityProperty,
	EntityUnit,
	EntityTenant,
	EntityTenancy,
	EntityMaintenanceRequest,
	EntityInvoice,
	EntityCalendarEvent,
}

// Attachable 判断是否可以挂载附件
func (t EntityType) Attachable() bool {
	for _, v := range AttachableEntityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Upload 表示挂载在某个实体上的文件
type Upload struct {
	BaseModel
	FileName     string     `gorm:"type:varchar(255)" json:"file_name"` // 存储键
	OriginalName string     `gorm:"type:varchar(255);not null" json:"original_name"`
	MimeType     string     `gorm:"type:varchar(100)" json:"mime_type"`
	Size         int64      `json:"size"`
	URL          string     `gorm:"type:varchar(1000)" json:"url"`
	EntityType   EntityType `gorm:"type:varchar(50);not null;index:idx_uploads_entity" json:"entity_type"`
	EntityID     string     `gorm:"type:varchar(36);not null;index:idx_uploads_entity" json:"entity_id"`
	UploadedBy   string     `gorm:"type:varchar(36)" json:"uploaded_by"`
}
