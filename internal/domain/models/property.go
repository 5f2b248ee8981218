package models

// Property 表示公司名下的一处物业（楼盘）
type Property struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Address     string `gorm:"type:text;not null" json:"address"`
	Type        string `gorm:"type:varchar(50)" json:"type"` // apartment, villa, office ...
	Description string `gorm:"type:text" json:"description"`
	TotalUnits  int    `gorm:"default:0" json:"total_units"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url"`
	CompanyID   string `gorm:"type:varchar(36);not null;index" json:"company_id"`
}
