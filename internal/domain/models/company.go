package models

// Company 表示房东名下的物业公司，是数据隔离的根
type Company struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null" json:"name"`
	Email   string `gorm:"type:varchar(255)" json:"email"`
	Phone   string `gorm:"type:varchar(50)" json:"phone"`
	Address string `gorm:"type:text" json:"address"`
	OwnerID string `gorm:"type:varchar(36);not null;index" json:"owner_id"` // 所属用户ID
}
