package models

// Tenant 表示公司登记的租客
type Tenant struct {
	BaseModel
	FirstName        string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName         string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email            string `gorm:"type:varchar(255)" json:"email"`
	Phone            string `gorm:"type:varchar(50)" json:"phone"`
	EmergencyContact string `gorm:"type:text" json:"emergency_contact"`
	CompanyID        string `gorm:"type:varchar(36);not null;index" json:"company_id"`
}
