package models

// UnitStatus 单元状态
type UnitStatus string

const (
	UnitStatusVacant      UnitStatus = "vacant"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// Valid 判断状态是否属于允许的取值
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusVacant, UnitStatusOccupied, UnitStatusMaintenance:
		return true
	}
	return false
}

// Unit 表示物业下可出租的单元
type Unit struct {
	BaseModel
	UnitNumber string     `gorm:"type:varchar(50);not null" json:"unit_number"`
	Bedrooms   int        `gorm:"default:0" json:"bedrooms"`
	Bathrooms  int        `gorm:"default:0" json:"bathrooms"`
	SquareFeet int        `gorm:"default:0" json:"square_feet"`
	Rent       float64    `gorm:"type:decimal(10,2);default:0" json:"rent"`
	Deposit    float64    `gorm:"type:decimal(10,2);default:0" json:"deposit"`
	Status     UnitStatus `gorm:"type:varchar(20);default:'vacant'" json:"status"` // 读取时由租约推导，存储值仅 maintenance 有效
	PropertyID string     `gorm:"type:varchar(36);not null;index" json:"property_id"`
}
