package models

// User 表示通过外部身份提供方登录的用户
type User struct {
	BaseModel
	Email           *string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FirstName       string  `gorm:"type:varchar(100)" json:"first_name"`
	LastName        string  `gorm:"type:varchar(100)" json:"last_name"`
	ProfileImageURL string  `gorm:"type:varchar(500)" json:"profile_image_url"`
}
