package models

// AssistantLog 助手问答记录，只追加不修改
type AssistantLog struct {
	BaseModel
	UserID    string `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Query     string `gorm:"type:text;not null" json:"query"`
	Response  string `gorm:"type:text;not null" json:"response"`
	SessionID string `gorm:"type:varchar(64);index" json:"session_id"`
}
