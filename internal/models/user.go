package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的用戶
type User struct {
	gorm.Model        // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password   string `gorm:"not null" json:"-"`                    // 密碼，json 序列化時會被忽略
	Community  string `json:"community"`                            // 所屬社群，配對時的分區依據
	Gender     string `json:"gender"`                               // 性別，配對時的平衡屬性
	Avatar     string `json:"avatar"`                               // 頭像 URL
	Bio        string `json:"bio"`                                  // 自我介紹，揭示身份時才公開
}

// 平衡屬性的兩個優先分組值，其餘值落入剩餘組
const (
	GenderMale   = "male"
	GenderFemale = "female"
)
