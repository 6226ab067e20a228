package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"
)

// Session 表示一場配對會話：一對用戶、對話記錄與揭示結果
type Session struct {
	gorm.Model
	SessionID   string           `gorm:"uniqueIndex;not null" json:"session_id"` // 對外的會話識別碼
	UserAID     uint             `json:"user_a_id"`
	UserBID     uint             `json:"user_b_id"`
	Community   string           `json:"community"` // 形成配對的分區
	Status      SessionStatus    `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	ExpiresAt   time.Time        `json:"expires_at"`                            // 計時結束、開始投票的時刻
	Messages    []SessionMessage `gorm:"foreignKey:SessionRef" json:"messages"` // 會話期間的對話記錄
	RevealVotes []uint           `gorm:"type:integer[]" json:"reveal_votes"`    // 同意揭示的用戶 ID 列表
}

// SessionStatus 定義會話狀態的類型
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"   // 會話進行中
	SessionRevealed SessionStatus = "revealed" // 雙方同意揭示身份
	SessionFailed   SessionStatus = "failed"   // 拒絕揭示或中途失敗
)

// SessionMessage 表示會話中的一條消息
type SessionMessage struct {
	gorm.Model
	SessionRef uint      `json:"-"` // 所屬 Session 的主鍵
	SenderID   uint      `json:"sender_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"` // 伺服器端指定的時間戳
}

// MaxSessionMessages 每場會話保留的對話記錄上限
const MaxSessionMessages = 200

// NewSessionID 產生不可預測的會話識別碼
func NewSessionID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "sess_" + hex.EncodeToString(bytes)
}

// IsParticipant 檢查用戶是否為會話的一方
func (s *Session) IsParticipant(userID uint) bool {
	return s.UserAID == userID || s.UserBID == userID
}

// PartnerOf 回傳對方的用戶 ID，不是參與者時回傳 0
func (s *Session) PartnerOf(userID uint) uint {
	switch userID {
	case s.UserAID:
		return s.UserBID
	case s.UserBID:
		return s.UserAID
	default:
		return 0
	}
}
