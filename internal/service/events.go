package service

import (
	"errors"
	"time"
)

// InboundType 定義客戶端送入的指令類型
type InboundType string

const (
	InboundJoinPool    InboundType = "join_pool"    // 加入今晚的配對池
	InboundLeavePool   InboundType = "leave_pool"   // 離開候選佇列
	InboundSendMessage InboundType = "send_message" // 在會話房間內發言
	InboundCastVote    InboundType = "cast_vote"    // 投下揭示身份的一票
)

// Inbound 是傳輸層邊界上的指令封包，
// 每種指令的必要欄位在 Validate 中檢查，未知類型一律拒絕
type Inbound struct {
	Type    InboundType `json:"type"`
	Content string      `json:"content,omitempty"` // send_message 的訊息內容
	Consent *bool       `json:"consent,omitempty"` // cast_vote 的同意與否
}

func (m *Inbound) Validate() error {
	switch m.Type {
	case InboundJoinPool, InboundLeavePool:
		return nil
	case InboundSendMessage:
		if m.Content == "" {
			return errors.New("send_message 需要 content 欄位")
		}
		return nil
	case InboundCastVote:
		if m.Consent == nil {
			return errors.New("cast_vote 需要 consent 欄位")
		}
		return nil
	default:
		return errors.New("未知的指令類型: " + string(m.Type))
	}
}

// EventType 定義伺服器推送的事件類型
type EventType string

const (
	EventPhaseChanged  EventType = "phase_changed"
	EventJoined        EventType = "joined"
	EventError         EventType = "error"
	EventMatchFound    EventType = "match_found"
	EventMatchFailed   EventType = "match_failed"
	EventMessage       EventType = "message"
	EventTimeUp        EventType = "time_up"
	EventPartnerVoted  EventType = "partner_voted"
	EventRevealSuccess EventType = "reveal_success"
	EventGameOver      EventType = "game_over"
)

// Profile 揭示身份時公開的個人資料欄位
type Profile struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Community string `json:"community"`
	Gender    string `json:"gender"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
}

// Event 是伺服器推送事件的統一封包，未用到的欄位省略
type Event struct {
	Type      EventType  `json:"type"`
	Phase     string     `json:"phase,omitempty"`
	Community string     `json:"community,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	SenderID  uint       `json:"sender_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Result    string     `json:"result,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Profiles  []Profile  `json:"profiles,omitempty"`
	Code      string     `json:"code,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// NewPhaseEvent 創建階段變更通知
func NewPhaseEvent(phase Phase) *Event {
	return &Event{Type: EventPhaseChanged, Phase: string(phase)}
}

// NewJoinedEvent 創建加入配對池的確認通知
func NewJoinedEvent(community string) *Event {
	return &Event{Type: EventJoined, Community: community}
}

// NewErrorEvent 將錯誤包裝成結構化的錯誤事件
func NewErrorEvent(err error) *Event {
	return &Event{Type: EventError, Code: ErrorCode(err), Message: err.Error()}
}

// NewMatchFoundEvent 創建配對成功通知
func NewMatchFoundEvent(sessionID string, expiresAt time.Time) *Event {
	return &Event{Type: EventMatchFound, SessionID: sessionID, ExpiresAt: &expiresAt}
}

// NewMatchFailedEvent 創建配對失敗通知
func NewMatchFailedEvent(reason string) *Event {
	return &Event{Type: EventMatchFailed, Reason: reason}
}

// NewMessageEvent 創建房間內的對話消息，時間戳由伺服器指定
func NewMessageEvent(sessionID string, senderID uint, content string, at time.Time) *Event {
	return &Event{Type: EventMessage, SessionID: sessionID, SenderID: senderID, Content: content, Timestamp: &at}
}

// NewTimeUpEvent 創建計時結束通知，提示雙方開始投票
func NewTimeUpEvent(sessionID string) *Event {
	return &Event{Type: EventTimeUp, SessionID: sessionID}
}

// NewPartnerVotedEvent 通知對方已投票（不透露內容）
func NewPartnerVotedEvent(sessionID string) *Event {
	return &Event{Type: EventPartnerVoted, SessionID: sessionID}
}

// NewRevealEvent 創建揭示成功通知，附帶雙方的公開資料
func NewRevealEvent(sessionID string, profiles []Profile) *Event {
	return &Event{Type: EventRevealSuccess, SessionID: sessionID, Profiles: profiles}
}

// NewGameOverEvent 創建會話結束通知
func NewGameOverEvent(sessionID string, result string) *Event {
	return &Event{Type: EventGameOver, SessionID: sessionID, Result: result}
}
