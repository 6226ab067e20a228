package service

import (
	"context"
	"strconv"

	"midnight_match/internal/storage"
)

// Phase 定義全域配對階段，整個部署只有一個值，
// 存在共享庫中讓所有伺服器實例觀察到同一個階段
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"    // 開放加入配對池
	PhaseMatching Phase = "MATCHING" // 配對進行中，不再接受加入
	PhaseClosed   Phase = "CLOSED"   // 今晚的配對已結束
)

// 共享庫的 key 佈局
const (
	phaseKey       = "match:phase"
	queueKeyPrefix = "match:queue:"  // 之後接分區（社群）名稱
	markKeyPrefix  = "match:joined:" // 之後接用戶 ID，帶 TTL
	voteKeyPrefix  = "match:votes:"  // 之後接會話 ID
	claimKeyPrefix = "match:claim:"  // 之後接會話 ID，定案權的原子認領
)

func queueKey(community string) string {
	return queueKeyPrefix + community
}

func markKey(userID uint) string {
	return markKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func voteKey(sessionID string) string {
	return voteKeyPrefix + sessionID
}

func claimKey(sessionID string) string {
	return claimKeyPrefix + sessionID
}

// PhaseService 讀寫全域階段旗標
type PhaseService struct {
	store storage.Store
}

func NewPhaseService(store storage.Store) *PhaseService {
	return &PhaseService{store: store}
}

// Current 回傳目前的階段，旗標未設置時視為 CLOSED
func (s *PhaseService) Current(ctx context.Context) (Phase, error) {
	val, err := s.store.Get(ctx, phaseKey)
	if err != nil {
		return PhaseClosed, err
	}
	if val == "" {
		return PhaseClosed, nil
	}
	return Phase(val), nil
}

// Set 切換全域階段，只應由排程器呼叫
func (s *PhaseService) Set(ctx context.Context, phase Phase) error {
	return s.store.Set(ctx, phaseKey, string(phase), 0)
}
