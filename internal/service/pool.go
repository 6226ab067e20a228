package service

import (
	"context"
	"encoding/json"

	"midnight_match/internal/repository"
	"midnight_match/internal/storage"
)

// Candidate 候選佇列中的一個條目，以 JSON 形式存在分區列表裡
type Candidate struct {
	UserID uint   `json:"user_id"`
	Gender string `json:"gender"` // 平衡屬性，配對時優先跨組
}

// PoolService 管理配對池的加入與退出。
// 佇列本身在共享庫中，佇列成員的連線狀態由 RoomGateway 追蹤；
// 斷線不會移除佇列條目，只有明確的 leave_pool 會
type PoolService struct {
	store   storage.Store
	users   repository.UserRepository
	phases  *PhaseService
	gateway *RoomGateway
}

func NewPoolService(store storage.Store, users repository.UserRepository, phases *PhaseService, gateway *RoomGateway) *PoolService {
	return &PoolService{
		store:   store,
		users:   users,
		phases:  phases,
		gateway: gateway,
	}
}

// Join 驗證並將用戶排入所屬分區的候選佇列：
// 只有 LOBBY 階段接受加入；持有未過期每日標記的用戶會被拒絕；
// 個人資料缺少社群欄位的也會被拒絕
func (s *PoolService) Join(ctx context.Context, userID uint) (string, error) {
	phase, err := s.phases.Current(ctx)
	if err != nil {
		return "", err
	}
	if phase != PhaseLobby {
		return "", ErrPhaseClosed
	}

	// 已在大廳中的重複 join 只重新確認，不重複排隊
	if community, ok := s.gateway.LobbyOf(userID); ok {
		return community, nil
	}

	marked, err := s.store.Exists(ctx, markKey(userID))
	if err != nil {
		return "", err
	}
	if marked {
		return "", ErrAlreadyParticipatedToday
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return "", err
	}
	if user.Community == "" {
		return "", ErrProfileIncomplete
	}

	entry, err := json.Marshal(Candidate{UserID: userID, Gender: user.Gender})
	if err != nil {
		return "", err
	}
	if err := s.store.ListPush(ctx, queueKey(user.Community), string(entry)); err != nil {
		return "", err
	}

	// 訂閱分區大廳的廣播組
	s.gateway.JoinLobby(user.Community, userID)
	return user.Community, nil
}

// Leave 將用戶移出候選佇列（明確的 leave_pool 指令）
func (s *PoolService) Leave(ctx context.Context, userID uint) error {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}
	if user.Community == "" {
		return ErrNotInPool
	}

	entry, err := json.Marshal(Candidate{UserID: userID, Gender: user.Gender})
	if err != nil {
		return err
	}
	if err := s.store.ListRemove(ctx, queueKey(user.Community), string(entry)); err != nil {
		return err
	}

	s.gateway.LeaveLobby(userID)
	return nil
}
