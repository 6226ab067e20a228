package service

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"midnight_match/internal/models"
	"midnight_match/internal/repository"
	"midnight_match/internal/storage"
)

// MatchService 在階段切換到 MATCHING 時執行一次配對：
// 排空每個分區的候選佇列、按平衡屬性兩階段配對、
// 為每對活躍連線建立會話並綁定房間
type MatchService struct {
	store    storage.Store
	sessions repository.SessionRepository
	gateway  *RoomGateway

	sessionTTL time.Duration // 會話的活躍時長
	markTTL    time.Duration // 每日參與標記的存活時間

	mu sync.Mutex // 保證同一時間只有一次配對在執行
}

func NewMatchService(store storage.Store, sessions repository.SessionRepository, gateway *RoomGateway, sessionTTL, markTTL time.Duration) *MatchService {
	return &MatchService{
		store:      store,
		sessions:   sessions,
		gateway:    gateway,
		sessionTTL: sessionTTL,
		markTTL:    markTTL,
	}
}

// Run 對所有分區執行一輪配對。
// 不可重入：若上一輪還在執行，這次觸發直接跳過。
// 單一分區的失敗只記錄並隔離，不影響其他分區
func (s *MatchService) Run(ctx context.Context) {
	if !s.mu.TryLock() {
		log.Printf("matching already in progress, skipping trigger")
		return
	}
	defer s.mu.Unlock()

	keys, err := s.store.Keys(ctx, queueKeyPrefix)
	if err != nil {
		log.Printf("matching: list queues failed: %v", err)
		return
	}

	for _, key := range keys {
		community := strings.TrimPrefix(key, queueKeyPrefix)
		if err := s.runPartition(ctx, community); err != nil {
			log.Printf("matching: partition %s failed: %v", community, err)
		}
	}
}

// runPartition 排空一個分區並配對其中的候選人。
// 佇列在這裡被原子取出並刪除，無論結果如何都不保留到下一輪
func (s *MatchService) runPartition(ctx context.Context, community string) error {
	raw, err := s.store.ListDrain(ctx, queueKey(community))
	if err != nil {
		return err
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, entry := range raw {
		var c Candidate
		if err := json.Unmarshal([]byte(entry), &c); err != nil {
			log.Printf("matching: partition %s: bad queue entry dropped: %v", community, err)
			continue
		}
		candidates = append(candidates, c)
	}

	pairs, odd := pairCandidates(candidates)

	for _, pair := range pairs {
		if err := s.formSession(ctx, community, pair); err != nil {
			// 單一配對的失敗不中斷其餘配對
			log.Printf("matching: partition %s: form session failed: %v", community, err)
		}
	}

	if odd != nil {
		// 輪空者今晚不再重試，明天需重新加入
		s.gateway.SendToUser(odd.UserID, NewMatchFailedEvent(ReasonOddCandidateOut))
	}
	return nil
}

// pairCandidates 兩階段配對演算法。
// 先把候選人按平衡屬性分成兩個優先組與剩餘組，各自均勻洗牌；
// 主要階段反覆從兩組各取一人成對，直到其中一組耗盡，
// 最大化跨組配對；後備階段把所有剩餘者合併再洗牌，兩兩成對，
// 保證沒有人單純因組別失衡而落單。剩最後一人時回傳為輪空者。
// 兩階段的結構是公平性規約的一部分，不可簡化為單次隨機配對
func pairCandidates(candidates []Candidate) ([][2]Candidate, *Candidate) {
	var groupA, groupB, rest []Candidate
	for _, c := range candidates {
		switch c.Gender {
		case models.GenderMale:
			groupA = append(groupA, c)
		case models.GenderFemale:
			groupB = append(groupB, c)
		default:
			rest = append(rest, c)
		}
	}

	shuffle(groupA)
	shuffle(groupB)
	shuffle(rest)

	var pairs [][2]Candidate

	// 主要配對：跨組成對直到一組耗盡
	for len(groupA) > 0 && len(groupB) > 0 {
		pairs = append(pairs, [2]Candidate{groupA[0], groupB[0]})
		groupA = groupA[1:]
		groupB = groupB[1:]
	}

	// 後備配對：所有剩餘者合併洗牌後兩兩成對
	leftover := append(append(groupA, groupB...), rest...)
	shuffle(leftover)
	for len(leftover) >= 2 {
		pairs = append(pairs, [2]Candidate{leftover[0], leftover[1]})
		leftover = leftover[2:]
	}

	if len(leftover) == 1 {
		odd := leftover[0]
		return pairs, &odd
	}
	return pairs, nil
}

func (s *MatchService) writeMarks(ctx context.Context, userIDs ...uint) error {
	for _, userID := range userIDs {
		if err := s.store.Set(ctx, markKey(userID), "1", s.markTTL); err != nil {
			return err
		}
	}
	return nil
}

func shuffle(list []Candidate) {
	rand.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
}

// formSession 為一對候選人建立會話。
// 先確認雙方連線仍然活躍：任一方已斷線，這對即作廢，
// 活著的一方收到配對失敗通知，今晚不再重排
func (s *MatchService) formSession(ctx context.Context, community string, pair [2]Candidate) error {
	a, b := pair[0], pair[1]

	aOnline := s.gateway.IsOnline(a.UserID)
	bOnline := s.gateway.IsOnline(b.UserID)
	if !aOnline || !bOnline {
		if aOnline {
			s.gateway.SendToUser(a.UserID, NewMatchFailedEvent(ReasonPartnerUnavailable))
		}
		if bOnline {
			s.gateway.SendToUser(b.UserID, NewMatchFailedEvent(ReasonPartnerUnavailable))
		}
		return nil
	}

	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	session := &models.Session{
		SessionID: models.NewSessionID(),
		UserAID:   a.UserID,
		UserBID:   b.UserID,
		Community: community,
		Status:    models.SessionActive,
		StartedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(session); err != nil {
		return err
	}

	// 寫入每日參與標記，TTL 內不得再次加入。
	// 標記寫入失敗時整對作廢：會話轉為 FAILED、已寫的標記回收，
	// 不留下沒有房間的 ACTIVE 會話
	if err := s.writeMarks(ctx, a.UserID, b.UserID); err != nil {
		s.store.Delete(ctx, markKey(a.UserID), markKey(b.UserID))
		session.Status = models.SessionFailed
		if uerr := s.sessions.Update(session); uerr != nil {
			log.Printf("matching: session %s: rollback failed: %v", session.SessionID, uerr)
		}
		s.gateway.SendToUser(a.UserID, NewMatchFailedEvent(ReasonSessionError))
		s.gateway.SendToUser(b.UserID, NewMatchFailedEvent(ReasonSessionError))
		return err
	}

	s.gateway.BindRoom(session.SessionID, a.UserID, b.UserID)
	s.gateway.SendToUser(a.UserID, NewMatchFoundEvent(session.SessionID, expiresAt))
	s.gateway.SendToUser(b.UserID, NewMatchFoundEvent(session.SessionID, expiresAt))

	// 計時結束的延遲通知：僅提示開始投票，不關閉房間，發送失敗不重試
	sessionID := session.SessionID
	time.AfterFunc(time.Until(expiresAt), func() {
		s.gateway.BroadcastRoom(sessionID, NewTimeUpEvent(sessionID))
	})

	log.Printf("matching: session %s formed in %s (%d, %d)", sessionID, community, a.UserID, b.UserID)
	return nil
}

// ClearQueues 刪除所有分區的候選佇列，每晚重新開放時呼叫
func (s *MatchService) ClearQueues(ctx context.Context) error {
	keys, err := s.store.Keys(ctx, queueKeyPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.store.Delete(ctx, keys...)
}
