package service

import (
	"context"
	"strconv"

	"midnight_match/internal/models"
	"midnight_match/internal/repository"
	"midnight_match/internal/storage"
)

// VoteService 收集每個房間的揭示投票並裁定結果。
// 兩票同意即揭示雙方身份；任一票反對立即判定失敗，
// 對方已投的票作廢。REVEALED 和 FAILED 都是終態，
// 終態後的投票一律以會話不存在處理
type VoteService struct {
	store    storage.Store
	sessions repository.SessionRepository
	users    repository.UserRepository
	gateway  *RoomGateway
}

func NewVoteService(store storage.Store, sessions repository.SessionRepository, users repository.UserRepository, gateway *RoomGateway) *VoteService {
	return &VoteService{
		store:    store,
		sessions: sessions,
		users:    users,
		gateway:  gateway,
	}
}

// Cast 記錄一票。投票集合存在共享庫中，
// 兩位參與者並發投票時以集合的原子加入與基數判定共識
func (s *VoteService) Cast(ctx context.Context, sessionID string, userID uint, consent bool) error {
	session, err := s.sessions.FindBySessionID(sessionID)
	if err != nil {
		return ErrSessionNotFound
	}
	if session.Status != models.SessionActive {
		return ErrSessionNotFound
	}
	if !session.IsParticipant(userID) {
		return ErrSessionNotFound
	}

	if !consent {
		return s.fail(ctx, session)
	}

	added, err := s.store.SetAdd(ctx, voteKey(sessionID), strconv.FormatUint(uint64(userID), 10))
	if err != nil {
		return err
	}

	// 重複投票也要重新檢查基數：揭示若曾因暫時性錯誤失敗，
	// 會話仍是 ACTIVE，共識必須能由之後的投票再次驅動
	count, err := s.store.SetCard(ctx, voteKey(sessionID))
	if err != nil {
		return err
	}
	if count >= 2 {
		// 原子認領定案權，兩位參與者並發投票時只有一方執行揭示
		claimed, err := s.store.SetAdd(ctx, claimKey(sessionID), "1")
		if err != nil {
			return err
		}
		if claimed == 0 {
			return nil
		}
		if err := s.reveal(ctx, session); err != nil {
			// 揭示失敗時釋放認領，讓重試能再次定案
			s.store.Delete(ctx, claimKey(sessionID))
			return err
		}
		return nil
	}

	if added > 0 {
		// 只通知對方「已投票」，不透露任何內容；重複投票不重複通知
		s.gateway.SendToUser(session.PartnerOf(userID), NewPartnerVotedEvent(sessionID))
	}
	return nil
}

// fail 以 FAILED 終結會話：廣播結果、持久化狀態、刪除投票集合
func (s *VoteService) fail(ctx context.Context, session *models.Session) error {
	s.gateway.BroadcastRoom(session.SessionID, NewGameOverEvent(session.SessionID, string(models.SessionFailed)))

	session.Status = models.SessionFailed
	if err := s.sessions.Update(session); err != nil {
		return err
	}
	return s.store.Delete(ctx, voteKey(session.SessionID), claimKey(session.SessionID))
}

// reveal 兩票到齊：查詢雙方的公開資料並廣播，
// 投票集合持久化到會話記錄後刪除
func (s *VoteService) reveal(ctx context.Context, session *models.Session) error {
	members, err := s.store.SetMembers(ctx, voteKey(session.SessionID))
	if err != nil {
		return err
	}

	votes := make([]uint, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			continue
		}
		votes = append(votes, uint(id))
	}

	profiles := make([]Profile, 0, 2)
	for _, userID := range []uint{session.UserAID, session.UserBID} {
		user, err := s.users.FindByID(userID)
		if err != nil {
			return err
		}
		profiles = append(profiles, Profile{
			UserID:    user.ID,
			Username:  user.Username,
			Community: user.Community,
			Gender:    user.Gender,
			Avatar:    user.Avatar,
			Bio:       user.Bio,
		})
	}

	// 先持久化再廣播：持久化失敗時重試不會造成重複的揭示通知
	session.Status = models.SessionRevealed
	session.RevealVotes = votes
	if err := s.sessions.Update(session); err != nil {
		session.Status = models.SessionActive
		session.RevealVotes = nil
		return err
	}

	s.gateway.BroadcastRoom(session.SessionID, NewRevealEvent(session.SessionID, profiles))
	return s.store.Delete(ctx, voteKey(session.SessionID), claimKey(session.SessionID))
}
