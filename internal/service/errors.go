package service

import "errors"

// 配對子系統的錯誤分類，handler 層以 errors.Is 判別後
// 轉成帶錯誤碼的 error 事件回報給連線，不會讓行程崩潰
var (
	ErrPhaseClosed              = errors.New("目前不開放加入配對")
	ErrAlreadyParticipatedToday = errors.New("今天已經參加過配對")
	ErrProfileIncomplete        = errors.New("個人資料缺少社群欄位")
	ErrSessionNotFound          = errors.New("會話不存在或已結束")
	ErrNotInPool                = errors.New("用戶不在候選佇列中")
)

// 配對失敗事件的原因碼
const (
	ReasonPartnerUnavailable = "partner_unavailable" // 配對成立但對方連線已斷開
	ReasonOddCandidateOut    = "odd_candidate_out"   // 人數為奇數，輪空
	ReasonSessionError       = "session_error"       // 建立會話時發生錯誤，這對作廢
)

// ErrorCode 將錯誤映射為穩定的錯誤碼字串，供客戶端判別
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPhaseClosed):
		return "phase_closed"
	case errors.Is(err, ErrAlreadyParticipatedToday):
		return "already_participated_today"
	case errors.Is(err, ErrProfileIncomplete):
		return "profile_incomplete"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrNotInPool):
		return "not_in_pool"
	default:
		return "internal_error"
	}
}
