package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"midnight_match/internal/repository"
	"midnight_match/internal/service"
)

// MatchHandler 處理配對階段與會話記錄的查詢請求
type MatchHandler struct {
	phaseService *service.PhaseService
	sessionRepo  repository.SessionRepository
}

// NewMatchHandler 創建一個新的 MatchHandler 實例
func NewMatchHandler(phaseService *service.PhaseService, sessionRepo repository.SessionRepository) *MatchHandler {
	return &MatchHandler{
		phaseService: phaseService,
		sessionRepo:  sessionRepo,
	}
}

// GetPhase 回傳目前的全域配對階段
func (h *MatchHandler) GetPhase(c *gin.Context) {
	phase, err := h.phaseService.Current(context.Background())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "無法讀取配對階段"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phase": string(phase)})
}

// GetSession 回傳一場已歸檔會話的記錄，僅限參與者查詢
func (h *MatchHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.sessionRepo.FindBySessionID(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "會話不存在"})
		return
	}

	userID, _ := c.Get("userID")
	if !session.IsParticipant(userID.(uint)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "用戶不是此會話的參與者"})
		return
	}

	c.JSON(http.StatusOK, session)
}
