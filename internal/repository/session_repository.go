package repository

import (
	"midnight_match/internal/models"
	"midnight_match/internal/storage"
)

type SessionRepository interface {
	Create(session *models.Session) error
	FindBySessionID(sessionID string) (*models.Session, error)
	Update(session *models.Session) error
	AppendMessage(session *models.Session, message *models.SessionMessage) error
}

type sessionRepository struct {
	db *storage.PostgresDB
}

func NewSessionRepository(db *storage.PostgresDB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *sessionRepository) FindBySessionID(sessionID string) (*models.Session, error) {
	var session models.Session
	err := r.db.Preload("Messages").Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Update(session *models.Session) error {
	return r.db.Save(session).Error
}

// AppendMessage 附加一條對話記錄，超過上限後靜默丟棄
func (r *sessionRepository) AppendMessage(session *models.Session, message *models.SessionMessage) error {
	var count int64
	if err := r.db.Model(&models.SessionMessage{}).
		Where("session_ref = ?", session.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxSessionMessages {
		return nil
	}

	message.SessionRef = session.ID
	return r.db.Create(message).Error
}
