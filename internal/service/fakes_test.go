package service

import (
	"errors"
	"sync"

	"midnight_match/internal/models"
)

// 記憶體版的 repository 假實作，供本包測試使用

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Create(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
	return nil
}

func (r *fakeSessionRepo) FindBySessionID(sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (r *fakeSessionRepo) Update(session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
	return nil
}

func (r *fakeSessionRepo) AppendMessage(session *models.Session, message *models.SessionMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(session.Messages) >= models.MaxSessionMessages {
		return nil
	}
	session.Messages = append(session.Messages, *message)
	return nil
}

// registerTestClient 註冊一個沒有底層連線的客戶端，
// 事件從 SendChan 直接讀取
func registerTestClient(gateway *RoomGateway, userID uint) *Client {
	client := &Client{
		UserID:   userID,
		SendChan: make(chan *Event, 64),
		done:     make(chan struct{}),
	}
	gateway.mu.Lock()
	gateway.clients[userID] = client
	gateway.mu.Unlock()
	return client
}

// drainEvents 非阻塞地取出客戶端已收到的所有事件
func drainEvents(client *Client) []*Event {
	var events []*Event
	for {
		select {
		case event := <-client.SendChan:
			events = append(events, event)
		default:
			return events
		}
	}
}

// eventsOfType 過濾出特定類型的事件
func eventsOfType(events []*Event, eventType EventType) []*Event {
	var matched []*Event
	for _, event := range events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
