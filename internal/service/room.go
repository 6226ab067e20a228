package service

import (
	"log"
	"sync"
	"time"

	"midnight_match/internal/models"
	"midnight_match/internal/repository"
)

// CommandHandler 處理一條已通過驗證的客戶端指令
type CommandHandler func(client *Client, cmd *Inbound)

// RoomGateway 管理所有的 WebSocket 連接、配對房間與分區大廳。
// 連線以用戶 ID 為鍵，斷線重連會透明地回到原本的房間；
// 房間只是會話 ID 到兩個用戶 ID 的對應，每次發送時才解析連線
type RoomGateway struct {
	mu        sync.RWMutex
	clients   map[uint]*Client         // userID -> 當前連線
	rooms     map[string][2]uint       // sessionID -> 兩位成員
	userRoom  map[uint]string          // userID -> sessionID
	lobbies   map[string]map[uint]bool // 分區 -> 大廳成員
	userLobby map[uint]string          // userID -> 分區

	sessions repository.SessionRepository // 對話記錄的持久層
	handler  CommandHandler
}

func NewRoomGateway(sessions repository.SessionRepository) *RoomGateway {
	return &RoomGateway{
		clients:   make(map[uint]*Client),
		rooms:     make(map[string][2]uint),
		userRoom:  make(map[uint]string),
		lobbies:   make(map[string]map[uint]bool),
		userLobby: make(map[uint]string),
		sessions:  sessions,
	}
}

// SetHandler 設置指令分派函數，必須在接受連線前呼叫
func (g *RoomGateway) SetHandler(handler CommandHandler) {
	g.handler = handler
}

// register 安全地添加新的客戶端連接，同一用戶的舊連線會被取代：
// 通知舊連線的 writePump 立即關閉連線並退出，不等到下一次心跳
func (g *RoomGateway) register(client *Client) {
	g.mu.Lock()
	old := g.clients[client.UserID]
	g.clients[client.UserID] = client
	g.mu.Unlock()

	if old != nil {
		close(old.done)
	}
}

// unregister 安全地移除客戶端連接。
// 只移除連線本身：大廳與房間的成員資格保留，
// 斷線的候選人仍可能被配對（已知的公平性缺口，維持原行為）
func (g *RoomGateway) unregister(client *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.clients[client.UserID] == client {
		delete(g.clients, client.UserID)
	}
}

// IsOnline 檢查用戶目前是否有活躍連線
func (g *RoomGateway) IsOnline(userID uint) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.clients[userID]
	return ok
}

// sendToClient 將事件放入客戶端的發送隊列
func (g *RoomGateway) sendToClient(client *Client, event *Event) {
	select {
	case client.SendChan <- event:
		// 事件成功加入發送隊列
	default:
		// 客戶端事件隊列已滿，關閉連接
		g.unregister(client)
		client.Conn.Close()
	}
}

// SendToUser 向指定用戶發送事件，回傳是否找到活躍連線
func (g *RoomGateway) SendToUser(userID uint, event *Event) bool {
	g.mu.RLock()
	client, ok := g.clients[userID]
	g.mu.RUnlock()

	if !ok {
		return false
	}
	g.sendToClient(client, event)
	return true
}

// BroadcastAll 向所有連線中的客戶端廣播事件（階段變更用）
func (g *RoomGateway) BroadcastAll(event *Event) {
	g.mu.RLock()
	clients := make([]*Client, 0, len(g.clients))
	for _, client := range g.clients {
		clients = append(clients, client)
	}
	g.mu.RUnlock()

	for _, client := range clients {
		g.sendToClient(client, event)
	}
}

// JoinLobby 將用戶加入分區大廳的廣播組
func (g *RoomGateway) JoinLobby(community string, userID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lobbies[community] == nil {
		g.lobbies[community] = make(map[uint]bool)
	}
	g.lobbies[community][userID] = true
	g.userLobby[userID] = community
}

// LobbyOf 回傳用戶目前訂閱的分區大廳
func (g *RoomGateway) LobbyOf(userID uint) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	community, ok := g.userLobby[userID]
	return community, ok
}

// LeaveLobby 將用戶移出分區大廳
func (g *RoomGateway) LeaveLobby(userID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if community, ok := g.userLobby[userID]; ok {
		delete(g.lobbies[community], userID)
		if len(g.lobbies[community]) == 0 {
			delete(g.lobbies, community)
		}
		delete(g.userLobby, userID)
	}
}

// BindRoom 將兩位用戶綁進以會話 ID 為鍵的私人房間，
// 同時把他們移出大廳
func (g *RoomGateway) BindRoom(sessionID string, userA, userB uint) {
	g.LeaveLobby(userA)
	g.LeaveLobby(userB)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.rooms[sessionID] = [2]uint{userA, userB}
	g.userRoom[userA] = sessionID
	g.userRoom[userB] = sessionID
}

// RoomOf 回傳用戶目前所在的會話 ID
func (g *RoomGateway) RoomOf(userID uint) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	sessionID, ok := g.userRoom[userID]
	return sessionID, ok
}

// BroadcastRoom 向房間的兩位成員發送事件，
// 成員的連線在發送當下才解析，斷線者靜默跳過
func (g *RoomGateway) BroadcastRoom(sessionID string, event *Event) {
	g.mu.RLock()
	members, ok := g.rooms[sessionID]
	g.mu.RUnlock()

	if !ok {
		return
	}
	for _, userID := range members {
		g.SendToUser(userID, event)
	}
}

// RelayMessage 在房間內轉發一條對話消息：
// 標記發送者與伺服器時間戳、附加到會話的對話記錄、推送給雙方
func (g *RoomGateway) RelayMessage(senderID uint, content string) error {
	sessionID, ok := g.RoomOf(senderID)
	if !ok {
		return ErrSessionNotFound
	}

	session, err := g.sessions.FindBySessionID(sessionID)
	if err != nil {
		return ErrSessionNotFound
	}

	now := time.Now()
	record := &models.SessionMessage{
		SenderID:  senderID,
		Content:   content,
		Timestamp: now,
	}
	if err := g.sessions.AppendMessage(session, record); err != nil {
		// 記錄失敗不影響即時轉發
		log.Printf("session %s: append message failed: %v", sessionID, err)
	}

	g.BroadcastRoom(sessionID, NewMessageEvent(sessionID, senderID, content, now))
	return nil
}

// ResetRooms 清除所有房間與大廳的成員資格，
// 排程器在每晚重新開放時呼叫
func (g *RoomGateway) ResetRooms() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rooms = make(map[string][2]uint)
	g.userRoom = make(map[uint]string)
	g.lobbies = make(map[string]map[uint]bool)
	g.userLobby = make(map[uint]string)
}
