package service

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn     *websocket.Conn // WebSocket 連接
	UserID   uint            // 用戶 ID
	SendChan chan *Event     // 事件發送通道，用於異步傳送事件
	done     chan struct{}   // 連線被同一用戶的新連線取代時關閉
}

// HandleConnection 處理新的 WebSocket 連接請求，
// 阻塞直到連線關閉，同一用戶重複連線時會取代舊連線
func (g *RoomGateway) HandleConnection(conn *websocket.Conn, userID uint) {
	client := &Client{
		Conn:     conn,
		UserID:   userID,
		SendChan: make(chan *Event, 256), // 設置緩衝大小為 256 的事件通道
		done:     make(chan struct{}),
	}

	g.register(client)

	// 確保連接關閉時清理資源
	defer func() {
		g.unregister(client)
		conn.Close()
	}()

	// 啟動讀寫處理
	go g.writePump(client)
	g.readPump(client)
}

// readPump 持續監聽並處理從客戶端接收的指令
func (g *RoomGateway) readPump(client *Client) {
	client.Conn.SetReadLimit(4096) // 設置最大消息大小為 4KB
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket unexpected close error: %v", err)
			}
			break
		}

		// 解析並驗證指令封包
		var cmd Inbound
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Printf("command parse error: %v", err)
			continue
		}
		if err := cmd.Validate(); err != nil {
			g.sendToClient(client, NewErrorEvent(err))
			continue
		}

		g.handler(client, &cmd)
	}
}

// writePump 處理向客戶端發送事件的邏輯
func (g *RoomGateway) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			// 設置寫入超時
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// 獲取寫入器並發送事件
			w, err := client.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			// JSON 編碼
			eventBytes, err := json.Marshal(event)
			if err != nil {
				log.Printf("event encoding error: %v", err)
				continue
			}

			if _, err := w.Write(eventBytes); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-client.done:
			// 連線已被新連線取代，立即關閉並退出
			client.Conn.Close()
			return
		}
	}
}
