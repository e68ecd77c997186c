package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"duo_dates/middleware"
	"duo_dates/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: 生产环境需要检查 Origin
		return true
	},
}

const onlineKeyTTL = 30 * time.Second

// Client WebSocket 客户端
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	mu     sync.Mutex
	closed bool // Send channel 是否已关闭
}

// Hub WebSocket 连接管理中心：通知在线推送 + Redis 在线状态
type Hub struct {
	// 在线用户 map[userID]map[clientID]*Client（支持多设备）
	Clients map[uuid.UUID]map[uuid.UUID]*Client
	mu      sync.RWMutex

	rdb *redis.Client
}

// NewHub 创建 Hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		Clients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rdb:     rdb,
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.Clients[client.UserID] == nil {
		h.Clients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.Clients[client.UserID][client.ID] = client
	h.mu.Unlock()

	if h.rdb != nil {
		ctx := context.Background()
		h.rdb.Set(ctx, "online:"+client.UserID.String(), "1", onlineKeyTTL)
	}

	log.Printf("User %s connected (client %s)", client.UserID, client.ID)
}

// Unregister 注销客户端（该用户最后一个连接断开时清除在线状态）
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	lastConnection := false
	if clients, ok := h.Clients[client.UserID]; ok {
		if _, ok := clients[client.ID]; ok {
			delete(clients, client.ID)
			client.mu.Lock()
			if !client.closed {
				client.closed = true
				close(client.Send)
			}
			client.mu.Unlock()
		}
		if len(clients) == 0 {
			delete(h.Clients, client.UserID)
			lastConnection = true
		}
	}
	h.mu.Unlock()

	if lastConnection && h.rdb != nil {
		ctx := context.Background()
		h.rdb.Del(ctx, "online:"+client.UserID.String())
	}
}

// IsUserOnline 用户是否在线（先查本进程连接，再查 Redis）
func (h *Hub) IsUserOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	_, ok := h.Clients[userID]
	h.mu.RUnlock()
	if ok {
		return true
	}

	if h.rdb != nil {
		ctx := context.Background()
		if exists, err := h.rdb.Exists(ctx, "online:"+userID.String()).Result(); err == nil {
			return exists > 0
		}
	}
	return false
}

// SendNotification 推送通知给用户的所有在线设备
func (h *Hub) SendNotification(userID uuid.UUID, notification interface{}) bool {
	payload, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to marshal notification: %v", err)
		return false
	}

	h.mu.RLock()
	clients := h.Clients[userID]
	sent := false
	for _, client := range clients {
		client.mu.Lock()
		if !client.closed {
			select {
			case client.Send <- payload:
				sent = true
			default:
				// 发送缓冲满，丢弃这条推送（客户端下次拉取时能看到）
			}
		}
		client.mu.Unlock()
	}
	h.mu.RUnlock()

	return sent
}

// ForceOffline 登出时强制断开用户的所有连接
func (h *Hub) ForceOffline(userIDStr string) {
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return
	}

	h.mu.Lock()
	clients := h.Clients[userID]
	delete(h.Clients, userID)
	h.mu.Unlock()

	for _, client := range clients {
		client.mu.Lock()
		if !client.closed {
			client.closed = true
			close(client.Send)
		}
		client.mu.Unlock()
		client.Conn.Close()
	}

	if h.rdb != nil {
		ctx := context.Background()
		h.rdb.Del(ctx, "online:"+userID.String())
	}
}

// HandleWebSocket WebSocket 连接入口（token 认证，不走 HTTP 中间件）
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			utils.Unauthorized(c, "missing token")
			return
		}

		userID, err := middleware.ValidateToken(tokenString)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ERROR] WebSocket upgrade failed for user %s: %v", userID, err)
			return
		}

		client := &Client{
			ID:     uuid.New(),
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 64),
			Hub:    hub,
		}

		hub.Register(client)

		go client.readPump()
		go client.writePump()
	}
}

// readPump 读取客户端消息（只处理心跳，其余丢弃）
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure) {
				log.Printf("[ERROR] User %s WebSocket unexpected close error: %v", c.UserID, err)
			}
			break
		}

		var wsMsg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			continue
		}

		if wsMsg.Type == "heartbeat" && c.Hub.rdb != nil {
			ctx := context.Background()
			c.Hub.rdb.Set(ctx, "online:"+c.UserID.String(), "1", onlineKeyTTL)
		}
	}
}

// writePump 向客户端写入推送，定期 ping 保持连接
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
