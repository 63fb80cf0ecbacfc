package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/directory-backend/internal/browser"
	"github.com/ignatzorin/directory-backend/internal/goroutine"
	"github.com/ignatzorin/directory-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 16
)

// Client одно WebSocket подключение со своей сессией каталога.
type Client struct {
	id      uuid.UUID
	conn    *websocket.Conn
	hub     *Hub
	session *browser.Session
	send    chan []byte

	closeOnce sync.Once
}

// NewClient создаёт нового клиента.
func NewClient(conn *websocket.Conn, hub *Hub, session *browser.Session) *Client {
	return &Client{
		id:      uuid.New(),
		conn:    conn,
		hub:     hub,
		session: session,
		send:    make(chan []byte, sendBuffer),
	}
}

// Run публикует состояние сессии клиенту и обрабатывает его команды
// до закрытия соединения.
func (c *Client) Run(ctx context.Context) {
	unsubscribe := c.session.Subscribe(func(st browser.State) {
		c.push(Message{Type: EventState, Data: st})
	})
	defer func() {
		unsubscribe()
		c.session.Wait()
		close(c.send)
	}()

	goroutine.SafeGo(c.writePump)
	c.session.Init()
	c.readPump(ctx)
}

// Close закрывает соединение.
func (c *Client) Close() {
	c.hub.Unregister(c)
	c.closeConn()
}

func (c *Client) closeConn() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}

// push ставит сообщение в очередь. При переполнении выбрасывается самое
// старое: клиенту важно последнее состояние.
func (c *Client) push(msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		logger.Get().WithError(err).Error("ws: не удалось сериализовать сообщение")
		return
	}
	for {
		select {
		case c.send <- raw:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Get().WithFields(logrus.Fields{
					"client_id": c.id.String(),
					"error":     err.Error(),
				}).Warn("ws: соединение закрыто с ошибкой")
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.push(errorMessage("некорректное сообщение"))
			continue
		}
		if err := Dispatch(c.session, cmd); err != nil {
			c.push(errorMessage(err.Error()))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
