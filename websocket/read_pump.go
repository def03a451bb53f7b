// websocket/read_pump.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// readPump читает сообщения подписчика до разрыва соединения
func (c *Client) readPump(manager *Manager) {
	defer func() {
		// Send может быть закрыт менеджером во время ответа на ping
		if r := recover(); r != nil {
			manager.logger.Errorf("Паника при чтении сообщений подписчика %d: %v", c.ID, r)
		}

		select {
		case manager.Unregister <- c:
		case <-manager.done:
		}

		c.Socket.Close()
	}()

	c.Socket.SetReadLimit(maxMessageSize)
	c.Socket.SetReadDeadline(time.Now().Add(pongWait))
	c.Socket.SetPongHandler(func(string) error {
		c.Socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				manager.logger.Warnf("Ошибка чтения подписчика %d: %v", c.ID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			manager.logger.Debugf("Некорректное сообщение от подписчика %d: %v", c.ID, err)
			continue
		}

		if msg.Type == MessagePing {
			pong, _ := json.Marshal(Message{Type: MessagePong})
			select {
			case c.Send <- pong:
			default:
			}
		}
	}
}
