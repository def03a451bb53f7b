// websocket/connection_handler.go
package websocket

import (
	"net/http"
)

// HandleConnections подключает подписчика к ленте запусков.
// Новый подписчик сразу получает итог последнего запуска, если он был.
func (manager *Manager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		manager.logger.Warnf("Ошибка при установке WebSocket-соединения: %v", err)
		return
	}

	manager.clientsMu.Lock()
	manager.nextID++
	id := manager.nextID
	manager.clientsMu.Unlock()

	client := &Client{
		ID:     id,
		Socket: conn,
		Send:   make(chan []byte, sendBuffer),
	}

	if last := manager.lastSummary(); last != nil {
		client.Send <- last
	}

	select {
	case manager.Register <- client:
	case <-manager.done:
		conn.Close()
		return
	}

	manager.logger.Infof("Подписчик %d подключился с адреса %s", id, r.RemoteAddr)

	go client.readPump(manager)
	go client.writePump(manager)
}
