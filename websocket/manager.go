// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/sirupsen/logrus"
)

// NewManager создает менеджер ленты запусков
func NewManager(logger *logrus.Entry) *Manager {
	return &Manager{
		Broadcast:  make(chan []byte, sendBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[int]*Client),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "run_feed"),
	}
}

// Run обслуживает подключения до отмены ctx
func (manager *Manager) Run(ctx context.Context) {
	defer func() {
		close(manager.done)
		manager.clientsMu.Lock()
		for id, client := range manager.clients {
			close(client.Send)
			delete(manager.clients, id)
		}
		manager.clientsMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-manager.Register:
			manager.clientsMu.Lock()
			manager.clients[client.ID] = client
			manager.clientsMu.Unlock()
			manager.logger.Debugf("Подписчик %d подключился", client.ID)

		case client := <-manager.Unregister:
			manager.clientsMu.Lock()
			if _, ok := manager.clients[client.ID]; ok {
				delete(manager.clients, client.ID)
				close(client.Send)
				manager.logger.Debugf("Подписчик %d отключился", client.ID)
			}
			manager.clientsMu.Unlock()

		case message := <-manager.Broadcast:
			manager.broadcast(message)
		}
	}
}

// broadcast отправляет сообщение всем подписчикам; медленные отключаются
func (manager *Manager) broadcast(message []byte) {
	manager.clientsMu.Lock()
	defer manager.clientsMu.Unlock()

	for id, client := range manager.clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.clients, id)
			manager.logger.Warnf("Подписчик %d не успевает читать ленту, отключён", id)
		}
	}
}

// Publish рассылает итог запуска ETL
func (manager *Manager) Publish(summary models.RunSummary) {
	data, err := json.Marshal(Message{Type: MessageRun, Run: &summary})
	if err != nil {
		manager.logger.Errorf("Ошибка кодирования итога запуска: %v", err)
		return
	}

	manager.lastMu.Lock()
	manager.lastRun = data
	manager.lastMu.Unlock()

	select {
	case manager.Broadcast <- data:
	case <-manager.done:
	}
}

// ClientCount возвращает число подключённых подписчиков
func (manager *Manager) ClientCount() int {
	manager.clientsMu.RLock()
	defer manager.clientsMu.RUnlock()
	return len(manager.clients)
}

func (manager *Manager) lastSummary() []byte {
	manager.lastMu.RLock()
	defer manager.lastMu.RUnlock()
	return manager.lastRun
}
