// websocket/types.go
package websocket

import (
	"net/http"
	"sync"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Типы сообщений ленты запусков
const (
	MessageRun  = "run"
	MessagePing = "ping"
	MessagePong = "pong"
)

// Message - сообщение ленты запусков
type Message struct {
	Type string             `json:"type"`
	Run  *models.RunSummary `json:"run,omitempty"`
}

// Client - подписчик ленты
type Client struct {
	ID     int
	Socket *websocket.Conn
	Send   chan []byte
}

// Manager рассылает итоги запусков ETL подписчикам
type Manager struct {
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	clientsMu sync.RWMutex
	clients   map[int]*Client
	nextID    int

	lastMu  sync.RWMutex
	lastRun []byte

	done   chan struct{}
	logger *logrus.Entry
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Лента только для чтения, источник не проверяем
	},
}
