package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	manager := NewManager(logrus.NewEntry(logger))
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(manager.HandleConnections))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return manager, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func summary(id int64, status models.RunStatus) models.RunSummary {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return models.RunSummary{
		RunID:      id,
		TraceID:    "trace",
		StartedAt:  models.NewTimestamp(now),
		EndedAt:    models.NewTimestamp(now.Add(time.Second)),
		Status:     status,
		RowsLoaded: 2,
		Notes:      models.NotesOK,
	}
}

func TestManager_BroadcastsRunSummaries(t *testing.T) {
	manager, srv := newTestManager(t)

	first := dial(t, srv)
	second := dial(t, srv)
	require.Eventually(t, func() bool { return manager.ClientCount() == 2 }, 5*time.Second, 10*time.Millisecond)

	manager.Publish(summary(7, models.RunSuccess))

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, MessageRun, msg.Type)
		require.NotNil(t, msg.Run)
		assert.Equal(t, int64(7), msg.Run.RunID)
		assert.Equal(t, models.RunSuccess, msg.Run.Status)
	}
}

func TestManager_NewSubscriberGetsLastRun(t *testing.T) {
	manager, srv := newTestManager(t)

	manager.Publish(summary(3, models.RunFailed))

	conn := dial(t, srv)
	msg := readMessage(t, conn)
	require.NotNil(t, msg.Run)
	assert.Equal(t, int64(3), msg.Run.RunID)
	assert.Equal(t, models.RunFailed, msg.Run.Status)
}

func TestManager_AnswersPing(t *testing.T) {
	manager, srv := newTestManager(t)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(Message{Type: MessagePing}))
	assert.Equal(t, MessagePong, readMessage(t, conn).Type)
}

func TestManager_UnregistersClosedClients(t *testing.T) {
	manager, srv := newTestManager(t)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return manager.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestManager_PublishAfterStopDoesNotBlock(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	manager := NewManager(logrus.NewEntry(logger))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			manager.Publish(summary(int64(i), models.RunSuccess))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish заблокировался после остановки менеджера")
	}
}
