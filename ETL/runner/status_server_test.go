package runner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LilVoxy/workforce_etl/websocket"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gorilla "github.com/gorilla/websocket"
)

func TestStatusRouter_Health(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(NewStatusRouter(h.runner, nil))
	defer srv.Close()

	_, err := h.runner.ExecuteETL(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.NotZero(t, body.LastSuccessID)
}

func TestStatusRouter_HealthStorageDown(t *testing.T) {
	h := newHarness(t, WithConnector(func(context.Context) (*sqlx.DB, error) {
		return nil, errors.New("down")
	}))
	srv := httptest.NewServer(NewStatusRouter(h.runner, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestStatusRouter_Metrics(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(NewStatusRouter(h.runner, nil))
	defer srv.Close()

	_, err := h.runner.ExecuteETL(context.Background())
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "etl_runs_total")
	assert.Contains(t, string(body), "etl_fetch_attempts_total")
}

func TestStatusRouter_RunFeed(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	feed := websocket.NewManager(logrus.NewEntry(logger))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	h := newHarness(t, WithPublisher(feed))
	srv := httptest.NewServer(NewStatusRouter(h.runner, feed))
	defer srv.Close()

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/runs", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, 5*time.Second, 10*time.Millisecond)

	summary, err := h.runner.ExecuteETL(context.Background())
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.MessageRun, msg.Type)
	require.NotNil(t, msg.Run)
	assert.Equal(t, summary.RunID, msg.Run.RunID)
	assert.Equal(t, summary.TraceID, msg.Run.TraceID)
}
