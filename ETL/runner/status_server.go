package runner

import (
	"encoding/json"
	"net/http"

	"github.com/LilVoxy/workforce_etl/websocket"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewStatusRouter возвращает маршруты сервера статуса режима scheduled:
// /metrics, /healthz и лента запусков /ws/runs
func NewStatusRouter(r *ETLRunner, feed *websocket.Manager) *mux.Router {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/healthz", r.handleHealth).Methods("GET")
	if feed != nil {
		router.HandleFunc("/ws/runs", feed.HandleConnections)
	}

	return router
}

type healthResponse struct {
	Status        string `json:"status"`
	LastSuccessID int64  `json:"last_success_run_id,omitempty"`
	LastSuccessAt string `json:"last_success_at,omitempty"`
}

// handleHealth проверяет доступность хранилища и сообщает о последнем успешном запуске
func (r *ETLRunner) handleHealth(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	last, err := r.LastSuccessfulRun(req.Context())
	if err != nil {
		r.logger.Warn("Проверка состояния: хранилище недоступно: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(healthResponse{Status: "storage_unavailable"})
		return
	}

	resp := healthResponse{Status: "ok"}
	if last != nil {
		resp.LastSuccessID = last.RunID
		resp.LastSuccessAt = last.EndedAt.String()
	}
	json.NewEncoder(w).Encode(resp)
}
