// routes/middleware.go
package routes

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// CORSMiddleware разрешает запросы к отчётам с любого источника
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Encoding")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware пишет строку лога на каждый запрос
func LoggingMiddleware(logger *logrus.Entry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			}).Info("Запрос к отчёту")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// FailureInjector отвечает 503 на первые N запросов к каждому отчёту,
// чтобы проверить повторы на стороне ETL
type FailureInjector struct {
	mu       sync.Mutex
	failures int
	seen     map[string]int
}

// NewFailureInjector создает FailureInjector; n = 0 отключает сбои
func NewFailureInjector(n int) *FailureInjector {
	return &FailureInjector{failures: n, seen: make(map[string]int)}
}

// Middleware возвращает mux-middleware с внедрением сбоев
func (f *FailureInjector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.shouldFail(r.URL.Path) {
			http.Error(w, "report temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FailureInjector) shouldFail(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[path]++
	return f.seen[path] <= f.failures
}
