// routes/raas_routes.go
package routes

import (
	"encoding/json"
	"net/http"

	"github.com/LilVoxy/workforce_etl/processor"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Options задаёт поведение тестового сервера отчётов
type Options struct {
	// Число ответов 503 на каждый отчёт перед успешным
	FailFirst int
	// Требуемые учётные данные; пустой Username - без авторизации
	Username string
	Password string
}

// SetupRoutes настраивает маршруты отчётов /raas/{employees,compensation,departments}
func SetupRoutes(router *mux.Router, fixtures *Fixtures, opts Options, logger *logrus.Entry) {
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware(logger))

	raas := router.PathPrefix("/raas").Subrouter()
	if opts.Username != "" {
		raas.Use(basicAuth(opts.Username, opts.Password))
	}
	if opts.FailFirst > 0 {
		raas.Use(NewFailureInjector(opts.FailFirst).Middleware)
	}

	raas.HandleFunc("/employees", ReportHandler(fixtures.Employees, logger)).Methods("GET", "OPTIONS")
	raas.HandleFunc("/compensation", ReportHandler(fixtures.Compensation, logger)).Methods("GET", "OPTIONS")
	raas.HandleFunc("/departments", ReportHandler(fixtures.Departments, logger)).Methods("GET", "OPTIONS")

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods("GET")
}

// ReportHandler отдаёт отчёт в JSON, сжатый snappy, если клиент это принимает
func ReportHandler(report Report, logger *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(report)
		if err != nil {
			logger.Errorf("Ошибка при кодировании отчёта: %v", err)
			http.Error(w, "Ошибка при формировании отчёта", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if processor.AcceptsSnappy(r) {
			w.Header().Set("Content-Encoding", processor.SnappyEncoding)
			body = processor.CompressReport(body)
		}
		w.Write(body)
	}
}

func basicAuth(username, password string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != username || pass != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="raas"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
