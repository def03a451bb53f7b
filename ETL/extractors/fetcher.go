package extractors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/metrics"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/LilVoxy/workforce_etl/processor"
	"github.com/jonboulle/clockwork"
)

// DefaultPayloadKey - ключ списка записей в ответе отчёта
const DefaultPayloadKey = "Report_Entry"

// Source - именованный отчёт-источник
type Source struct {
	Name string
	URL  string
}

// Payload - разобранный ответ отчёта
type Payload struct {
	Source  string
	Entries []json.RawMessage
	// false, если в ответе не было ключа со списком записей
	KeyPresent bool
}

// Fetcher получает отчёт по сети
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (*Payload, error)
}

// HTTPFetcherConfig содержит параметры HTTPFetcher
type HTTPFetcherConfig struct {
	Policy     RetryPolicy
	PayloadKey string
	Timeout    time.Duration
	Username   string
	Password   string
	Snappy     bool

	// Необязательные зависимости; по умолчанию http.Client с Timeout и реальные часы
	Client *http.Client
	Sleep  SleepFunc
}

// HTTPFetcher получает отчёты по HTTP с ограниченным числом повторов
type HTTPFetcher struct {
	cfg    HTTPFetcherConfig
	client *http.Client
	sleep  SleepFunc
	logger *utils.ETLLogger
}

// NewHTTPFetcher создает новый экземпляр HTTPFetcher
func NewHTTPFetcher(cfg HTTPFetcherConfig, logger *utils.ETLLogger) *HTTPFetcher {
	if cfg.Policy.MaxAttempts < 1 {
		cfg.Policy = DefaultRetryPolicy
	}
	if cfg.PayloadKey == "" {
		cfg.PayloadKey = DefaultPayloadKey
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = ClockSleep(clockwork.NewRealClock())
	}

	return &HTTPFetcher{
		cfg:    cfg,
		client: client,
		sleep:  sleep,
		logger: logger,
	}
}

// Fetch выполняет GET с повторами: после n-й неудачи ждёт BackoffBase^n секунд.
// Любая транспортная ошибка, код не 2xx или нечитаемое тело считаются временной ошибкой.
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source) (*Payload, error) {
	backoff := NewBackoff(f.cfg.Policy)
	var lastErr error

	for backoff.Begin() {
		attempt := backoff.Attempt()
		f.logger.Info("GET %s (попытка %d)", src.URL, attempt)

		payload, err := f.fetchOnce(ctx, src)
		if err == nil {
			metrics.ObserveFetchAttempt(src.Name, "success")
			return payload, nil
		}
		metrics.ObserveFetchAttempt(src.Name, "failure")

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("получение отчёта %s прервано: %w", src.Name, ctxErr)
		}
		lastErr = err

		delay, ok := backoff.Failed()
		if !ok {
			break
		}

		f.logger.Warn("Запрос %s не удался: %v. Повтор через %v", src.URL, err, delay)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("ожидание повтора отчёта %s прервано: %w", src.Name, err)
		}
	}

	f.logger.Error("Отчёт %s недоступен после %d попыток: %v", src.Name, backoff.Attempt(), lastErr)
	return nil, &FetchExhaustedError{
		Source:   src.Name,
		URL:      src.URL,
		Attempts: backoff.Attempt(),
		Last:     lastErr,
	}
}

// fetchOnce выполняет одну попытку запроса
func (f *HTTPFetcher) fetchOnce(ctx context.Context, src Source) (*Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования запроса: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.cfg.Snappy {
		req.Header.Set("Accept-Encoding", processor.SnappyEncoding)
	}
	if f.cfg.Username != "" {
		req.SetBasicAuth(f.cfg.Username, f.cfg.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err = processor.DecodeBody(resp.Header, body)
	if err != nil {
		return nil, err
	}

	return parsePayload(src.Name, f.cfg.PayloadKey, body)
}

// parsePayload достаёт список записей по ключу.
// Отсутствие ключа или null - пустой набор записей, а не ошибка.
func parsePayload(source, key string, body []byte) (*Payload, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("ответ отчёта не является JSON-объектом: %w", err)
	}

	payload := &Payload{Source: source, Entries: []json.RawMessage{}}

	raw, ok := doc[key]
	if !ok || string(raw) == "null" {
		return payload, nil
	}
	payload.KeyPresent = true

	if err := json.Unmarshal(raw, &payload.Entries); err != nil {
		return nil, fmt.Errorf("ключ %s не содержит список записей: %w", key, err)
	}
	return payload, nil
}
