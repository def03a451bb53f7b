package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/config"
	"github.com/LilVoxy/workforce_etl/ETL/extractors"
	"github.com/LilVoxy/workforce_etl/ETL/load"
	"github.com/LilVoxy/workforce_etl/ETL/metrics"
	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/transform"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/LilVoxy/workforce_etl/ETL/validate"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// auditTimeout ограничивает запись неудачного запуска, даже если контекст запуска отменён
const auditTimeout = 10 * time.Second

// Publisher получает итог каждого запуска
type Publisher interface {
	Publish(summary models.RunSummary)
}

// Option настраивает ETLRunner
type Option func(*options)

type options struct {
	clock      clockwork.Clock
	connector  config.Connector
	publisher  Publisher
	sleep      extractors.SleepFunc
	httpClient *http.Client
}

// WithClock задает часы для отметок времени и ожиданий между повторами
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithConnector заменяет подключение к хранилищу из конфигурации
func WithConnector(connector config.Connector) Option {
	return func(o *options) { o.connector = connector }
}

// WithPublisher подключает рассылку итогов запусков
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithSleep заменяет ожидание между повторами запросов
func WithSleep(sleep extractors.SleepFunc) Option {
	return func(o *options) { o.sleep = sleep }
}

// WithHTTPClient задает HTTP-клиент для запросов к отчётам
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// ETLRunner выполняет запуски extract -> validate -> transform -> load
type ETLRunner struct {
	config      config.ETLConfig
	logger      *utils.ETLLogger
	clock       clockwork.Clock
	connector   config.Connector
	publisher   Publisher
	extractor   *extractors.Extractor
	validator   *validate.Validator
	transformer *transform.Transformer
	loader      *load.Loader
	audit       *models.AuditWriter

	// Запуски в одном процессе не пересекаются
	mu sync.Mutex
}

// NewETLRunner создает новый экземпляр ETLRunner
func NewETLRunner(cfg config.ETLConfig, logger *utils.ETLLogger, opts ...Option) (*ETLRunner, error) {
	o := options{
		clock:     clockwork.NewRealClock(),
		connector: config.NewConnector(cfg.Storage),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sleep == nil {
		o.sleep = extractors.ClockSleep(o.clock)
	}

	dialect, err := models.DialectFor(cfg.Storage.Driver)
	if err != nil {
		return nil, err
	}

	fetcher := extractors.NewHTTPFetcher(extractors.HTTPFetcherConfig{
		Policy: extractors.RetryPolicy{
			MaxAttempts: cfg.Fetch.MaxAttempts,
			BackoffBase: cfg.Fetch.BackoffBase,
		},
		PayloadKey: cfg.Sources.PayloadKey,
		Timeout:    cfg.Fetch.Timeout,
		Username:   cfg.Sources.Username,
		Password:   cfg.Sources.Password,
		Snappy:     cfg.Sources.Snappy,
		Client:     o.httpClient,
		Sleep:      o.sleep,
	}, logger)

	sources := extractors.NewSources(cfg.Sources.EmployeesURL, cfg.Sources.CompensationURL, cfg.Sources.DepartmentsURL)
	audit := models.NewAuditWriter(dialect)

	return &ETLRunner{
		config:      cfg,
		logger:      logger,
		clock:       o.clock,
		connector:   o.connector,
		publisher:   o.publisher,
		extractor:   extractors.NewExtractor(fetcher, sources, cfg.ConcurrentExtract, logger),
		validator:   validate.NewValidator(logger),
		transformer: transform.NewTransformer(logger),
		loader:      load.NewLoader(dialect, cfg.BatchSize, audit, logger),
		audit:       audit,
	}, nil
}

// ExecuteETL выполняет полный ETL процесс.
// Успешный запуск заменяет employee_profile и пишет SUCCESS в etl_runs одной транзакцией.
// При ошибке на любой фазе в etl_runs пишется FAILED отдельной транзакцией,
// а исходная ошибка возвращается вызывающему коду.
func (r *ETLRunner) ExecuteETL(ctx context.Context) (models.RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	traceID := uuid.NewString()
	logger := r.logger.With(logrus.Fields{"trace_id": traceID})
	logger.LogETLStart()

	startedAt := r.clock.Now()
	audit := &models.RunAudit{StartedAt: models.NewTimestamp(startedAt)}

	db, err := r.connector(ctx)
	if err != nil {
		return r.fail(ctx, nil, logger, audit, traceID, fmt.Errorf("ошибка подключения к хранилищу: %w", err))
	}
	defer db.Close()

	// 1. Extract
	data, err := r.extractor.Extract(ctx)
	if err != nil {
		return r.fail(ctx, db, logger, audit, traceID, err)
	}

	// 2. Validate
	if _, err := r.validator.Validate(data); err != nil {
		return r.fail(ctx, db, logger, audit, traceID, err)
	}

	// 3. Transform
	profiles := r.transformer.Transform(data, r.clock.Now())

	// 4. Load
	audit.EndedAt = models.NewTimestamp(r.clock.Now())
	audit.Status = models.RunSuccess
	audit.RowsLoaded = len(profiles)
	audit.Notes = models.NotesOK

	if err := r.loader.Load(ctx, db, profiles, audit); err != nil {
		return r.fail(ctx, db, logger, audit, traceID, err)
	}

	summary := audit.Summary(traceID)
	metrics.ObserveRun(string(summary.Status), summary.EndedAt.Sub(startedAt), summary.RowsLoaded)
	r.publish(summary)

	logger.LogETLComplete(startedAt, summary.RowsLoaded)
	return summary, nil
}

// fail записывает неудачный запуск и возвращает исходную ошибку.
// Если журнал записать не удалось, возвращаются обе ошибки.
func (r *ETLRunner) fail(ctx context.Context, db *sqlx.DB, logger *utils.ETLLogger, audit *models.RunAudit, traceID string, runErr error) (models.RunSummary, error) {
	logger.Error("ETL завершился с ошибкой: %v", runErr)

	audit.RunID = 0
	audit.EndedAt = models.NewTimestamp(r.clock.Now())
	audit.Status = models.RunFailed
	audit.RowsLoaded = 0
	audit.Notes = runErr.Error()

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	err := runErr
	if auditErr := r.recordFailure(auditCtx, db, audit); auditErr != nil {
		metrics.ObserveAuditWriteFailure()
		logger.Error("Не удалось записать неудачный запуск в %s: %v", models.RunsTable, auditErr)
		err = errors.Join(runErr, fmt.Errorf("ошибка записи журнала ETL: %w", auditErr))
	}

	summary := audit.Summary(traceID)
	metrics.ObserveRun(string(summary.Status), summary.EndedAt.Sub(summary.StartedAt.Time), 0)
	r.publish(summary)

	return summary, err
}

// recordFailure пишет запись журнала; без открытого хранилища пробует подключиться ещё раз
func (r *ETLRunner) recordFailure(ctx context.Context, db *sqlx.DB, audit *models.RunAudit) error {
	if db == nil {
		conn, err := r.connector(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()
		db = conn
	}

	_, err := r.audit.Record(ctx, db, audit)
	return err
}

func (r *ETLRunner) publish(summary models.RunSummary) {
	if r.publisher != nil {
		r.publisher.Publish(summary)
	}
}

// LastSuccessfulRun возвращает последний успешный запуск или nil
func (r *ETLRunner) LastSuccessfulRun(ctx context.Context) (*models.RunAudit, error) {
	db, err := r.connector(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := r.audit.EnsureTable(ctx, db); err != nil {
		return nil, err
	}
	return r.audit.LastSuccessful(ctx, db)
}
