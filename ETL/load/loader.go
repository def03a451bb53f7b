package load

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/jmoiron/sqlx"
)

// Loader записывает профили и журнал запуска в хранилище
type Loader struct {
	dialect models.Dialect
	profile *ProfileWriter
	audit   *models.AuditWriter
	logger  *utils.ETLLogger
}

// NewLoader создает новый экземпляр Loader
func NewLoader(dialect models.Dialect, batchSize int, audit *models.AuditWriter, logger *utils.ETLLogger) *Loader {
	return &Loader{
		dialect: dialect,
		profile: NewProfileWriter(dialect, batchSize, logger),
		audit:   audit,
		logger:  logger,
	}
}

// EnsureSchema создает таблицы employee_profile и etl_runs, если их нет.
// Выполняется до транзакции загрузки: в MySQL DDL неявно фиксирует транзакцию.
func (l *Loader) EnsureSchema(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, l.dialect.ProfileTableDDL()); err != nil {
		return persistErr("создание "+models.ProfileTable, err)
	}
	if err := l.audit.EnsureTable(ctx, db); err != nil {
		return persistErr("создание "+models.RunsTable, err)
	}
	return nil
}

// Load полностью заменяет employee_profile и добавляет запись в etl_runs.
// Обе операции в одной транзакции: при любой ошибке не меняется ничего.
func (l *Loader) Load(ctx context.Context, db *sqlx.DB, profiles []models.EmployeeProfile, audit *models.RunAudit) (err error) {
	startTime := time.Now()
	l.logger.Info("Начало фазы Load (Загрузка данных): %d профилей", len(profiles))

	if err := l.EnsureSchema(ctx, db); err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return persistErr("начало транзакции", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				l.logger.Error("Ошибка при откате транзакции загрузки: %v", rbErr)
			}
		}
	}()

	if err = l.profile.Replace(ctx, tx, profiles); err != nil {
		return err
	}

	if _, err = l.audit.Insert(ctx, tx, audit); err != nil {
		return persistErr("запись журнала", err)
	}

	if err = tx.Commit(); err != nil {
		return persistErr("фиксация транзакции", err)
	}

	l.logger.Info("Фаза Load завершена. Загружено записей: %d. Длительность: %v", len(profiles), time.Since(startTime))
	return nil
}
