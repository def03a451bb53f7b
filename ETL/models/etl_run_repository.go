package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AuditWriter - единственная точка записи в журнал etl_runs.
// Используется и в транзакции загрузки, и при записи неудачного запуска.
type AuditWriter struct {
	dialect Dialect
}

// NewAuditWriter создает новый экземпляр AuditWriter
func NewAuditWriter(dialect Dialect) *AuditWriter {
	return &AuditWriter{dialect: dialect}
}

// EnsureTable создает таблицу журнала ETL, если она не существует
func (w *AuditWriter) EnsureTable(ctx context.Context, db sqlx.ExecerContext) error {
	if _, err := db.ExecContext(ctx, w.dialect.RunsTableDDL()); err != nil {
		return fmt.Errorf("ошибка при создании таблицы %s: %w", RunsTable, err)
	}
	return nil
}

// Insert добавляет запись о запуске в рамках переданного соединения или транзакции
// и записывает присвоенный run_id в audit.RunID
func (w *AuditWriter) Insert(ctx context.Context, db sqlx.ExtContext, audit *RunAudit) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (started_at, ended_at, status, rows_loaded, notes)
	VALUES (:started_at, :ended_at, :status, :rows_loaded, :notes)`, RunsTable)

	if w.dialect.SupportsReturning() {
		query += " RETURNING run_id"
	}

	q, args, err := db.BindNamed(query, audit)
	if err != nil {
		return 0, fmt.Errorf("ошибка подготовки записи журнала ETL: %w", err)
	}

	var id int64
	if w.dialect.SupportsReturning() {
		if err := db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
		}
	} else {
		result, err := db.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("ошибка при создании записи о запуске ETL: %w", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("ошибка при получении ID созданной записи: %w", err)
		}
	}

	audit.RunID = id
	return id, nil
}

// Record записывает запуск в отдельной транзакции.
// Нужен там, где транзакция загрузчика не была начата или уже откатилась.
func (w *AuditWriter) Record(ctx context.Context, db *sqlx.DB, audit *RunAudit) (id int64, err error) {
	if err := w.EnsureTable(ctx, db); err != nil {
		return 0, err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка при начале транзакции журнала ETL: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if id, err = w.Insert(ctx, tx, audit); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка при фиксации записи журнала ETL: %w", err)
	}
	return id, nil
}

// Recent возвращает последние limit запусков, начиная с самого нового
func (w *AuditWriter) Recent(ctx context.Context, db *sqlx.DB, limit int) ([]RunAudit, error) {
	query := db.Rebind(fmt.Sprintf(`SELECT run_id, started_at, ended_at, status, rows_loaded, notes
	FROM %s ORDER BY run_id DESC LIMIT ?`, RunsTable))

	var runs []RunAudit
	if err := db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала запусков ETL: %w", err)
	}
	return runs, nil
}

// LastSuccessful получает информацию о последнем успешном запуске ETL
func (w *AuditWriter) LastSuccessful(ctx context.Context, db *sqlx.DB) (*RunAudit, error) {
	query := db.Rebind(fmt.Sprintf(`SELECT run_id, started_at, ended_at, status, rows_loaded, notes
	FROM %s WHERE status = ? ORDER BY run_id DESC LIMIT 1`, RunsTable))

	var run RunAudit
	if err := db.GetContext(ctx, &run, query, RunSuccess); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Нет успешных запусков
		}
		return nil, fmt.Errorf("ошибка при получении информации о последнем успешном запуске ETL: %w", err)
	}
	return &run, nil
}
