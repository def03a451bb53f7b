package load

import (
	"context"
	"fmt"
	"strings"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/jmoiron/sqlx"
)

// ProfileWriter заменяет содержимое employee_profile внутри транзакции
type ProfileWriter struct {
	dialect   models.Dialect
	batchSize int
	logger    *utils.ETLLogger
}

// NewProfileWriter создает новый экземпляр ProfileWriter
func NewProfileWriter(dialect models.Dialect, batchSize int, logger *utils.ETLLogger) *ProfileWriter {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ProfileWriter{
		dialect:   dialect,
		batchSize: batchSize,
		logger:    logger,
	}
}

// insertQuery возвращает INSERT с именованными параметрами по тегам db
func (w *ProfileWriter) insertQuery() string {
	params := make([]string, len(models.ProfileColumns))
	for i, col := range models.ProfileColumns {
		params[i] = ":" + col
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		models.ProfileTable, w.dialect.QuoteAll(models.ProfileColumns), strings.Join(params, ", "))
}

// Replace удаляет старые строки и вставляет новые пачками по batchSize
func (w *ProfileWriter) Replace(ctx context.Context, tx *sqlx.Tx, profiles []models.EmployeeProfile) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+models.ProfileTable); err != nil {
		return persistErr("очистка "+models.ProfileTable, err)
	}

	query := w.insertQuery()
	loaded := 0

	for start := 0; start < len(profiles); start += w.batchSize {
		end := start + w.batchSize
		if end > len(profiles) {
			end = len(profiles)
		}

		if _, err := tx.NamedExecContext(ctx, query, profiles[start:end]); err != nil {
			return persistErr(fmt.Sprintf("вставка строк %d-%d", start+1, end), err)
		}

		loaded = end
		w.logger.Debug("Загружено %d из %d профилей...", loaded, len(profiles))
	}

	return nil
}
