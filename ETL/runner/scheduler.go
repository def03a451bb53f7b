package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// StartScheduler запускает ETL сразу и затем каждые interval до отмены ctx.
// Если запуск не успел завершиться к следующему сроку, очередной срок пропускается.
func (r *ETLRunner) StartScheduler(ctx context.Context, interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("Запуск планировщика ETL с интервалом %v", interval)

	if last, err := r.LastSuccessfulRun(ctx); err != nil {
		r.logger.Warn("Не удалось получить информацию о последнем успешном запуске: %v", err)
	} else if last != nil {
		r.logger.Info("Последний успешный запуск #%d: %s, загружено строк: %d", last.RunID, last.EndedAt, last.RowsLoaded)
	}

	_, err := scheduler.Every(interval).Do(func() {
		r.logger.Info("Запланированный запуск ETL процесса")
		if _, err := r.ExecuteETL(ctx); err != nil {
			r.logger.Error("Ошибка при выполнении запланированного ETL: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке планировщика: %w", err)
	}

	scheduler.StartAsync()

	<-ctx.Done()

	scheduler.Stop()
	r.logger.Info("Планировщик ETL остановлен")
	return nil
}
