package extractors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"golang.org/x/sync/errgroup"
)

// Имена отчётов-источников
const (
	SourceEmployees    = "employees"
	SourceCompensation = "compensation"
	SourceDepartments  = "departments"
)

// Sources - три отчёта, из которых собирается профиль сотрудника
type Sources struct {
	Employees    Source
	Compensation Source
	Departments  Source
}

// NewSources создает набор источников с фиксированными именами
func NewSources(employeesURL, compensationURL, departmentsURL string) Sources {
	return Sources{
		Employees:    Source{Name: SourceEmployees, URL: employeesURL},
		Compensation: Source{Name: SourceCompensation, URL: compensationURL},
		Departments:  Source{Name: SourceDepartments, URL: departmentsURL},
	}
}

// Extractor координирует извлечение трёх отчётов
type Extractor struct {
	fetcher    Fetcher
	sources    Sources
	concurrent bool
	logger     *utils.ETLLogger
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(fetcher Fetcher, sources Sources, concurrent bool, logger *utils.ETLLogger) *Extractor {
	return &Extractor{
		fetcher:    fetcher,
		sources:    sources,
		concurrent: concurrent,
		logger:     logger,
	}
}

// Extract извлекает сотрудников, компенсации и подразделения.
// Ошибка любого источника возвращается как есть и прерывает весь запуск.
func (e *Extractor) Extract(ctx context.Context) (*models.ExtractedData, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()

	var extractedData models.ExtractedData
	var err error

	if e.concurrent {
		err = e.extractConcurrently(ctx, &extractedData)
	} else {
		err = e.extractSequentially(ctx, &extractedData)
	}
	if err != nil {
		e.logger.Error("Ошибка в фазе Extract: %v", err)
		return nil, err
	}

	e.logger.LogExtractComplete(
		len(extractedData.Employees),
		len(extractedData.Compensation),
		len(extractedData.Departments),
		time.Since(startTime),
	)

	return &extractedData, nil
}

func (e *Extractor) extractSequentially(ctx context.Context, data *models.ExtractedData) error {
	var err error

	// 1. Сотрудники
	if data.Employees, err = fetchRecords[models.EmployeeRecord](ctx, e.fetcher, e.sources.Employees, e.logger); err != nil {
		return err
	}

	// 2. Компенсации
	if data.Compensation, err = fetchRecords[models.CompensationRecord](ctx, e.fetcher, e.sources.Compensation, e.logger); err != nil {
		return err
	}

	// 3. Подразделения
	data.Departments, err = fetchRecords[models.DepartmentRecord](ctx, e.fetcher, e.sources.Departments, e.logger)
	return err
}

// extractConcurrently запрашивает отчёты параллельно; результат доступен только после всех трёх
func (e *Extractor) extractConcurrently(ctx context.Context, data *models.ExtractedData) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Employees, err = fetchRecords[models.EmployeeRecord](gctx, e.fetcher, e.sources.Employees, e.logger)
		return err
	})
	g.Go(func() (err error) {
		data.Compensation, err = fetchRecords[models.CompensationRecord](gctx, e.fetcher, e.sources.Compensation, e.logger)
		return err
	})
	g.Go(func() (err error) {
		data.Departments, err = fetchRecords[models.DepartmentRecord](gctx, e.fetcher, e.sources.Departments, e.logger)
		return err
	})

	return g.Wait()
}

// fetchRecords получает отчёт и разбирает его записи в типизированный набор
func fetchRecords[T any](ctx context.Context, fetcher Fetcher, src Source, logger *utils.ETLLogger) ([]T, error) {
	payload, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	if !payload.KeyPresent {
		logger.Warn("В ответе отчёта %s нет списка записей, считаем набор пустым", src.Name)
	}

	records := make([]T, 0, len(payload.Entries))
	for i, raw := range payload.Entries {
		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, &PayloadError{Source: src.Name, Index: i, Err: err}
		}
		records = append(records, record)
	}

	logger.Debug("Отчёт %s: получено %d записей", src.Name, len(records))
	return records, nil
}
