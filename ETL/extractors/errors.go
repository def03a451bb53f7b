package extractors

import (
	"fmt"
)

// FetchExhaustedError - отчёт не удалось получить за все попытки.
// Фатальна для запуска: до загрузки данных дело не доходит.
type FetchExhaustedError struct {
	Source   string
	URL      string
	Attempts int
	Last     error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("не удалось получить отчёт %s (%s) после %d попыток: %v", e.Source, e.URL, e.Attempts, e.Last)
}

func (e *FetchExhaustedError) Unwrap() error {
	return e.Last
}

// StatusError - отчёт ответил кодом, отличным от 2xx
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("неуспешный ответ отчёта: %s", e.Status)
}

// PayloadError - запись отчёта не соответствует ожидаемой структуре
type PayloadError struct {
	Source string
	Index  int
	Err    error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("некорректная запись #%d в отчёте %s: %v", e.Index, e.Source, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
