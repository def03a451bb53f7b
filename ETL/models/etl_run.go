package models

// RunStatus - итог запуска ETL
type RunStatus string

const (
	RunSuccess RunStatus = "SUCCESS"
	RunFailed  RunStatus = "FAILED"
)

// NotesOK записывается в notes при успешном запуске
const NotesOK = "OK"

// RunAudit представляет запись таблицы etl_runs
type RunAudit struct {
	RunID      int64     `db:"run_id" json:"run_id"`
	StartedAt  Timestamp `db:"started_at" json:"started_at"`
	EndedAt    Timestamp `db:"ended_at" json:"ended_at"`
	Status     RunStatus `db:"status" json:"status"`
	RowsLoaded int       `db:"rows_loaded" json:"rows_loaded"`
	Notes      string    `db:"notes" json:"notes"`
}

// RunSummary возвращается вызывающему коду и рассылается подписчикам
type RunSummary struct {
	RunID      int64     `json:"run_id,omitempty"`
	TraceID    string    `json:"trace_id"`
	StartedAt  Timestamp `json:"started_at"`
	EndedAt    Timestamp `json:"ended_at"`
	Status     RunStatus `json:"status"`
	RowsLoaded int       `json:"rows_loaded"`
	Notes      string    `json:"notes"`
}

// Summary строит RunSummary по записи журнала
func (a RunAudit) Summary(traceID string) RunSummary {
	return RunSummary{
		RunID:      a.RunID,
		TraceID:    traceID,
		StartedAt:  a.StartedAt,
		EndedAt:    a.EndedAt,
		Status:     a.Status,
		RowsLoaded: a.RowsLoaded,
		Notes:      a.Notes,
	}
}
