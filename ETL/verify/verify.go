package verify

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
)

// Имена листов выгрузки
const (
	ProfileSheet = "employee_profile"
	RunsSheet    = "etl_runs"
)

// Snapshot - содержимое таблиц ETL на момент проверки
type Snapshot struct {
	Profiles []models.EmployeeProfile
	Runs     []models.RunAudit
}

// Load читает профили и последние runLimit запусков
func Load(ctx context.Context, db *sqlx.DB, dialect models.Dialect, runLimit int) (*Snapshot, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		dialect.QuoteAll(models.ProfileColumns), models.ProfileTable, dialect.Quote("Employee_ID"))

	var snap Snapshot
	if err := db.SelectContext(ctx, &snap.Profiles, query); err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", models.ProfileTable, err)
	}

	runs, err := models.NewAuditWriter(dialect).Recent(ctx, db, runLimit)
	if err != nil {
		return nil, err
	}
	snap.Runs = runs

	return &snap, nil
}

var runHeaders = []string{"run_id", "started_at", "ended_at", "status", "rows_loaded", "notes"}

func profileRow(p models.EmployeeProfile) []string {
	return []string{
		p.EmployeeID,
		p.FirstName,
		p.LastName,
		models.Deref(p.DepartmentID),
		p.Status,
		formatAmount(p.MonthlySalary),
		formatAmount(p.Bonus),
		models.Deref(p.DepartmentName),
		formatAmount(p.AnnualSalary),
		formatAmount(p.TotalCompensation),
		p.ExecutedAt.String(),
	}
}

func runRow(r models.RunAudit) []string {
	return []string{
		strconv.FormatInt(r.RunID, 10),
		r.StartedAt.String(),
		r.EndedAt.String(),
		string(r.Status),
		strconv.Itoa(r.RowsLoaded),
		r.Notes,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func render(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// WriteTable печатает обе таблицы в текстовом виде
func WriteTable(w io.Writer, snap *Snapshot) error {
	profileRows := make([][]string, len(snap.Profiles))
	for i, p := range snap.Profiles {
		profileRows[i] = profileRow(p)
	}
	runRows := make([][]string, len(snap.Runs))
	for i, r := range snap.Runs {
		runRows[i] = runRow(r)
	}

	_, err := fmt.Fprintf(w, "%s: %d строк\n%s\n\n%s: последние %d запусков\n%s\n",
		models.ProfileTable, len(snap.Profiles), render(models.ProfileColumns, profileRows),
		models.RunsTable, len(snap.Runs), render(runHeaders, runRows))
	return err
}

// WriteXLSX сохраняет обе таблицы в книгу Excel, по листу на таблицу
func WriteXLSX(path string, snap *Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProfileSheet); err != nil {
		return fmt.Errorf("ошибка создания листа %s: %w", ProfileSheet, err)
	}
	if _, err := f.NewSheet(RunsSheet); err != nil {
		return fmt.Errorf("ошибка создания листа %s: %w", RunsSheet, err)
	}

	profiles := make([][]any, 0, len(snap.Profiles)+1)
	profiles = append(profiles, toAny(models.ProfileColumns))
	for _, p := range snap.Profiles {
		profiles = append(profiles, []any{
			p.EmployeeID, p.FirstName, p.LastName, models.Deref(p.DepartmentID), p.Status,
			p.MonthlySalary, p.Bonus, models.Deref(p.DepartmentName),
			p.AnnualSalary, p.TotalCompensation, p.ExecutedAt.String(),
		})
	}
	if err := writeRows(f, ProfileSheet, profiles); err != nil {
		return err
	}

	runs := make([][]any, 0, len(snap.Runs)+1)
	runs = append(runs, toAny(runHeaders))
	for _, r := range snap.Runs {
		runs = append(runs, []any{
			r.RunID, r.StartedAt.String(), r.EndedAt.String(), string(r.Status), r.RowsLoaded, r.Notes,
		})
	}
	if err := writeRows(f, RunsSheet, runs); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("ошибка записи строки %d на лист %s: %w", i+1, sheet, err)
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
