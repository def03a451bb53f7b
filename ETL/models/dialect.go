package models

import (
	"fmt"
	"strings"
)

// Имена таблиц ETL
const (
	ProfileTable = "employee_profile"
	RunsTable    = "etl_runs"
)

// Dialect описывает различия SQL между поддерживаемыми хранилищами
type Dialect struct {
	Name string

	quote     string
	keyType   string
	textType  string
	floatType string
	timeType  string
	autoPK    string
	returning bool
}

// DialectFor возвращает диалект по имени хранилища (sqlite, mysql, postgres)
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "sqlite":
		return Dialect{
			Name:      name,
			quote:     `"`,
			keyType:   "TEXT",
			textType:  "TEXT",
			floatType: "REAL",
			timeType:  "TEXT",
			autoPK:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		}, nil
	case "mysql":
		return Dialect{
			Name:      name,
			quote:     "`",
			keyType:   "VARCHAR(64)",
			textType:  "TEXT",
			floatType: "DOUBLE",
			timeType:  "VARCHAR(40)",
			autoPK:    "INT AUTO_INCREMENT PRIMARY KEY",
		}, nil
	case "postgres":
		return Dialect{
			Name:      name,
			quote:     `"`,
			keyType:   "TEXT",
			textType:  "TEXT",
			floatType: "DOUBLE PRECISION",
			timeType:  "TEXT",
			autoPK:    "BIGSERIAL PRIMARY KEY",
			returning: true,
		}, nil
	default:
		return Dialect{}, fmt.Errorf("неизвестный диалект хранилища: %q", name)
	}
}

// Quote экранирует идентификатор, сохраняя регистр имени колонки
func (d Dialect) Quote(ident string) string {
	return d.quote + ident + d.quote
}

// QuoteAll экранирует список идентификаторов через запятую
func (d Dialect) QuoteAll(idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = d.Quote(ident)
	}
	return strings.Join(quoted, ", ")
}

// SupportsReturning сообщает, нужен ли RETURNING для получения run_id
func (d Dialect) SupportsReturning() bool {
	return d.returning
}

// ProfileTableDDL возвращает CREATE TABLE для employee_profile
func (d Dialect) ProfileTableDDL() string {
	types := map[string]string{
		"Employee_ID":        d.keyType + " NOT NULL",
		"First_Name":         d.textType,
		"Last_Name":          d.textType,
		"Department_ID":      d.keyType,
		"Status":             d.textType,
		"Monthly_Salary":     d.floatType + " NOT NULL",
		"Bonus":              d.floatType + " NOT NULL",
		"Department_Name":    d.textType,
		"Annual_Salary":      d.floatType + " NOT NULL",
		"Total_Compensation": d.floatType + " NOT NULL",
		"etl_executed_at":    d.timeType,
	}

	columns := make([]string, len(ProfileColumns))
	for i, name := range ProfileColumns {
		columns[i] = "\t" + d.Quote(name) + " " + types[name]
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", ProfileTable, strings.Join(columns, ",\n"))
}

// RunsTableDDL возвращает CREATE TABLE для etl_runs
func (d Dialect) RunsTableDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id %s,
	started_at %s,
	ended_at %s,
	status %s,
	rows_loaded INTEGER,
	notes %s
)`, RunsTable, d.autoPK, d.timeType, d.timeType, d.keyType, d.textType)
}
