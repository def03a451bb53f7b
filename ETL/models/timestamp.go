package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimestampLayout - формат хранения времени в таблицах ETL
const TimestampLayout = time.RFC3339Nano

// Timestamp хранится в базе как текст RFC 3339 в UTC,
// что одинаково работает в SQLite, MySQL и PostgreSQL
type Timestamp struct {
	time.Time
}

// NewTimestamp создаёт Timestamp в UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// String возвращает время в формате хранения
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// Value реализует driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.String(), nil
}

// Scan реализует sql.Scanner
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("невозможно преобразовать %T в Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("некорректное время %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}
