package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Статусы сотрудника в отчёте employees
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// EmployeeRecord представляет запись отчёта employees
type EmployeeRecord struct {
	EmployeeID   *string `json:"Employee_ID"`
	FirstName    *string `json:"First_Name"`
	LastName     *string `json:"Last_Name"`
	DepartmentID *string `json:"Department_ID"`
	Status       string  `json:"Status"`
}

// CompensationRecord представляет запись отчёта compensation
type CompensationRecord struct {
	EmployeeID    *string   `json:"Employee_ID"`
	MonthlySalary NullFloat `json:"Monthly_Salary"`
	Bonus         NullFloat `json:"Bonus"`
}

// DepartmentRecord представляет запись отчёта departments
type DepartmentRecord struct {
	DepartmentID   *string `json:"Department_ID"`
	DepartmentName *string `json:"Department_Name"`
	ManagerID      *string `json:"Manager_ID"`
}

// ExtractedData содержит три набора данных, извлечённых за один запуск
type ExtractedData struct {
	Employees    []EmployeeRecord
	Compensation []CompensationRecord
	Departments  []DepartmentRecord
}

// IsBlank сообщает, что идентификатор отсутствует: null или пустая строка
func IsBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// Deref возвращает значение строки или пустую строку для nil
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullFloat - число, которое может отсутствовать в отчёте.
// Отчёты отдают суммы как числом, так и строкой, поэтому принимаются оба варианта.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float создаёт заполненный NullFloat
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// OrZero возвращает значение или 0 для отсутствующего числа
func (n NullFloat) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Float64
}

// UnmarshalJSON разбирает число, числовую строку, "" или null
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NullFloat{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = NullFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("некорректное число %q: %w", s, err)
		}
		*n = Float(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// MarshalJSON кодирует отсутствующее значение как null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}
