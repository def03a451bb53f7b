package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LilVoxy/workforce_etl/ETL/metrics"
	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
)

// Правила проверки, метки метрики etl_validation_violations_total
const (
	RuleEmployeeNullID     = "employee_null_id"
	RuleEmployeeDuplicate  = "employee_duplicate_id"
	RuleSalaryPositive     = "salary_positive"
	RuleCompensationNullID = "compensation_null_id"
	RuleDepartmentNullID   = "department_null_id"
)

// Сообщения о нарушениях, попадают в notes журнала etl_runs
const (
	MsgEmployeeNullID     = "Null Employee_ID in employee dataset"
	MsgEmployeeDuplicate  = "Duplicate Employee_ID found in employees"
	MsgSalaryPositive     = "Monthly_Salary must be > 0 in compensation dataset"
	MsgCompensationNullID = "Null Employee_ID in compensation dataset"
	MsgDepartmentNullID   = "Null Department_ID in departments dataset"
)

// ValidationError содержит все нарушения, найденные за одну проверку
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + strings.Join(e.Violations, "; ")
}

// ValidationReport - итог успешной проверки
type ValidationReport struct {
	Employees    int
	Compensation int
	Departments  int
	Warnings     []string
}

// Validator проверяет целостность трёх наборов данных
type Validator struct {
	logger *utils.ETLLogger
}

// NewValidator создает новый экземпляр Validator
func NewValidator(logger *utils.ETLLogger) *Validator {
	return &Validator{logger: logger}
}

// Validate проверяет все правила и собирает нарушения, не останавливаясь на первом.
// Предупреждения не прерывают запуск.
func (v *Validator) Validate(data *models.ExtractedData) (*ValidationReport, error) {
	var violations []string
	violate := func(rule, msg string) {
		metrics.ObserveViolation(rule)
		violations = append(violations, msg)
	}

	// Сотрудники
	employeeIDs := make(map[string]struct{}, len(data.Employees))
	nullEmployee, duplicateEmployee := false, false
	for _, emp := range data.Employees {
		if models.IsBlank(emp.EmployeeID) {
			nullEmployee = true
			continue
		}
		if _, seen := employeeIDs[*emp.EmployeeID]; seen {
			duplicateEmployee = true
			continue
		}
		employeeIDs[*emp.EmployeeID] = struct{}{}
	}
	if nullEmployee {
		violate(RuleEmployeeNullID, MsgEmployeeNullID)
	}
	if duplicateEmployee {
		violate(RuleEmployeeDuplicate, MsgEmployeeDuplicate)
	}

	// Компенсации
	compensationIDs := make(map[string]int, len(data.Compensation))
	nonPositiveSalary, nullCompensation := false, false
	for _, comp := range data.Compensation {
		if comp.MonthlySalary.Valid && comp.MonthlySalary.Float64 <= 0 {
			nonPositiveSalary = true
		}
		if models.IsBlank(comp.EmployeeID) {
			nullCompensation = true
			continue
		}
		compensationIDs[*comp.EmployeeID]++
	}
	if nonPositiveSalary {
		violate(RuleSalaryPositive, MsgSalaryPositive)
	}
	if nullCompensation {
		violate(RuleCompensationNullID, MsgCompensationNullID)
	}

	// Подразделения
	departmentIDs := make(map[string]struct{}, len(data.Departments))
	nullDepartment := false
	for _, dept := range data.Departments {
		if models.IsBlank(dept.DepartmentID) {
			nullDepartment = true
			continue
		}
		departmentIDs[*dept.DepartmentID] = struct{}{}
	}
	if nullDepartment {
		violate(RuleDepartmentNullID, MsgDepartmentNullID)
	}

	if len(violations) > 0 {
		err := &ValidationError{Violations: violations}
		v.logger.Error("%v", err)
		return nil, err
	}

	report := &ValidationReport{
		Employees:    len(data.Employees),
		Compensation: len(data.Compensation),
		Departments:  len(data.Departments),
		Warnings:     referentialWarnings(data, employeeIDs, compensationIDs, departmentIDs),
	}
	for _, w := range report.Warnings {
		v.logger.Warn("%s", w)
	}
	v.logger.Info("Проверка данных пройдена: %d сотрудников, %d компенсаций, %d подразделений",
		report.Employees, report.Compensation, report.Departments)

	return report, nil
}

// referentialWarnings собирает нефатальные нарушения ссылочной целостности
func referentialWarnings(data *models.ExtractedData, employeeIDs map[string]struct{}, compensationIDs map[string]int, departmentIDs map[string]struct{}) []string {
	var warnings []string

	var missingComp []string
	for id := range employeeIDs {
		if _, ok := compensationIDs[id]; !ok {
			missingComp = append(missingComp, id)
		}
	}
	if len(missingComp) > 0 {
		sort.Strings(missingComp)
		warnings = append(warnings, fmt.Sprintf("Employees without compensation records: %s", strings.Join(missingComp, ", ")))
	}

	unknownDepts := make(map[string]struct{})
	for _, emp := range data.Employees {
		if models.IsBlank(emp.DepartmentID) {
			continue
		}
		if _, ok := departmentIDs[*emp.DepartmentID]; !ok {
			unknownDepts[*emp.DepartmentID] = struct{}{}
		}
	}
	if len(unknownDepts) > 0 {
		warnings = append(warnings, fmt.Sprintf("Employees reference unknown departments: %s", joinSorted(unknownDepts)))
	}

	orphans := make(map[string]struct{})
	duplicates := make(map[string]struct{})
	for id, n := range compensationIDs {
		if _, ok := employeeIDs[id]; !ok {
			orphans[id] = struct{}{}
		}
		if n > 1 {
			duplicates[id] = struct{}{}
		}
	}
	if len(orphans) > 0 {
		warnings = append(warnings, fmt.Sprintf("Compensation records for unknown employees: %s", joinSorted(orphans)))
	}
	if len(duplicates) > 0 {
		warnings = append(warnings, fmt.Sprintf("Multiple compensation records, first one is used: %s", joinSorted(duplicates)))
	}

	return warnings
}

func joinSorted(set map[string]struct{}) string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
