package transform

import (
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
)

// Transformer строит профили сотрудников из извлечённых данных
type Transformer struct {
	logger *utils.ETLLogger
}

// NewTransformer создает новый экземпляр Transformer
func NewTransformer(logger *utils.ETLLogger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform выполняет фазу преобразования с логированием
func (t *Transformer) Transform(data *models.ExtractedData, executedAt time.Time) []models.EmployeeProfile {
	startTime := time.Now()
	t.logger.Info("Начало фазы Transform (Преобразование данных)")

	profiles := BuildProfiles(data.Employees, data.Compensation, data.Departments, executedAt)

	t.logger.Info("Фаза Transform завершена за %v: %d активных сотрудников готово к загрузке",
		time.Since(startTime), len(profiles))
	return profiles
}

// BuildProfiles соединяет сотрудников с компенсациями и подразделениями.
//
// Соединения левые: сотрудник без компенсации получает нулевой оклад и бонус,
// без подразделения - пустое Department_Name. При повторах ключа используется
// первая запись. В результат попадают только сотрудники со статусом ACTIVE,
// в порядке исходного отчёта, все с одним и тем же executedAt.
func BuildProfiles(
	employees []models.EmployeeRecord,
	compensation []models.CompensationRecord,
	departments []models.DepartmentRecord,
	executedAt time.Time,
) []models.EmployeeProfile {
	compByEmployee := make(map[string]models.CompensationRecord, len(compensation))
	for _, comp := range compensation {
		if models.IsBlank(comp.EmployeeID) {
			continue
		}
		if _, exists := compByEmployee[*comp.EmployeeID]; !exists {
			compByEmployee[*comp.EmployeeID] = comp
		}
	}

	deptNames := make(map[string]*string, len(departments))
	for _, dept := range departments {
		if models.IsBlank(dept.DepartmentID) {
			continue
		}
		if _, exists := deptNames[*dept.DepartmentID]; !exists {
			deptNames[*dept.DepartmentID] = dept.DepartmentName
		}
	}

	stamp := models.NewTimestamp(executedAt)
	profiles := make([]models.EmployeeProfile, 0, len(employees))

	for _, emp := range employees {
		if emp.Status != models.StatusActive {
			continue
		}

		id := models.Deref(emp.EmployeeID)
		comp := compByEmployee[id]
		calc := ComputeCompensation(comp.MonthlySalary.OrZero(), comp.Bonus.OrZero())

		var deptName *string
		if !models.IsBlank(emp.DepartmentID) {
			deptName = deptNames[*emp.DepartmentID]
		}

		profiles = append(profiles, models.EmployeeProfile{
			EmployeeID:        id,
			FirstName:         models.Deref(emp.FirstName),
			LastName:          models.Deref(emp.LastName),
			DepartmentID:      emp.DepartmentID,
			Status:            emp.Status,
			MonthlySalary:     calc.MonthlySalary,
			Bonus:             calc.Bonus,
			DepartmentName:    deptName,
			AnnualSalary:      calc.AnnualSalary,
			TotalCompensation: calc.TotalCompensation,
			ExecutedAt:        stamp,
		})
	}

	return profiles
}
