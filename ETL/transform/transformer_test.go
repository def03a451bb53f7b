package transform

import (
	"testing"
	"time"

	"github.com/LilVoxy/workforce_etl/ETL/models"
	"github.com/LilVoxy/workforce_etl/ETL/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

var executedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestBuildProfiles_JoinAndCompute(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{
			{EmployeeID: str("E1"), FirstName: str("Ann"), LastName: str("Lee"), DepartmentID: str("D1"), Status: "ACTIVE"},
		},
		[]models.CompensationRecord{
			{EmployeeID: str("E1"), MonthlySalary: models.Float(5000), Bonus: models.Float(100)},
		},
		[]models.DepartmentRecord{
			{DepartmentID: str("D1"), DepartmentName: str("Eng")},
		},
		executedAt,
	)

	require.Len(t, profiles, 1)
	p := profiles[0]
	assert.Equal(t, "E1", p.EmployeeID)
	assert.Equal(t, "Ann", p.FirstName)
	assert.Equal(t, "Lee", p.LastName)
	assert.Equal(t, "D1", *p.DepartmentID)
	assert.Equal(t, "Eng", *p.DepartmentName)
	assert.Equal(t, 5000.0, p.MonthlySalary)
	assert.Equal(t, 100.0, p.Bonus)
	assert.Equal(t, 60000.0, p.AnnualSalary)
	assert.Equal(t, 60100.0, p.TotalCompensation)
	assert.True(t, executedAt.Equal(p.ExecutedAt.Time))
}

func TestBuildProfiles_MissingCompensationDefaultsToZero(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{{EmployeeID: str("E2"), DepartmentID: str("D9"), Status: "ACTIVE"}},
		nil,
		nil,
		executedAt,
	)

	require.Len(t, profiles, 1)
	assert.Zero(t, profiles[0].MonthlySalary)
	assert.Zero(t, profiles[0].Bonus)
	assert.Zero(t, profiles[0].AnnualSalary)
	assert.Zero(t, profiles[0].TotalCompensation)
	assert.Nil(t, profiles[0].DepartmentName)
}

func TestBuildProfiles_NullBonus(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{{EmployeeID: str("E3"), Status: "ACTIVE"}},
		[]models.CompensationRecord{{EmployeeID: str("E3"), MonthlySalary: models.Float(1000)}},
		nil,
		executedAt,
	)

	require.Len(t, profiles, 1)
	assert.Equal(t, 12000.0, profiles[0].AnnualSalary)
	assert.Equal(t, 12000.0, profiles[0].TotalCompensation)
	assert.Nil(t, profiles[0].DepartmentID)
}

func TestBuildProfiles_FiltersInactiveAndKeepsOrder(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{
			{EmployeeID: str("E5"), Status: "ACTIVE"},
			{EmployeeID: str("E4"), Status: "INACTIVE"},
			{EmployeeID: str("E1"), Status: "active"},
			{EmployeeID: str("E2"), Status: "ACTIVE"},
		},
		nil, nil, executedAt,
	)

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.EmployeeID
	}
	assert.Equal(t, []string{"E5", "E2"}, ids)
}

func TestBuildProfiles_FirstMatchWins(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{{EmployeeID: str("E1"), DepartmentID: str("D1"), Status: "ACTIVE"}},
		[]models.CompensationRecord{
			{EmployeeID: str("E1"), MonthlySalary: models.Float(100)},
			{EmployeeID: str("E1"), MonthlySalary: models.Float(999)},
		},
		[]models.DepartmentRecord{
			{DepartmentID: str("D1"), DepartmentName: str("First")},
			{DepartmentID: str("D1"), DepartmentName: str("Second")},
		},
		executedAt,
	)

	require.Len(t, profiles, 1, "повторы ключей не размножают сотрудника")
	assert.Equal(t, 100.0, profiles[0].MonthlySalary)
	assert.Equal(t, "First", *profiles[0].DepartmentName)
}

func TestBuildProfiles_SingleTimestampPerRun(t *testing.T) {
	profiles := BuildProfiles(
		[]models.EmployeeRecord{
			{EmployeeID: str("E1"), Status: "ACTIVE"},
			{EmployeeID: str("E2"), Status: "ACTIVE"},
		},
		nil, nil, executedAt,
	)

	require.Len(t, profiles, 2)
	assert.Equal(t, profiles[0].ExecutedAt, profiles[1].ExecutedAt)
}

func TestBuildProfiles_Empty(t *testing.T) {
	profiles := BuildProfiles(nil, nil, nil, executedAt)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestComputeCompensation_DecimalArithmetic(t *testing.T) {
	calc := ComputeCompensation(0.1, 0.2)
	assert.Equal(t, 1.2, calc.AnnualSalary)
	assert.Equal(t, 1.4, calc.TotalCompensation)

	calc = ComputeCompensation(4166.67, 250.5)
	assert.Equal(t, 50000.04, calc.AnnualSalary)
	assert.Equal(t, 50250.54, calc.TotalCompensation)
}

func TestTransformer_Transform(t *testing.T) {
	data := &models.ExtractedData{
		Employees:    []models.EmployeeRecord{{EmployeeID: str("E1"), Status: "ACTIVE"}},
		Compensation: []models.CompensationRecord{{EmployeeID: str("E1"), MonthlySalary: models.Float(10)}},
	}

	profiles := NewTransformer(utils.NewDiscardLogger()).Transform(data, executedAt)
	require.Len(t, profiles, 1)
	assert.Equal(t, 120.0, profiles[0].AnnualSalary)
}
