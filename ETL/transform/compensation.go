package transform

import (
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Compensation - расчётные поля компенсации сотрудника
type Compensation struct {
	MonthlySalary     float64
	Bonus             float64
	AnnualSalary      float64
	TotalCompensation float64
}

// ComputeCompensation считает годовой оклад и полную компенсацию.
// Арифметика в decimal, чтобы 0.1*12 + 0.2 не накапливало ошибку float64.
func ComputeCompensation(monthly, bonus float64) Compensation {
	m := decimal.NewFromFloat(monthly)
	b := decimal.NewFromFloat(bonus)

	annual := m.Mul(monthsPerYear)
	total := annual.Add(b)

	return Compensation{
		MonthlySalary:     monthly,
		Bonus:             bonus,
		AnnualSalary:      annual.InexactFloat64(),
		TotalCompensation: total.InexactFloat64(),
	}
}
