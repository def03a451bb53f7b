// routes/fixtures.go
package routes

// Report - ответ отчёта в формате RaaS
type Report struct {
	Entries []map[string]any `json:"Report_Entry"`
}

// Fixtures - данные трёх отчётов тестового сервера
type Fixtures struct {
	Employees    Report
	Compensation Report
	Departments  Report
}

// DefaultFixtures возвращает демонстрационный набор данных.
// У E1004 подразделение D40 без записи в отчёте departments.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Employees: Report{Entries: []map[string]any{
			{"Employee_ID": "E1001", "First_Name": "Alice", "Last_Name": "Tan", "Department_ID": "D10", "Status": "ACTIVE"},
			{"Employee_ID": "E1002", "First_Name": "Bob", "Last_Name": "Lim", "Department_ID": "D20", "Status": "INACTIVE"},
			{"Employee_ID": "E1003", "First_Name": "Cindy", "Last_Name": "Ng", "Department_ID": "D30", "Status": "ACTIVE"},
			{"Employee_ID": "E1004", "First_Name": "Bruce", "Last_Name": "Wayne", "Department_ID": "D40", "Status": "ACTIVE"},
		}},
		Compensation: Report{Entries: []map[string]any{
			{"Employee_ID": "E1001", "Monthly_Salary": 5500, "Bonus": 800},
			{"Employee_ID": "E1002", "Monthly_Salary": 4700, "Bonus": 500},
			{"Employee_ID": "E1003", "Monthly_Salary": 6200, "Bonus": 1000},
			{"Employee_ID": "E1004", "Monthly_Salary": 7500, "Bonus": 0},
		}},
		Departments: Report{Entries: []map[string]any{
			{"Department_ID": "D10", "Department_Name": "Finance", "Manager_ID": "E1001"},
			{"Department_ID": "D20", "Department_Name": "HR", "Manager_ID": nil},
			{"Department_ID": "D30", "Department_Name": "IT", "Manager_ID": "E1003"},
		}},
	}
}
