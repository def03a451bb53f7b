package models

// EmployeeProfile - денормализованная строка таблицы employee_profile
type EmployeeProfile struct {
	EmployeeID        string    `db:"Employee_ID" json:"Employee_ID"`
	FirstName         string    `db:"First_Name" json:"First_Name"`
	LastName          string    `db:"Last_Name" json:"Last_Name"`
	DepartmentID      *string   `db:"Department_ID" json:"Department_ID"`
	Status            string    `db:"Status" json:"Status"`
	MonthlySalary     float64   `db:"Monthly_Salary" json:"Monthly_Salary"`
	Bonus             float64   `db:"Bonus" json:"Bonus"`
	DepartmentName    *string   `db:"Department_Name" json:"Department_Name"`
	AnnualSalary      float64   `db:"Annual_Salary" json:"Annual_Salary"`
	TotalCompensation float64   `db:"Total_Compensation" json:"Total_Compensation"`
	ExecutedAt        Timestamp `db:"etl_executed_at" json:"etl_executed_at"`
}

// ProfileColumns - порядок колонок таблицы employee_profile
var ProfileColumns = []string{
	"Employee_ID",
	"First_Name",
	"Last_Name",
	"Department_ID",
	"Status",
	"Monthly_Salary",
	"Bonus",
	"Department_Name",
	"Annual_Salary",
	"Total_Compensation",
	"etl_executed_at",
}
