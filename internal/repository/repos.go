package repository

import "github.com/alexanderramin/staffplan/internal/db"

// Repos bundles every repository over one connection or transaction.
type Repos struct {
	Consultants ConsultantRepo
	Projects    ProjectRepo
	Phases      PhaseRepo
	Allocations PhaseAllocationRepo
	Weeks       WeeklyAllocationRepo
	Audit       AuditRepo
	HourChanges HourChangeRepo
	Batches     ApprovalBatchRepo
}

// NewSQLiteRepos builds SQLite repositories over conn. Pass the tx handed to
// a UnitOfWork callback to scope them to that transaction.
func NewSQLiteRepos(conn db.DBTX) Repos {
	return Repos{
		Consultants: NewSQLiteConsultantRepo(conn),
		Projects:    NewSQLiteProjectRepo(conn),
		Phases:      NewSQLitePhaseRepo(conn),
		Allocations: NewSQLitePhaseAllocationRepo(conn),
		Weeks:       NewSQLiteWeeklyAllocationRepo(conn),
		Audit:       NewSQLiteAuditRepo(conn),
		HourChanges: NewSQLiteHourChangeRepo(conn),
		Batches:     NewSQLiteApprovalBatchRepo(conn),
	}
}
