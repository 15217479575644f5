package leave

import (
	"context"
	"time"
)

// Tx is a unit of work. Row locks taken through it are held until Commit or
// Rollback, which is what serializes concurrent decisions on one request.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type StoreAPI interface {
	Begin(ctx context.Context) (Tx, error)

	InsertRequest(ctx context.Context, req *LeaveRequest) error
	// GetRequestForUpdate reads the request row under a write lock; a second
	// caller blocks until the owning transaction ends.
	GetRequestForUpdate(ctx context.Context, tx Tx, id string) (LeaveRequest, error)
	MarkApproved(ctx context.Context, tx Tx, id, approverID string, decidedAt time.Time) error
	MarkRejected(ctx context.Context, tx Tx, id, approverID, reason string, decidedAt time.Time) error

	GetBalance(ctx context.Context, employeeID string, year int) (LeaveBalance, bool, error)
	GetBalanceForUpdate(ctx context.Context, tx Tx, employeeID string, year int) (LeaveBalance, error)
	UpdateBalanceUsed(ctx context.Context, tx Tx, employeeID string, year int, leaveType string, newUsed int) error

	ListApprovedByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	HasApprovedOverlap(ctx context.Context, tx Tx, employeeID string, start, end time.Time, excludeID string) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error)
	ListByManager(ctx context.Context, managerID string) ([]TeamRequest, error)
	ReportBalances(ctx context.Context, year int) ([]BalanceSummary, error)
}

// Directory answers "who manages employee X". Empty string means nobody does.
type Directory interface {
	ManagerOf(ctx context.Context, employeeID string) (string, error)
}

// Notifier delivers a message to an employee. Callers in this package treat
// every failure as absorbable: the authoritative state change has already
// committed by the time Notify runs.
type Notifier interface {
	Notify(ctx context.Context, toEmployeeID, subject, body string) error
}
