package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"peopledesk/internal/apperror"
)

type Service struct {
	store     StoreAPI
	directory Directory
	notifier  Notifier
	now       func() time.Time
}

func NewService(store StoreAPI, directory Directory, notifier Notifier) *Service {
	return &Service{
		store:     store,
		directory: directory,
		notifier:  notifier,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit validates a candidate, persists it as a single Pending row and
// notifies the employee's manager. The balance check here is advisory; no
// reservation happens until approval.
func (s *Service) Submit(ctx context.Context, c Candidate) (LeaveRequest, error) {
	approved, err := s.store.ListApprovedByEmployee(ctx, c.EmployeeID)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	balance, _, err := s.store.GetBalance(ctx, c.EmployeeID, c.StartDate.Year())
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}

	now := s.now()
	if err := Validate(now, c, approved, balance); err != nil {
		return LeaveRequest{}, err
	}

	days, err := DaysBetween(c.StartDate, c.EndDate)
	if err != nil {
		return LeaveRequest{}, err
	}

	req := LeaveRequest{
		ID:         uuid.NewString(),
		EmployeeID: c.EmployeeID,
		LeaveType:  c.LeaveType,
		StartDate:  dateOnly(c.StartDate),
		EndDate:    dateOnly(c.EndDate),
		DaysCount:  days,
		Reason:     c.Reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.InsertRequest(ctx, &req); err != nil {
		return LeaveRequest{}, storeErr(err)
	}

	s.notifyManager(ctx, req)
	return req, nil
}

// Approve flips a Pending request to Approved and debits the balance in one
// transaction. The request row (and the balance row for tracked types) is read
// under a write lock, so a racing decision blocks, then fails the Pending
// check after this transaction commits.
func (s *Service) Approve(ctx context.Context, requestID, approverID string) (LeaveRequest, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, ErrInvalidTransition
	}

	if err := s.requireManager(ctx, req.EmployeeID, approverID); err != nil {
		return LeaveRequest{}, err
	}

	overlap, err := s.store.HasApprovedOverlap(ctx, tx, req.EmployeeID, req.StartDate, req.EndDate, req.ID)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	if overlap {
		return LeaveRequest{}, ErrOverlapsApproved
	}

	if TrackedType(req.LeaveType) {
		year := req.StartDate.Year()
		balance, err := s.store.GetBalanceForUpdate(ctx, tx, req.EmployeeID, year)
		if err != nil {
			return LeaveRequest{}, storeErr(err)
		}
		remaining, _ := Remaining(balance, req.LeaveType)
		if remaining < req.DaysCount {
			return LeaveRequest{}, ErrInsufficientBalance
		}
		newUsed := usedFor(balance, req.LeaveType) + req.DaysCount
		if err := s.store.UpdateBalanceUsed(ctx, tx, req.EmployeeID, year, req.LeaveType, newUsed); err != nil {
			return LeaveRequest{}, storeErr(err)
		}
	}

	decidedAt := s.now()
	if err := s.store.MarkApproved(ctx, tx, req.ID, approverID, decidedAt); err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return LeaveRequest{}, storeErr(err)
	}

	req.Status = StatusApproved
	req.ApproverID = approverID
	req.ApprovedAt = &decidedAt
	req.UpdatedAt = decidedAt

	s.notifyEmployee(ctx, req, "Leave request approved",
		fmt.Sprintf("Your %s leave from %s to %s was approved.",
			req.LeaveType, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")))
	return req, nil
}

// Reject flips a Pending request to Rejected. It never touches the balance.
func (s *Service) Reject(ctx context.Context, requestID, approverID, reason string) (LeaveRequest, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.GetRequestForUpdate(ctx, tx, requestID)
	if err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, ErrInvalidTransition
	}

	if err := s.requireManager(ctx, req.EmployeeID, approverID); err != nil {
		return LeaveRequest{}, err
	}
	if reason == "" {
		return LeaveRequest{}, ErrReasonRequired
	}

	decidedAt := s.now()
	if err := s.store.MarkRejected(ctx, tx, req.ID, approverID, reason, decidedAt); err != nil {
		return LeaveRequest{}, storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return LeaveRequest{}, storeErr(err)
	}

	req.Status = StatusRejected
	req.ApproverID = approverID
	req.ApprovedAt = &decidedAt
	req.RejectionReason = reason
	req.UpdatedAt = decidedAt

	s.notifyEmployee(ctx, req, "Leave request rejected",
		fmt.Sprintf("Your %s leave from %s to %s was rejected: %s",
			req.LeaveType, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), reason))
	return req, nil
}

// Balance returns the derived summary for an employee and year. A missing row
// reads as an all-zero balance rather than an error.
func (s *Service) Balance(ctx context.Context, employeeID string, year int) (BalanceSummary, error) {
	balance, found, err := s.store.GetBalance(ctx, employeeID, year)
	if err != nil {
		return BalanceSummary{}, storeErr(err)
	}
	if !found {
		balance = LeaveBalance{EmployeeID: employeeID, Year: year}
	}
	return Summary(balance), nil
}

func (s *Service) MyRequests(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error) {
	reqs, err := s.store.ListByEmployee(ctx, employeeID, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return reqs, nil
}

func (s *Service) TeamRequests(ctx context.Context, managerID string) ([]TeamRequest, error) {
	reqs, err := s.store.ListByManager(ctx, managerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return reqs, nil
}

func (s *Service) ReportBalances(ctx context.Context, year int) ([]BalanceSummary, error) {
	rows, err := s.store.ReportBalances(ctx, year)
	if err != nil {
		return nil, storeErr(err)
	}
	return rows, nil
}

func (s *Service) requireManager(ctx context.Context, employeeID, actorID string) error {
	manager, err := s.directory.ManagerOf(ctx, employeeID)
	if err != nil {
		return storeErr(err)
	}
	if manager == "" || manager != actorID {
		return ErrNotManager
	}
	return nil
}

func (s *Service) notifyManager(ctx context.Context, req LeaveRequest) {
	manager, err := s.directory.ManagerOf(ctx, req.EmployeeID)
	if err != nil || manager == "" {
		if err != nil {
			slog.Warn("manager lookup for notification failed", "requestId", req.ID, "err", err)
		}
		return
	}
	subject := "Leave request submitted"
	body := fmt.Sprintf("A %s leave request for %d day(s) from %s to %s awaits your decision.",
		req.LeaveType, req.DaysCount, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	if err := s.notifier.Notify(ctx, manager, subject, body); err != nil {
		slog.Warn("submission notification failed", "requestId", req.ID, "manager", manager, "err", err)
	}
}

func (s *Service) notifyEmployee(ctx context.Context, req LeaveRequest, subject, body string) {
	if err := s.notifier.Notify(ctx, req.EmployeeID, subject, body); err != nil {
		slog.Warn("decision notification failed", "requestId", req.ID, "employee", req.EmployeeID, "err", err)
	}
}

func usedFor(balance LeaveBalance, leaveType string) int {
	if leaveType == TypeSick {
		return balance.SickUsed
	}
	return balance.AnnualUsed
}

// storeErr passes typed domain errors through and wraps anything else as a
// transient storage failure so no driver detail leaks to callers.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Wrap(err, apperror.CodeTransient, "storage operation failed", http.StatusServiceUnavailable)
}
