package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type pgxTx struct {
	tx pgx.Tx
}

func (t pgxTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t pgxTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (s *Store) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return pgxTx{tx: tx}, nil
}

func pgtx(tx Tx) pgx.Tx {
	return tx.(pgxTx).tx
}

const requestColumns = `
    id, employee_id, leave_type, start_date, end_date, days_count, reason,
    status, approver_id, decided_at, rejection_reason, created_at, updated_at`

func scanRequest(row pgx.Row) (LeaveRequest, error) {
	var req LeaveRequest
	var approverID, rejectionReason *string
	var decidedAt *time.Time
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveType, &req.StartDate, &req.EndDate,
		&req.DaysCount, &req.Reason, &req.Status, &approverID, &decidedAt,
		&rejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return LeaveRequest{}, err
	}
	if approverID != nil {
		req.ApproverID = *approverID
	}
	if rejectionReason != nil {
		req.RejectionReason = *rejectionReason
	}
	req.ApprovedAt = decidedAt
	return req, nil
}

func (s *Store) InsertRequest(ctx context.Context, req *LeaveRequest) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, days_count, reason, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
  `, req.ID, req.EmployeeID, req.LeaveType, req.StartDate, req.EndDate, req.DaysCount, req.Reason, req.Status, req.CreatedAt)
	return err
}

func (s *Store) GetRequestForUpdate(ctx context.Context, tx Tx, id string) (LeaveRequest, error) {
	row := pgtx(tx).QueryRow(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests
    WHERE id = $1
    FOR UPDATE
  `, id)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrRequestNotFound
	}
	return req, err
}

func (s *Store) MarkApproved(ctx context.Context, tx Tx, id, approverID string, decidedAt time.Time) error {
	_, err := pgtx(tx).Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approver_id = $2, decided_at = $3, updated_at = $3
    WHERE id = $4
  `, StatusApproved, approverID, decidedAt, id)
	return err
}

func (s *Store) MarkRejected(ctx context.Context, tx Tx, id, approverID, reason string, decidedAt time.Time) error {
	_, err := pgtx(tx).Exec(ctx, `
    UPDATE leave_requests
    SET status = $1, approver_id = $2, decided_at = $3, rejection_reason = $4, updated_at = $3
    WHERE id = $5
  `, StatusRejected, approverID, decidedAt, reason, id)
	return err
}

func (s *Store) GetBalance(ctx context.Context, employeeID string, year int) (LeaveBalance, bool, error) {
	var b LeaveBalance
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id, year, annual_total, annual_used, sick_total, sick_used, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND year = $2
  `, employeeID, year).Scan(&b.EmployeeID, &b.Year, &b.AnnualTotal, &b.AnnualUsed, &b.SickTotal, &b.SickUsed, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveBalance{}, false, nil
	}
	if err != nil {
		return LeaveBalance{}, false, err
	}
	return b, true, nil
}

func (s *Store) GetBalanceForUpdate(ctx context.Context, tx Tx, employeeID string, year int) (LeaveBalance, error) {
	var b LeaveBalance
	err := pgtx(tx).QueryRow(ctx, `
    SELECT employee_id, year, annual_total, annual_used, sick_total, sick_used, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND year = $2
    FOR UPDATE
  `, employeeID, year).Scan(&b.EmployeeID, &b.Year, &b.AnnualTotal, &b.AnnualUsed, &b.SickTotal, &b.SickUsed, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveBalance{}, ErrBalanceNotFound
	}
	return b, err
}

func (s *Store) UpdateBalanceUsed(ctx context.Context, tx Tx, employeeID string, year int, leaveType string, newUsed int) error {
	column := "annual_used"
	if leaveType == TypeSick {
		column = "sick_used"
	}
	_, err := pgtx(tx).Exec(ctx, `
    UPDATE leave_balances
    SET `+column+` = $1, updated_at = now()
    WHERE employee_id = $2 AND year = $3
  `, newUsed, employeeID, year)
	return err
}

func (s *Store) ListApprovedByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests
    WHERE employee_id = $1 AND status = $2
    ORDER BY start_date
  `, employeeID, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) HasApprovedOverlap(ctx context.Context, tx Tx, employeeID string, start, end time.Time, excludeID string) (bool, error) {
	var count int
	err := pgtx(tx).QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests
    WHERE employee_id = $1 AND status = $2 AND id <> $3
      AND NOT (end_date < $4 OR start_date > $5)
  `, employeeID, StatusApproved, excludeID, start, end).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+requestColumns+`
    FROM leave_requests
    WHERE employee_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) ListByManager(ctx context.Context, managerID string) ([]TeamRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.leave_type, r.start_date, r.end_date, r.days_count,
           r.reason, r.status, r.approver_id, r.decided_at, r.rejection_reason,
           r.created_at, r.updated_at,
           e.first_name || ' ' || e.last_name, e.email
    FROM leave_requests r
    JOIN employees e ON r.employee_id = e.id
    WHERE e.manager_id = $1
    ORDER BY r.created_at DESC
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []TeamRequest
	for rows.Next() {
		var tr TeamRequest
		var approverID, rejectionReason *string
		var decidedAt *time.Time
		if err := rows.Scan(
			&tr.ID, &tr.EmployeeID, &tr.LeaveType, &tr.StartDate, &tr.EndDate, &tr.DaysCount,
			&tr.Reason, &tr.Status, &approverID, &decidedAt, &rejectionReason,
			&tr.CreatedAt, &tr.UpdatedAt, &tr.EmployeeName, &tr.EmployeeEmail,
		); err != nil {
			return nil, err
		}
		if approverID != nil {
			tr.ApproverID = *approverID
		}
		if rejectionReason != nil {
			tr.RejectionReason = *rejectionReason
		}
		tr.ApprovedAt = decidedAt
		requests = append(requests, tr)
	}
	return requests, rows.Err()
}

func (s *Store) ReportBalances(ctx context.Context, year int) ([]BalanceSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, year, annual_total, annual_used, sick_total, sick_used, updated_at
    FROM leave_balances
    WHERE year = $1
    ORDER BY employee_id
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceSummary
	for rows.Next() {
		var b LeaveBalance
		if err := rows.Scan(&b.EmployeeID, &b.Year, &b.AnnualTotal, &b.AnnualUsed, &b.SickTotal, &b.SickUsed, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, Summary(b))
	}
	return out, rows.Err()
}
