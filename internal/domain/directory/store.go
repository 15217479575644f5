package directory

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

const employeeColumns = `
    id, COALESCE(user_id::text, ''), first_name, last_name, email,
    COALESCE(department, ''), COALESCE(manager_id::text, ''), active, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Email,
		&e.Department, &e.ManagerID, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *Store) Insert(ctx context.Context, e *Employee) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (id, user_id, first_name, last_name, email, department, manager_id, active, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
  `, e.ID, nullIfEmpty(e.UserID), e.FirstName, e.LastName, e.Email, nullIfEmpty(e.Department), nullIfEmpty(e.ManagerID), e.Active, e.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, bool, error) {
	row := s.DB.QueryRow(ctx, `SELECT`+employeeColumns+` FROM employees WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, false, nil
	}
	if err != nil {
		return Employee{}, false, err
	}
	return e, true, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+employeeColumns+`
    FROM employees
    ORDER BY last_name, first_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) Update(ctx context.Context, e *Employee, updatedAt time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $1, last_name = $2, email = $3, department = $4,
        manager_id = $5, active = $6, updated_at = $7
    WHERE id = $8
  `, e.FirstName, e.LastName, e.Email, nullIfEmpty(e.Department), nullIfEmpty(e.ManagerID), e.Active, updatedAt, e.ID)
	return err
}

func (s *Store) ManagerID(ctx context.Context, employeeID string) (string, error) {
	var managerID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(manager_id::text, '')
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return managerID, err
}

// nullIfEmpty maps "" to SQL NULL so optional UUID columns never see an
// empty-string literal.
func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `SELECT id FROM employees WHERE user_id = $1`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}
