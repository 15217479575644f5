package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/domain/auth"
	"peopledesk/internal/platform/config"
)

// Seed provisions a first admin account and a small demo team with leave
// balances for the current year. It is a no-op when any user already exists.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	var userCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users").Scan(&userCount); err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	password := cfg.SeedAdminPassword
	if password == "" {
		password = "ChangeMe123!"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	adminID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
    INSERT INTO users (id, email, password_hash, role_name, active)
    VALUES ($1,$2,$3,$4,TRUE)
  `, adminID, cfg.SeedAdminEmail, hash, auth.RoleAdmin); err != nil {
		return err
	}

	managerUserID := uuid.NewString()
	employeeUserID := uuid.NewString()
	for _, u := range []struct {
		id, email, role string
	}{
		{managerUserID, "manager@example.com", auth.RoleManager},
		{employeeUserID, "employee@example.com", auth.RoleEmployee},
	} {
		if _, err := pool.Exec(ctx, `
      INSERT INTO users (id, email, password_hash, role_name, active)
      VALUES ($1,$2,$3,$4,TRUE)
    `, u.id, u.email, hash, u.role); err != nil {
			return err
		}
	}

	managerID := uuid.NewString()
	employeeID := uuid.NewString()
	if _, err := pool.Exec(ctx, `
    INSERT INTO employees (id, user_id, first_name, last_name, email, department, active)
    VALUES ($1,$2,'Dana','Reeves','manager@example.com','Engineering',TRUE)
  `, managerID, managerUserID); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, `
    INSERT INTO employees (id, user_id, first_name, last_name, email, department, manager_id, active)
    VALUES ($1,$2,'Sam','Ortiz','employee@example.com','Engineering',$3,TRUE)
  `, employeeID, employeeUserID, managerID); err != nil {
		return err
	}

	year := time.Now().Year()
	for _, id := range []string{managerID, employeeID} {
		if _, err := pool.Exec(ctx, `
      INSERT INTO leave_balances (employee_id, year, annual_total, annual_used, sick_total, sick_used)
      VALUES ($1,$2,20,0,10,0)
    `, id, year); err != nil {
			return err
		}
	}

	return nil
}
