package appraisal

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/apperror"
)

var ErrAppraisalNotFound = apperror.New(
	apperror.CodeNotFound,
	"appraisal not found",
	http.StatusNotFound,
)

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Create(ctx context.Context, reviewerID string, in AppraisalInput) (Appraisal, error) {
	now := time.Now()
	a := Appraisal{
		ID:         uuid.NewString(),
		EmployeeID: in.EmployeeID,
		ReviewerID: reviewerID,
		Period:     in.Period,
		Rating:     in.Rating,
		Summary:    in.Summary,
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO appraisals (id, employee_id, reviewer_id, period, rating, summary, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
  `, a.ID, a.EmployeeID, a.ReviewerID, a.Period, a.Rating, a.Summary, a.Status, now)
	if err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Appraisal, error) {
	var a Appraisal
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, reviewer_id, period, rating, summary, status, created_at, updated_at
    FROM appraisals
    WHERE id = $1
  `, id).Scan(&a.ID, &a.EmployeeID, &a.ReviewerID, &a.Period, &a.Rating, &a.Summary, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appraisal{}, ErrAppraisalNotFound
	}
	if err != nil {
		return Appraisal{}, err
	}
	return a, nil
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Appraisal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, reviewer_id, period, rating, summary, status, created_at, updated_at
    FROM appraisals
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appraisal
	for rows.Next() {
		var a Appraisal
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ReviewerID, &a.Period, &a.Rating, &a.Summary, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
