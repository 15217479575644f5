package directory

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"peopledesk/internal/apperror"
)

var ErrEmployeeNotFound = apperror.New(
	apperror.CodeNotFound,
	"employee not found",
	http.StatusNotFound,
)

var ErrManagerSelf = apperror.New(
	apperror.CodeValidation,
	"an employee cannot be their own manager",
	http.StatusBadRequest,
)

type StoreAPI interface {
	Insert(ctx context.Context, e *Employee) error
	Get(ctx context.Context, id string) (Employee, bool, error)
	List(ctx context.Context, limit, offset int) ([]Employee, error)
	Update(ctx context.Context, e *Employee, updatedAt time.Time) error
	ManagerID(ctx context.Context, employeeID string) (string, error)
	EmployeeIDByUserID(ctx context.Context, userID string) (string, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	if in.ManagerID != "" {
		if _, found, err := s.store.Get(ctx, in.ManagerID); err != nil {
			return Employee{}, err
		} else if !found {
			return Employee{}, ErrEmployeeNotFound
		}
	}
	now := time.Now()
	e := Employee{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Department: in.Department,
		ManagerID:  in.ManagerID,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, &e); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	e, found, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if !found {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Employee, error) {
	return s.store.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	e, found, err := s.store.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if !found {
		return Employee{}, ErrEmployeeNotFound
	}
	if in.ManagerID == id {
		return Employee{}, ErrManagerSelf
	}

	e.FirstName = in.FirstName
	e.LastName = in.LastName
	e.Email = in.Email
	e.Department = in.Department
	e.ManagerID = in.ManagerID
	if err := s.store.Update(ctx, &e, time.Now()); err != nil {
		return Employee{}, err
	}
	return e, nil
}

// ManagerOf satisfies the leave domain's Directory interface. Empty string
// means the employee has no manager on file.
func (s *Service) ManagerOf(ctx context.Context, employeeID string) (string, error) {
	return s.store.ManagerID(ctx, employeeID)
}

func (s *Service) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	return s.store.EmployeeIDByUserID(ctx, userID)
}
