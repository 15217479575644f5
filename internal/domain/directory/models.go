package directory

import "time"

type Employee struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Department string    `json:"department,omitempty"`
	ManagerID  string    `json:"managerId,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type EmployeeInput struct {
	UserID     string `json:"userId"`
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"max=100"`
	ManagerID  string `json:"managerId"`
}
