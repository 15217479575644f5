package appraisal

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusFinalized = "finalized"
)

type Appraisal struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	ReviewerID string    `json:"reviewerId"`
	Period     string    `json:"period"`
	Rating     int       `json:"rating"`
	Summary    string    `json:"summary"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type AppraisalInput struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Period     string `json:"period" validate:"required,max=20"`
	Rating     int    `json:"rating" validate:"min=1,max=5"`
	Summary    string `json:"summary" validate:"required,max=2000"`
}
