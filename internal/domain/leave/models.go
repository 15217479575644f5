package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"
	TypeOther  = "other"
)

// MaxReasonLength bounds the free-text reason on submission.
const MaxReasonLength = 500

type LeaveRequest struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	LeaveType       string     `json:"leaveType"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	DaysCount       int        `json:"daysCount"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApproverID      string     `json:"approverId,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// LeaveBalance tracks allotted vs used days for one employee and year.
// Annual and Sick are the only tracked types.
type LeaveBalance struct {
	EmployeeID  string    `json:"employeeId"`
	Year        int       `json:"year"`
	AnnualTotal int       `json:"annualTotal"`
	AnnualUsed  int       `json:"annualUsed"`
	SickTotal   int       `json:"sickTotal"`
	SickUsed    int       `json:"sickUsed"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamRequest is a leave request joined with employee display data for the
// manager view.
type TeamRequest struct {
	LeaveRequest
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
}

// BalanceSummary is the derived projection returned by the balance endpoint.
type BalanceSummary struct {
	EmployeeID      string    `json:"employeeId"`
	Year            int       `json:"year"`
	AnnualTotal     int       `json:"annualTotal"`
	AnnualUsed      int       `json:"annualUsed"`
	AnnualRemaining int       `json:"annualRemaining"`
	SickTotal       int       `json:"sickTotal"`
	SickUsed        int       `json:"sickUsed"`
	SickRemaining   int       `json:"sickRemaining"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func ValidType(leaveType string) bool {
	switch leaveType {
	case TypeAnnual, TypeSick, TypeUnpaid, TypeOther:
		return true
	}
	return false
}
