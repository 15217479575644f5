package leave

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"peopledesk/internal/apperror"
)

// Candidate is a proposed leave request before it has an identity.
type Candidate struct {
	EmployeeID string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// Validate runs every submission check and reports the full failure set.
// Checks are evaluated, not short-circuited, so a caller fixing its payload
// sees everything wrong at once. A nil return means the candidate passed.
//
// The balance sufficiency check is advisory at submission time: nothing is
// reserved, and approval re-validates under lock.
func Validate(now time.Time, c Candidate, approved []LeaveRequest, balance LeaveBalance) error {
	errs := &apperror.ValidationErrors{}

	days, err := DaysBetween(c.StartDate, c.EndDate)
	datesOK := err == nil
	if !datesOK {
		errs.Add(apperror.New(apperror.CodeValidation, "end date must not be before start date", http.StatusBadRequest))
	}

	if dateOnly(c.StartDate).Before(dateOnly(now)) {
		errs.Add(apperror.New(apperror.CodeValidation, "start date must not be in the past", http.StatusBadRequest))
	}

	reason := strings.TrimSpace(c.Reason)
	if reason == "" {
		errs.Add(apperror.New(apperror.CodeValidation, "reason is required", http.StatusBadRequest))
	} else if utf8.RuneCountInString(c.Reason) > MaxReasonLength {
		errs.Add(apperror.New(apperror.CodeValidation,
			fmt.Sprintf("reason exceeds %d characters", MaxReasonLength), http.StatusBadRequest))
	}

	if !ValidType(c.LeaveType) {
		errs.Add(apperror.New(apperror.CodeValidation, "unknown leave type", http.StatusBadRequest))
	}

	if datesOK {
		for _, prior := range approved {
			if prior.Status != StatusApproved {
				continue
			}
			if RangesOverlap(c.StartDate, c.EndDate, prior.StartDate, prior.EndDate) {
				errs.Add(apperror.New(apperror.CodeOverlappingRequest,
					"requested period overlaps an approved leave", http.StatusConflict))
				break
			}
		}
	}

	if datesOK {
		if remaining, tracked := Remaining(balance, c.LeaveType); tracked && remaining < days {
			errs.Add(apperror.New(apperror.CodeInsufficientBalance,
				"requested days exceed remaining balance", http.StatusConflict))
		}
	}

	if errs.Empty() {
		return nil
	}
	return errs
}
