package leave

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/apperror"
)

var testNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func validCandidate() Candidate {
	return Candidate{
		EmployeeID: "emp-1",
		LeaveType:  TypeAnnual,
		StartDate:  date(2025, 8, 1),
		EndDate:    date(2025, 8, 5),
		Reason:     "summer vacation",
	}
}

func fullBalance() LeaveBalance {
	return LeaveBalance{EmployeeID: "emp-1", Year: 2025, AnnualTotal: 20, SickTotal: 10}
}

func TestValidateOK(t *testing.T) {
	err := Validate(testNow, validCandidate(), nil, fullBalance())
	require.NoError(t, err)
}

func TestValidateReportsAllFailuresTogether(t *testing.T) {
	c := validCandidate()
	c.LeaveType = "sabbatical"
	c.Reason = ""
	c.StartDate = date(2025, 6, 1)
	c.EndDate = date(2025, 5, 20)

	err := Validate(testNow, c, nil, fullBalance())
	require.Error(t, err)

	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs.Failures, 4) // inverted range, past start, empty reason, bad type
	assert.True(t, verrs.Has(apperror.CodeValidation))
}

func TestValidatePastStartDate(t *testing.T) {
	c := validCandidate()
	c.StartDate = date(2025, 6, 14)
	c.EndDate = date(2025, 6, 16)

	err := Validate(testNow, c, nil, fullBalance())
	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(apperror.CodeValidation))
}

func TestValidateStartTodayAllowed(t *testing.T) {
	c := validCandidate()
	c.StartDate = date(2025, 6, 15)
	c.EndDate = date(2025, 6, 16)
	require.NoError(t, Validate(testNow, c, nil, fullBalance()))
}

func TestValidateReasonTooLong(t *testing.T) {
	c := validCandidate()
	c.Reason = strings.Repeat("a", MaxReasonLength+1)

	err := Validate(testNow, c, nil, fullBalance())
	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(apperror.CodeValidation))
}

func TestValidateReasonLengthCountsRunes(t *testing.T) {
	c := validCandidate()
	c.Reason = strings.Repeat("å", MaxReasonLength)
	require.NoError(t, Validate(testNow, c, nil, fullBalance()))

	c.Reason = strings.Repeat("å", MaxReasonLength+1)
	err := Validate(testNow, c, nil, fullBalance())
	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(apperror.CodeValidation))
}

func TestValidateOverlapWithApproved(t *testing.T) {
	approved := []LeaveRequest{{
		EmployeeID: "emp-1",
		Status:     StatusApproved,
		StartDate:  date(2025, 8, 4),
		EndDate:    date(2025, 8, 8),
	}}

	err := Validate(testNow, validCandidate(), approved, fullBalance())
	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(apperror.CodeOverlappingRequest))
}

func TestValidateInsufficientBalance(t *testing.T) {
	b := fullBalance()
	b.AnnualUsed = 18 // 2 remaining, candidate wants 5

	err := Validate(testNow, validCandidate(), nil, b)
	var verrs *apperror.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has(apperror.CodeInsufficientBalance))
}

func TestValidateUnpaidIgnoresBalance(t *testing.T) {
	c := validCandidate()
	c.LeaveType = TypeUnpaid
	b := fullBalance()
	b.AnnualUsed = 20
	b.SickUsed = 10

	require.NoError(t, Validate(testNow, c, nil, b))
}
