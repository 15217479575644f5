package leave

// Remaining returns the days still available for a leave type, and whether
// the type is balance-tracked at all. Unpaid and Other leave carry no balance,
// so tracked is false and the count is meaningless for them.
func Remaining(balance LeaveBalance, leaveType string) (remaining int, tracked bool) {
	switch leaveType {
	case TypeAnnual:
		return balance.AnnualTotal - balance.AnnualUsed, true
	case TypeSick:
		return balance.SickTotal - balance.SickUsed, true
	}
	return 0, false
}

// TrackedType reports whether a leave type debits a stored balance.
func TrackedType(leaveType string) bool {
	return leaveType == TypeAnnual || leaveType == TypeSick
}

// Summary derives the read projection for the balance endpoint.
func Summary(balance LeaveBalance) BalanceSummary {
	return BalanceSummary{
		EmployeeID:      balance.EmployeeID,
		Year:            balance.Year,
		AnnualTotal:     balance.AnnualTotal,
		AnnualUsed:      balance.AnnualUsed,
		AnnualRemaining: balance.AnnualTotal - balance.AnnualUsed,
		SickTotal:       balance.SickTotal,
		SickUsed:        balance.SickUsed,
		SickRemaining:   balance.SickTotal - balance.SickUsed,
		UpdatedAt:       balance.UpdatedAt,
	}
}
