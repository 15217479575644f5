package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleAdmin    = "admin"
)

const (
	PermEmployeesRead   = "employees.read"
	PermEmployeesWrite  = "employees.write"
	PermLeaveRead       = "leave.read"
	PermLeaveWrite      = "leave.write"
	PermLeaveApprove    = "leave.approve"
	PermAppraisalsRead  = "appraisals.read"
	PermAppraisalsWrite = "appraisals.write"
	PermReportsRead     = "reports.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermAppraisalsRead,
	},
	RoleManager: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermReportsRead,
	},
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermAppraisalsRead,
		PermAppraisalsWrite,
		PermReportsRead,
	},
}

// HasPermission checks the static role grant table.
func HasPermission(roleName, permission string) bool {
	for _, p := range RolePermissions[roleName] {
		if p == permission {
			return true
		}
	}
	return false
}
