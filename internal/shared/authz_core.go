package shared

// Core platform permissions, namespaced resource:action.
const (
	PermEmployeesRead  = "employees:read"
	PermEmployeesWrite = "employees:write"

	PermLeaveView    = "leave:view"
	PermLeaveApprove = "leave:approve"

	PermPayrollView = "payroll:view"

	PermPermissionsManage = "permissions:manage"
)

// CoreScopes lists all permissions seeded with the core platform.
func CoreScopes() []string {
	return []string{
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveView,
		PermLeaveApprove,
		PermPayrollView,
		PermPermissionsManage,
	}
}
