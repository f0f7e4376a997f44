package models

// Permission is a closed set of grantable capabilities. Admin accounts hold
// every permission implicitly; professional accounts hold explicit grants.
type Permission string

const (
	PermViewAppointments   Permission = "view_appointments"
	PermManageAppointments Permission = "manage_appointments"
	PermViewClients        Permission = "view_clients"
	PermManageClients      Permission = "manage_clients"
	PermViewServices       Permission = "view_services"
	PermManageServices     Permission = "manage_services"
	PermViewFinancial      Permission = "view_financial"
	PermManageFinancial    Permission = "manage_financial"
)

// AllPermissions lists every grantable permission, in display order.
var AllPermissions = []Permission{
	PermViewAppointments,
	PermManageAppointments,
	PermViewClients,
	PermManageClients,
	PermViewServices,
	PermManageServices,
	PermViewFinancial,
	PermManageFinancial,
}

// ValidPermission reports whether p names a known permission.
func ValidPermission(p Permission) bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}
