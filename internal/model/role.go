package model

// Role is the coarse job function stored on a user profile.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Privileged roles receive broadcast notifications.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleManager
}

// Capability names one permission a profile may hold.
type Capability string

const (
	CapViewReports        Capability = "view_reports"
	CapManageUsers        Capability = "manage_users"
	CapDeleteRecords      Capability = "delete_records"
	CapAdjustStock        Capability = "adjust_stock"
	CapManageTransactions Capability = "manage_transactions"
	CapManageAlerts       Capability = "manage_alerts"
)

// AllCapabilities lists every capability in a stable order.
var AllCapabilities = []Capability{
	CapViewReports,
	CapManageUsers,
	CapDeleteRecords,
	CapAdjustStock,
	CapManageTransactions,
	CapManageAlerts,
}

// Permissions is stored inline on the profile as can_* columns.
type Permissions struct {
	ViewReports        bool `gorm:"not null" json:"view_reports"`
	ManageUsers        bool `gorm:"not null" json:"manage_users"`
	DeleteRecords      bool `gorm:"not null" json:"delete_records"`
	AdjustStock        bool `gorm:"not null" json:"adjust_stock"`
	ManageTransactions bool `gorm:"not null" json:"manage_transactions"`
	ManageAlerts       bool `gorm:"not null" json:"manage_alerts"`
}

// Has reports the raw flag. Role overrides are applied by the authorizer.
func (p Permissions) Has(c Capability) bool {
	switch c {
	case CapViewReports:
		return p.ViewReports
	case CapManageUsers:
		return p.ManageUsers
	case CapDeleteRecords:
		return p.DeleteRecords
	case CapAdjustStock:
		return p.AdjustStock
	case CapManageTransactions:
		return p.ManageTransactions
	case CapManageAlerts:
		return p.ManageAlerts
	}
	return false
}

// DefaultPermissions is what a new profile with the given role starts with.
func DefaultPermissions(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{
			ViewReports:        true,
			ManageUsers:        true,
			DeleteRecords:      true,
			AdjustStock:        true,
			ManageTransactions: true,
			ManageAlerts:       true,
		}
	case RoleManager:
		return Permissions{
			ViewReports:        true,
			AdjustStock:        true,
			ManageTransactions: true,
			ManageAlerts:       true,
		}
	default:
		return Permissions{}
	}
}
