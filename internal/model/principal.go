package model

// Role identifiers gating which lifecycle transition a principal may perform.
const (
	RoleUnitAssistant    = "unit-assistant"
	RoleBrigadeAssistant = "brigade-assistant"
	RoleStationManager   = "station-manager"
	RoleCommander        = "commander"
	RoleAdmin            = "admin"
)

// Principal is the authenticated caller, resolved once per request by the
// auth middleware. Handlers consult its capability methods instead of
// comparing role strings inline.
type Principal struct {
	UserID uint
	Name   string
	Role   string
	UnitID uint
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanCreateSupplies reports whether the caller may create supply requests.
func (p Principal) CanCreateSupplies() bool {
	return p.Role == RoleUnitAssistant
}

// CanEditSupply reports whether the caller may edit or delete a pending
// supply. Only the owning unit's assistant may.
func (p Principal) CanEditSupply(unitID uint) bool {
	return p.Role == RoleUnitAssistant && p.UnitID == unitID
}

// CanApproveSupplies reports whether the caller may approve or reject
// pending supplies.
func (p Principal) CanApproveSupplies() bool {
	return p.Role == RoleBrigadeAssistant || p.Role == RoleAdmin
}

// CanReceiveSupplies reports whether the caller may record supply receipt
// at the processing station.
func (p Principal) CanReceiveSupplies() bool {
	return p.Role == RoleStationManager || p.Role == RoleAdmin
}

// CanManageOutputs reports whether the caller may create, update or delete
// supply outputs.
func (p Principal) CanManageOutputs() bool {
	return p.Role == RoleStationManager || p.Role == RoleAdmin
}

// CanManageUnits reports whether the caller may maintain unit reference data.
func (p Principal) CanManageUnits() bool {
	return p.Role == RoleAdmin
}

// CanManageUsers reports whether the caller may register user accounts.
func (p Principal) CanManageUsers() bool {
	return p.Role == RoleAdmin
}
