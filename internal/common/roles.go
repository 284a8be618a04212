// File: internal/common/roles.go
package common

// Role is the closed set of marketplace roles. Role checks are expressed as
// capabilities below and verified once at the route boundary; services
// receive the actor explicitly and never consult ambient request state.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
	RoleTenant Role = "TENANT"
	RoleAgent  Role = "AGENT"
)

// ParseRole maps a stored role string onto the closed enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSeller, RoleTenant, RoleAgent:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Capability names one guarded operation of the marketplace.
type Capability string

const (
	CapManageUsers     Capability = "manage_users"
	CapViewDashboard   Capability = "view_dashboard"
	CapCreateProperty  Capability = "create_property"
	CapManageProperty  Capability = "manage_property"
	CapFeatureProperty Capability = "feature_property"
	CapSubmitVisit     Capability = "submit_visit"
	CapDecideVisit     Capability = "decide_visit"
	CapCreateBooking   Capability = "create_booking"
	CapConfirmBooking  Capability = "confirm_booking"
	CapCancelBooking   Capability = "cancel_booking"
	CapDeleteBooking   Capability = "delete_booking"
	CapCompleteSale    Capability = "complete_sale"
	CapInitiatePayment Capability = "initiate_payment"
	CapReviewPayment   Capability = "review_payment"
	CapSendPayout      Capability = "send_payout"
)

// capabilityRoles is the per-operation access table. Ownership checks (a
// seller may only manage their own property, a tenant their own booking)
// remain in the services; this table gates the role dimension only.
var capabilityRoles = map[Capability][]Role{
	CapManageUsers:     {RoleAdmin},
	CapViewDashboard:   {RoleAdmin, RoleSeller, RoleTenant},
	CapCreateProperty:  {RoleAdmin, RoleSeller},
	CapManageProperty:  {RoleAdmin, RoleSeller},
	CapFeatureProperty: {RoleAdmin, RoleSeller},
	CapSubmitVisit:     {RoleTenant},
	CapDecideVisit:     {RoleAdmin, RoleSeller},
	CapCreateBooking:   {RoleTenant},
	CapConfirmBooking:  {RoleAdmin, RoleSeller},
	CapCancelBooking:   {RoleAdmin, RoleTenant},
	CapDeleteBooking:   {RoleAdmin},
	CapCompleteSale:    {RoleAdmin},
	CapInitiatePayment: {RoleTenant},
	CapReviewPayment:   {RoleAdmin},
	CapSendPayout:      {RoleAdmin},
}

// Can reports whether the role is allowed to perform the capability.
func (r Role) Can(cap Capability) bool {
	for _, allowed := range capabilityRoles[cap] {
		if allowed == r {
			return true
		}
	}
	return false
}
