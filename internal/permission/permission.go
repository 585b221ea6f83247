// Package permission is the role → action gate consulted before every
// mutation. It is a pure lookup against a fixed table: no side effects, no
// I/O, deterministic. Unknown roles and unknown actions are denied.
//
// This gate runs in the client-facing layer and is advisory: any trusted
// backend sitting behind it must re-validate on its own.
package permission

// Role is a user role as stored on the user record and embedded in the JWT.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleCashier   Role = "cashier"
	RoleWarehouse Role = "warehouse"
)

// Action is a guarded operation.
type Action string

const (
	ActionCreatePO       Action = "CREATE_PO"
	ActionApprovePO      Action = "APPROVE_PO"
	ActionReceivePO      Action = "RECEIVE_PO"
	ActionAdjustStock    Action = "ADJUST_STOCK"
	ActionTransferStock  Action = "TRANSFER_STOCK"
	ActionCheckout       Action = "CHECKOUT"
	ActionRefund         Action = "REFUND"
	ActionExportRevenue  Action = "EXPORT_REVENUE"
	ActionRunInventory   Action = "RUN_INVENTORY"
	ActionManageProducts Action = "MANAGE_PRODUCTS"
	ActionManageUsers    Action = "MANAGE_USERS"
)

// table is constructed once at init and never mutated afterwards.
var table = map[Role]map[Action]bool{
	RoleAdmin: {
		ActionCreatePO:       true,
		ActionApprovePO:      true,
		ActionReceivePO:      true,
		ActionAdjustStock:    true,
		ActionTransferStock:  true,
		ActionCheckout:       true,
		ActionRefund:         true,
		ActionExportRevenue:  true,
		ActionRunInventory:   true,
		ActionManageProducts: true,
		ActionManageUsers:    true,
	},
	RoleManager: {
		ActionCreatePO:       true,
		ActionApprovePO:      true,
		ActionReceivePO:      true,
		ActionAdjustStock:    true,
		ActionTransferStock:  true,
		ActionCheckout:       true,
		ActionRefund:         true,
		ActionExportRevenue:  true,
		ActionRunInventory:   true,
		ActionManageProducts: true,
	},
	RoleCashier: {
		ActionCheckout: true,
	},
	RoleWarehouse: {
		ActionCreatePO:      true,
		ActionReceivePO:     true,
		ActionAdjustStock:   true,
		ActionTransferStock: true,
		ActionRunInventory:  true,
	},
}

// Allowed reports whether role may perform action.
func Allowed(role Role, action Action) bool {
	return table[role][action]
}

// Roles lists the known roles, for user-management validation.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleCashier, RoleWarehouse}
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	_, ok := table[r]
	return ok
}
