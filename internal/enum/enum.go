package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusFinalized = "FINALIZED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	OrderTypeCounter  = "COUNTER"
	OrderTypePickup   = "PICKUP"
	OrderTypeDelivery = "DELIVERY"
	OrderTypeTab      = "TAB"
)

// ── Group B: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)
