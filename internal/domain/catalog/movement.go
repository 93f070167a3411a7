package catalog

import "time"

// MovementReason says why stock on hand changed
type MovementReason string

const (
	MovementReceipt    MovementReason = "receipt"
	MovementProduction MovementReason = "production"
	MovementAdjustment MovementReason = "adjustment"
	MovementImport     MovementReason = "import"
)

// StockMovement is an append-only ledger entry for a stock change
type StockMovement struct {
	ID            uint
	ItemID        uint
	Delta         int
	QuantityAfter int
	Reason        MovementReason
	Reference     string
	CreatedAt     time.Time
}
