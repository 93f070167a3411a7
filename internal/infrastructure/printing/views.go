package printing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is the customer or supplier printed on a document
type Party struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
}

// PickListView is the data printed on a pick list
type PickListView struct {
	Number         string
	Status         string
	Title          string
	OrderReference string
	Customer       Party
	DueDate        *time.Time
	CreatedAt      time.Time
	Notes          string
	Lines          []PickListLineView
	HasWarnings    bool
}

// PickListLineView is one line of a printed pick list
type PickListLineView struct {
	ItemCode      string
	ItemName      string
	Unit          string
	Location      string
	Assembly      string
	Quantity      int
	InStock       int
	Shortfall     int
	PurchaseOrder string
	MadeOrder     bool
	Warning       bool
}

// PurchaseOrderView is the data printed on a purchase order
type PurchaseOrderView struct {
	Number       string
	Status       string
	Supplier     Party
	PickList     string
	OrderDate    *time.Time
	ExpectedDate *time.Time
	CreatedAt    time.Time
	Notes        string
	Lines        []PurchaseOrderLineView
	Total        decimal.Decimal
}

// PurchaseOrderLineView is one line of a printed purchase order
type PurchaseOrderLineView struct {
	ItemCode  string
	ItemName  string
	Unit      string
	Quantity  int
	Received  int
	UnitCost  decimal.Decimal
	LineTotal decimal.Decimal
}

// Document is something that can be printed
type Document struct {
	// Kind names the template and the storage folder
	Kind   string
	Number string
	Data   any
}

// Document kinds
const (
	KindPickList      = "pick-list"
	KindPurchaseOrder = "purchase-order"
)

// PickListDocument wraps a pick list view for printing
func PickListDocument(v PickListView) Document {
	return Document{Kind: KindPickList, Number: v.Number, Data: v}
}

// PurchaseOrderDocument wraps a purchase order view for printing
func PurchaseOrderDocument(v PurchaseOrderView) Document {
	return Document{Kind: KindPurchaseOrder, Number: v.Number, Data: v}
}
