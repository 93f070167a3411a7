package production

// LineStock is the stock position of one pick list line
type LineStock struct {
	LineID          uint  `json:"lineId"`
	ItemID          uint  `json:"itemId"`
	AssemblyID      *uint `json:"assemblyId,omitempty"`
	Requested       int   `json:"requested"`
	InStock         int   `json:"inStock"`
	Allocated       int   `json:"allocated"`
	Shortfall       int   `json:"shortfall"`
	PurchaseOrderID *uint `json:"purchaseOrderId,omitempty"`
	MadeOrder       bool  `json:"madeOrder"`
	Ordered         bool  `json:"ordered"`
	Warning         bool  `json:"warning"`
}

// ItemStock aggregates every line of one item
type ItemStock struct {
	ItemID    uint `json:"itemId"`
	Requested int  `json:"requested"`
	InStock   int  `json:"inStock"`
	Shortfall int  `json:"shortfall"`
	// Unordered is the part of the shortfall not yet covered by an order
	Unordered int  `json:"unordered"`
	Warning   bool `json:"warning"`
}

// StockReport is the result of reconciling a pick list against stock on hand
type StockReport struct {
	Lines          []LineStock `json:"lines"`
	Items          []ItemStock `json:"items"`
	TotalShortfall int         `json:"totalShortfall"`
	HasWarnings    bool        `json:"hasWarnings"`
	CanComplete    bool        `json:"canComplete"`
}

// CheckStock compares requested quantities with stock on hand. Stock of an
// item is allocated to its lines in line order; whatever a line cannot get is
// its shortfall. A shortfall raises a warning unless the line is already on a
// purchase order or flagged as ordered. Items missing from stock count as zero.
func CheckStock(lines []PickListLine, stock map[uint]int) StockReport {
	onHand := make(map[uint]int, len(stock))
	remaining := make(map[uint]int, len(stock))
	for id, qty := range stock {
		if qty < 0 {
			qty = 0
		}
		onHand[id] = qty
		remaining[id] = qty
	}

	report := StockReport{Lines: make([]LineStock, 0, len(lines))}
	byItem := make(map[uint]*ItemStock)
	order := make([]uint, 0)

	for _, l := range lines {
		avail := remaining[l.ItemID]
		allocated := l.Quantity
		if allocated > avail {
			allocated = avail
		}
		remaining[l.ItemID] = avail - allocated
		shortfall := l.Quantity - allocated

		ls := LineStock{
			LineID:          l.ID,
			ItemID:          l.ItemID,
			AssemblyID:      l.AssemblyID,
			Requested:       l.Quantity,
			InStock:         onHand[l.ItemID],
			Allocated:       allocated,
			Shortfall:       shortfall,
			PurchaseOrderID: l.PurchaseOrderID,
			MadeOrder:       l.MadeOrder,
			Ordered:         l.Ordered(),
		}
		ls.Warning = shortfall > 0 && !ls.Ordered
		report.Lines = append(report.Lines, ls)

		agg, ok := byItem[l.ItemID]
		if !ok {
			agg = &ItemStock{ItemID: l.ItemID, InStock: onHand[l.ItemID]}
			byItem[l.ItemID] = agg
			order = append(order, l.ItemID)
		}
		agg.Requested += l.Quantity
		agg.Shortfall += shortfall
		if ls.Warning {
			agg.Unordered += shortfall
			agg.Warning = true
		}

		report.TotalShortfall += shortfall
		report.HasWarnings = report.HasWarnings || ls.Warning
	}

	report.Items = make([]ItemStock, 0, len(order))
	for _, id := range order {
		report.Items = append(report.Items, *byItem[id])
	}
	report.CanComplete = len(lines) > 0 && report.TotalShortfall == 0
	return report
}

// Warnings returns only the lines that carry a shortfall warning
func (r StockReport) Warnings() []LineStock {
	out := make([]LineStock, 0)
	for _, l := range r.Lines {
		if l.Warning {
			out = append(out, l)
		}
	}
	return out
}
