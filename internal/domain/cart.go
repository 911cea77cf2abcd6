package domain

// CartLineItem is the display-friendly shape of one product+quantity entry
// in the mirrored cart. RemoteLineID is nil until the line item has been
// reconciled against the remote cart resource.
type CartLineItem struct {
	RemoteLineID *string `json:"remote_line_id,omitempty"`
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// LineTotal is UnitPrice × Quantity for this line.
func (li CartLineItem) LineTotal() float64 {
	return li.UnitPrice * float64(li.Quantity)
}
