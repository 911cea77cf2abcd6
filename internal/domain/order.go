package domain

import "time"

// OrderRequest is the write-only aggregate sent to the remote order
// resource. The cart contents are consumed server-side and are not re-sent.
type OrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Notes           string `json:"notes"`
	IdempotencyKey  string `json:"idempotency_key"`
}

// Confirmation is what the confirmation page shows after a successful
// submission.
type Confirmation struct {
	OrderID     string    `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// OrderRecord is the storefront's local copy of a confirmed order, kept for
// the order-history page.
type OrderRecord struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	RemoteOrderID   string         `json:"remote_order_id"`
	Items           []CartLineItem `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	ShippingAddress string         `json:"shipping_address"`
	CreatedAt       time.Time      `json:"created_at"`
}
