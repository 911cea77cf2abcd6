package cart

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

// RemoteCart defines the remote cart resource operations the mirror needs
// Consumers define this interface, not the HTTP client implementation
type RemoteCart interface {
	Get(ctx context.Context, userID string) ([]domain.CartLineItem, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int) error
	UpdateItem(ctx context.Context, userID, lineItemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, lineItemID string) error
	Clear(ctx context.Context, userID string) error
}

// Mirror is the local copy of one user's server-side cart. Every mutation is
// written to the remote resource and followed by an authoritative re-fetch;
// the mirror never trusts its own optimistic projection. A failed remote
// call leaves the local items exactly as they were.
type Mirror struct {
	remote RemoteCart
	userID string

	mu    sync.RWMutex
	items []domain.CartLineItem

	adding atomic.Bool
	sfg    singleflight.Group
}

func NewMirror(remote RemoteCart, userID string) *Mirror {
	return &Mirror{
		remote: remote,
		userID: userID,
	}
}

// AddItem adds one unit of the product: an update-quantity call when the
// product already has a mirrored line item, a create call otherwise.
//
// Only one add may be in flight at a time; re-entrant calls are dropped.
// That gate can swallow a legitimate rapid second click — the source
// behaves the same way, and it is kept rather than fixed.
func (m *Mirror) AddItem(ctx context.Context, product domain.Product) error {
	if !m.adding.CompareAndSwap(false, true) {
		log.Printf("add item for user %s ignored, another add is in flight", m.userID)
		return nil
	}
	defer m.adding.Store(false)

	existing := m.lineFor(product.ID)
	var err error
	if existing != nil && existing.RemoteLineID != nil {
		err = m.remote.UpdateItem(ctx, m.userID, *existing.RemoteLineID, existing.Quantity+1)
	} else {
		err = m.remote.AddItem(ctx, m.userID, product.ID, 1)
	}
	if err != nil {
		log.Printf("remote add item error: %v", err)
		return err
	}

	return m.Refresh(ctx)
}

// UpdateQuantity sets the quantity of the product's line item. A quantity
// of zero or less routes to removal instead of a zero-quantity record.
func (m *Mirror) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}

	line := m.lineFor(productID)
	if line == nil || line.RemoteLineID == nil {
		return nil
	}

	if err := m.remote.UpdateItem(ctx, m.userID, *line.RemoteLineID, quantity); err != nil {
		log.Printf("remote update quantity error: %v", err)
		return err
	}

	return m.Refresh(ctx)
}

// RemoveItem deletes the product's line item; no-op when the product is not
// in the mirror.
func (m *Mirror) RemoveItem(ctx context.Context, productID int64) error {
	line := m.lineFor(productID)
	if line == nil || line.RemoteLineID == nil {
		return nil
	}

	if err := m.remote.RemoveItem(ctx, m.userID, *line.RemoteLineID); err != nil {
		log.Printf("remote remove item error: %v", err)
		return err
	}

	return m.Refresh(ctx)
}

// Clear empties the remote cart, then the local state.
func (m *Mirror) Clear(ctx context.Context) error {
	if err := m.remote.Clear(ctx, m.userID); err != nil {
		log.Printf("remote clear cart error: %v", err)
		return err
	}

	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
	return nil
}

// Refresh replaces the local items with the authoritative remote state.
// Concurrent refreshes for the same user collapse into one remote call.
func (m *Mirror) Refresh(ctx context.Context) error {
	v, err, _ := m.sfg.Do(m.userID, func() (interface{}, error) {
		return m.remote.Get(ctx, m.userID)
	})
	if err != nil {
		log.Printf("remote cart fetch error: %v", err)
		return err
	}

	m.mu.Lock()
	m.items = v.([]domain.CartLineItem)
	m.mu.Unlock()
	return nil
}

// Items returns a copy of the current line items.
func (m *Mirror) Items() []domain.CartLineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.CartLineItem, len(m.items))
	copy(out, m.items)
	return out
}

// ItemCount is the sum of line-item quantities, recomputed on every read.
func (m *Mirror) ItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, li := range m.items {
		count += li.Quantity
	}
	return count
}

// Subtotal is the sum of unit price × quantity, recomputed on every read.
func (m *Mirror) Subtotal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0.0
	for _, li := range m.items {
		total += li.LineTotal()
	}
	return total
}

func (m *Mirror) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items) == 0
}

func (m *Mirror) lineFor(productID int64) *domain.CartLineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.items {
		if m.items[i].ProductID == productID {
			li := m.items[i]
			return &li
		}
	}
	return nil
}
