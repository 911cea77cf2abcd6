package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
	"github.com/kaanchinar/petshop-storefront/internal/formstate"
)

// fakeOrders implements OrderPlacer for testing
type fakeOrders struct {
	orderID  string
	err      error
	calls    int
	lastReq  domain.OrderRequest
	lastUser string
}

func (f *fakeOrders) CreateOrder(_ context.Context, userID string, req domain.OrderRequest) (string, error) {
	f.calls++
	f.lastUser = userID
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.orderID, nil
}

// fakeCart implements Cart for testing
type fakeCart struct {
	items      []domain.CartLineItem
	clearCalls int
	clearErr   error
}

func (f *fakeCart) Items() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(f.items))
	copy(out, f.items)
	return out
}

func (f *fakeCart) Subtotal() float64 {
	total := 0.0
	for _, li := range f.items {
		total += li.LineTotal()
	}
	return total
}

func (f *fakeCart) IsEmpty() bool {
	return len(f.items) == 0
}

func (f *fakeCart) Clear(_ context.Context) error {
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.items = nil
	return nil
}

// fakeHistory implements HistoryRecorder for testing
type fakeHistory struct {
	records []*domain.OrderRecord
	err     error
}

func (f *fakeHistory) SaveOrder(_ context.Context, record *domain.OrderRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, record)
	return nil
}

func seededForms(t *testing.T) *formstate.MemoryStore {
	t.Helper()
	forms := formstate.NewMemoryStore()
	ctx := context.Background()
	w := NewWizard(forms)

	_, err := w.SubmitShipping(ctx, "sess-1", validShipping(), true)
	require.NoError(t, err)
	_, err = w.SubmitPayment(ctx, "sess-1", validPayment())
	require.NoError(t, err)
	return forms
}

func seededCart() *fakeCart {
	lineID := "line-1"
	return &fakeCart{items: []domain.CartLineItem{
		{RemoteLineID: &lineID, ProductID: 1, Name: "Dog Chew", UnitPrice: 10.00, Quantity: 2},
	}}
}

func TestSubmit_Success(t *testing.T) {
	forms := seededForms(t)
	orders := &fakeOrders{orderID: "order-777"}
	history := &fakeHistory{}
	cart := seededCart()
	s := NewSubmitter(orders, history, forms)
	ctx := context.Background()

	confirmation, err := s.Submit(ctx, "sess-1", "user-1", cart)
	require.NoError(t, err)
	require.NotNil(t, confirmation)
	assert.Equal(t, "order-777", confirmation.OrderID)
	assert.Equal(t, domain.SubmissionStatusSucceeded, s.Status("sess-1"))

	// Shipping block and payment notes travel in the request.
	assert.Contains(t, orders.lastReq.ShippingAddress, "Ada Lovelace")
	assert.Contains(t, orders.lastReq.ShippingAddress, "12 Analytical St")
	assert.Contains(t, orders.lastReq.Notes, "card ending 4242")
	assert.NotEmpty(t, orders.lastReq.IdempotencyKey)

	// Cleanup: cart emptied, wizard state gone.
	assert.Equal(t, 1, cart.clearCalls)
	var shipping domain.ShippingInfo
	found, err := forms.Get(ctx, "sess-1", "shipping", &shipping)
	require.NoError(t, err)
	assert.False(t, found)

	// History recorded with the pre-cleanup snapshot.
	require.Len(t, history.records, 1)
	assert.Equal(t, "order-777", history.records[0].RemoteOrderID)
	assert.Equal(t, 20.00, history.records[0].Subtotal)
	assert.Len(t, history.records[0].Items, 1)
}

func TestSubmit_SecondInvocationIsIdempotent(t *testing.T) {
	forms := seededForms(t)
	orders := &fakeOrders{orderID: "order-777"}
	cart := seededCart()
	s := NewSubmitter(orders, &fakeHistory{}, forms)
	ctx := context.Background()

	first, err := s.Submit(ctx, "sess-1", "user-1", cart)
	require.NoError(t, err)

	// Remount / reload: must not re-submit or re-clear.
	second, err := s.Submit(ctx, "sess-1", "user-1", cart)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, 1, cart.clearCalls)
}

func TestSubmit_FailureLeavesStateIntactAndRetryable(t *testing.T) {
	forms := seededForms(t)
	orders := &fakeOrders{err: errors.New("order api down")}
	cart := seededCart()
	s := NewSubmitter(orders, &fakeHistory{}, forms)
	ctx := context.Background()

	_, err := s.Submit(ctx, "sess-1", "user-1", cart)
	require.Error(t, err)
	assert.Equal(t, domain.SubmissionStatusIdle, s.Status("sess-1"))

	// Everything survives for the retry.
	assert.Equal(t, 0, cart.clearCalls)
	assert.False(t, cart.IsEmpty())
	var shipping domain.ShippingInfo
	found, getErr := forms.Get(ctx, "sess-1", "shipping", &shipping)
	require.NoError(t, getErr)
	assert.True(t, found)

	// Retry succeeds and reuses the same idempotency key.
	firstKey := orders.lastReq.IdempotencyKey
	orders.err = nil
	orders.orderID = "order-778"
	confirmation, err := s.Submit(ctx, "sess-1", "user-1", cart)
	require.NoError(t, err)
	assert.Equal(t, "order-778", confirmation.OrderID)
	assert.Equal(t, firstKey, orders.lastReq.IdempotencyKey)
}

func TestSubmit_MissingPrerequisites(t *testing.T) {
	forms := formstate.NewMemoryStore()
	s := NewSubmitter(&fakeOrders{orderID: "x"}, &fakeHistory{}, forms)

	_, err := s.Submit(context.Background(), "sess-1", "user-1", seededCart())
	assert.ErrorIs(t, err, ErrMissingCheckoutData)
}

func TestSubmit_EmptyCartIsMissingData(t *testing.T) {
	forms := seededForms(t)
	s := NewSubmitter(&fakeOrders{orderID: "x"}, &fakeHistory{}, forms)

	_, err := s.Submit(context.Background(), "sess-1", "user-1", &fakeCart{})
	assert.ErrorIs(t, err, ErrMissingCheckoutData)
}

func TestSubmit_HistoryFailureDoesNotFailCheckout(t *testing.T) {
	forms := seededForms(t)
	history := &fakeHistory{err: errors.New("db down")}
	s := NewSubmitter(&fakeOrders{orderID: "order-779"}, history, forms)

	confirmation, err := s.Submit(context.Background(), "sess-1", "user-1", seededCart())
	require.NoError(t, err)
	assert.Equal(t, "order-779", confirmation.OrderID)
}

func TestPaymentNotes_PayPalHasNoCardSuffix(t *testing.T) {
	notes := paymentNotes(domain.PaymentInfo{Method: domain.PaymentMethodPayPal})
	assert.Equal(t, "Payment method: paypal", notes)
}
