package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
	"github.com/kaanchinar/petshop-storefront/internal/formstate"
)

var (
	ErrMissingCheckoutData = errors.New("missing checkout data, nothing to submit")
	ErrSubmissionInFlight  = errors.New("order submission already in flight")
)

// OrderPlacer is the remote order resource.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, userID string, req domain.OrderRequest) (string, error)
}

// Cart is the slice of the cart mirror the submitter needs.
type Cart interface {
	Items() []domain.CartLineItem
	Subtotal() float64
	IsEmpty() bool
	Clear(ctx context.Context) error
}

// HistoryRecorder keeps the storefront's local order history. Recording is
// best-effort; a failure never fails the checkout.
type HistoryRecorder interface {
	SaveOrder(ctx context.Context, record *domain.OrderRecord) error
}

// Submitter turns the accumulated wizard state into one order-creation
// request. State machine per session:
//
//	Idle → Submitting → Succeeded (one-time cleanup)
//	                  → Failed → Idle (retryable, state intact)
//
// Success is persisted, so a repeated Submit returns the stored
// confirmation without re-submitting or re-clearing.
type Submitter struct {
	orders  OrderPlacer
	history HistoryRecorder
	forms   formstate.Store

	mu       sync.Mutex
	statuses map[string]domain.SubmissionStatus
}

func NewSubmitter(orders OrderPlacer, history HistoryRecorder, forms formstate.Store) *Submitter {
	return &Submitter{
		orders:   orders,
		history:  history,
		forms:    forms,
		statuses: make(map[string]domain.SubmissionStatus),
	}
}

// Status reports the session's submission state.
func (s *Submitter) Status(sessionID string) domain.SubmissionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.statuses[sessionID]; ok {
		return st
	}
	return domain.SubmissionStatusIdle
}

// Submit places the order for the session's user.
func (s *Submitter) Submit(ctx context.Context, sessionID, userID string, cart Cart) (*domain.Confirmation, error) {
	// Already confirmed (e.g. the confirmation page was reloaded): return
	// the stored result, do not submit or clean up again.
	var confirmed domain.Confirmation
	if found, err := s.forms.Get(ctx, sessionID, keyConfirmation, &confirmed); err != nil {
		return nil, err
	} else if found {
		return &confirmed, nil
	}

	if err := s.enterSubmitting(sessionID); err != nil {
		return nil, err
	}

	confirmation, err := s.submit(ctx, sessionID, userID, cart)

	s.mu.Lock()
	if err != nil {
		// Failed is transient; the session goes straight back to Idle so
		// the user can retry with everything still in place.
		s.statuses[sessionID] = domain.SubmissionStatusIdle
	} else {
		s.statuses[sessionID] = domain.SubmissionStatusSucceeded
	}
	s.mu.Unlock()

	return confirmation, err
}

func (s *Submitter) enterSubmitting(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[sessionID] == domain.SubmissionStatusSubmitting {
		return ErrSubmissionInFlight
	}
	s.statuses[sessionID] = domain.SubmissionStatusSubmitting
	return nil
}

func (s *Submitter) submit(ctx context.Context, sessionID, userID string, cart Cart) (*domain.Confirmation, error) {
	var shipping domain.ShippingInfo
	foundShipping, err := s.forms.Get(ctx, sessionID, keyShipping, &shipping)
	if err != nil {
		return nil, err
	}
	var payment domain.PaymentInfo
	foundPayment, err := s.forms.Get(ctx, sessionID, keyPayment, &payment)
	if err != nil {
		return nil, err
	}
	if !foundShipping || !foundPayment || cart.IsEmpty() {
		return nil, ErrMissingCheckoutData
	}

	// The idempotency key survives retries: if a submit succeeded remotely
	// but the response was lost, the retry dedupes server-side.
	var submitKey string
	if found, err := s.forms.Get(ctx, sessionID, keySubmitKey, &submitKey); err != nil {
		return nil, err
	} else if !found {
		submitKey = uuid.NewString()
		if err := s.forms.Set(ctx, sessionID, keySubmitKey, submitKey); err != nil {
			return nil, err
		}
	}

	req := domain.OrderRequest{
		ShippingAddress: renderShippingBlock(shipping),
		Notes:           paymentNotes(payment),
		IdempotencyKey:  submitKey,
	}

	// Snapshot before cleanup; the history record needs the line items.
	items := cart.Items()
	subtotal := cart.Subtotal()

	orderID, err := s.orders.CreateOrder(ctx, userID, req)
	if err != nil {
		log.Printf("order submission for session %s failed: %v", sessionID, err)
		return nil, err
	}

	confirmation := domain.Confirmation{
		OrderID:     orderID,
		ConfirmedAt: time.Now().UTC(),
	}

	// Persist the confirmation before any cleanup so a crash mid-cleanup
	// still resolves to "submitted" on the next invocation.
	if err := s.forms.Set(ctx, sessionID, keyConfirmation, confirmation); err != nil {
		log.Printf("failed to persist confirmation for session %s: %v", sessionID, err)
	}

	if s.history != nil {
		record := &domain.OrderRecord{
			ID:              uuid.NewString(),
			UserID:          userID,
			RemoteOrderID:   orderID,
			Items:           items,
			Subtotal:        subtotal,
			ShippingAddress: req.ShippingAddress,
			CreatedAt:       confirmation.ConfirmedAt,
		}
		if err := s.history.SaveOrder(ctx, record); err != nil {
			log.Printf("failed to record order history for order %s: %v", orderID, err)
		}
	}

	s.cleanup(ctx, sessionID, cart)
	return &confirmation, nil
}

// cleanup clears the cart mirror and the wizard's form state. The
// confirmation key stays so the confirmation page can re-read its order id.
func (s *Submitter) cleanup(ctx context.Context, sessionID string, cart Cart) {
	if err := cart.Clear(ctx); err != nil {
		log.Printf("failed to clear cart after order for session %s: %v", sessionID, err)
	}
	for _, key := range []string{keyShipping, keyBilling, keyPayment, keyBillingSame, keySubmitKey} {
		if err := s.forms.Set(ctx, sessionID, key, nil); err != nil {
			log.Printf("failed to clear form state %s for session %s: %v", key, sessionID, err)
		}
	}
}

func renderShippingBlock(info domain.ShippingInfo) string {
	cityLine := info.City
	if info.State != "" {
		cityLine += ", " + info.State
	}
	cityLine += " " + info.Zip

	lines := []string{
		info.FullName,
		info.Address,
		cityLine,
		info.Country,
		"Email: " + info.Email,
	}
	if info.Phone != "" {
		lines = append(lines, "Phone: "+info.Phone)
	}
	return strings.Join(lines, "\n")
}

func paymentNotes(info domain.PaymentInfo) string {
	if info.Method == domain.PaymentMethodCreditCard {
		return fmt.Sprintf("Payment method: credit-card (card ending %s)", cardSuffix(info.CardNumber))
	}
	return fmt.Sprintf("Payment method: %s", info.Method)
}

func cardSuffix(number string) string {
	digits := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
