package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kaanchinar/petshop-storefront/internal/cart"
	"github.com/kaanchinar/petshop-storefront/internal/checkout"
	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

type CheckoutHandler struct {
	wizard    *checkout.Wizard
	submitter *checkout.Submitter
	mirrors   *cart.Registry
	timeout   time.Duration
}

func NewCheckoutHandler(wizard *checkout.Wizard, submitter *checkout.Submitter, mirrors *cart.Registry, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		wizard:    wizard,
		submitter: submitter,
		mirrors:   mirrors,
		timeout:   timeout,
	}
}

type ShippingRequestDTO struct {
	domain.ShippingInfo
	BillingSameAsShipping bool `json:"billing_same_as_shipping"`
}

type StepResponseDTO struct {
	Step domain.Step `json:"step"`
}

type ReviewResponseDTO struct {
	Step     domain.Step          `json:"step"`
	Shipping *domain.ShippingInfo `json:"shipping,omitempty"`
	Billing  *domain.BillingInfo  `json:"billing,omitempty"`
	Payment  *domain.PaymentInfo  `json:"payment,omitempty"`
	Cart     *CartViewDTO         `json:"cart,omitempty"`
}

type ConfirmResponseDTO struct {
	OrderID string      `json:"order_id"`
	Step    domain.Step `json:"step"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	state, err := h.wizard.State(ctx, sessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// POST /api/v1/checkout/shipping
func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	next, err := h.wizard.SubmitShipping(ctx, sessionID, req.ShippingInfo, req.BillingSameAsShipping)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StepResponseDTO{Step: next})
}

// POST /api/v1/checkout/billing
func (h *CheckoutHandler) SubmitBilling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req domain.BillingInfo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	next, err := h.wizard.SubmitBilling(ctx, sessionID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StepResponseDTO{Step: next})
}

// POST /api/v1/checkout/payment
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req domain.PaymentInfo
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	next, err := h.wizard.SubmitPayment(ctx, sessionID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, StepResponseDTO{Step: next})
}

// GET /api/v1/checkout/review
//
// A failed entry guard is not an error: the response carries the step the
// client should navigate to (back to shipping).
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	sessionID := getSessionIDFromContext(r.Context())
	if userID == "" || sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	mirror := h.mirrors.Mirror(userID)
	if err := mirror.Refresh(ctx); err != nil {
		handleServiceError(w, err)
		return
	}

	step, state, err := h.wizard.GuardReview(ctx, sessionID, mirror.IsEmpty())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if step != domain.StepReview {
		respondJSON(w, http.StatusOK, ReviewResponseDTO{Step: step})
		return
	}

	view := cartView(mirror)
	respondJSON(w, http.StatusOK, ReviewResponseDTO{
		Step:     step,
		Shipping: state.Shipping,
		Billing:  state.Billing,
		Payment:  maskPayment(state.Payment),
		Cart:     &view,
	})
}

// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	sessionID := getSessionIDFromContext(r.Context())
	if userID == "" || sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	mirror := h.mirrors.Mirror(userID)
	if err := mirror.Refresh(ctx); err != nil {
		handleServiceError(w, err)
		return
	}

	confirmation, err := h.submitter.Submit(ctx, sessionID, userID, mirror)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, ConfirmResponseDTO{
		OrderID: confirmation.OrderID,
		Step:    domain.StepConfirmation,
	})
}

// maskPayment strips card details down to the suffix for display.
func maskPayment(p *domain.PaymentInfo) *domain.PaymentInfo {
	if p == nil {
		return nil
	}
	masked := domain.PaymentInfo{Method: p.Method, CardholderName: p.CardholderName}
	if p.Method == domain.PaymentMethodCreditCard && len(p.CardNumber) >= 4 {
		masked.CardNumber = "**** " + p.CardNumber[len(p.CardNumber)-4:]
	}
	return &masked
}
