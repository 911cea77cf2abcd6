package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanchinar/petshop-storefront/internal/cart"
	"github.com/kaanchinar/petshop-storefront/internal/checkout"
	"github.com/kaanchinar/petshop-storefront/internal/domain"
	"github.com/kaanchinar/petshop-storefront/internal/formstate"
)

type orderPlacerMock struct {
	orderID string
	err     error
	calls   int
}

func (m *orderPlacerMock) CreateOrder(_ context.Context, _ string, _ domain.OrderRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.orderID, nil
}

type checkoutFixture struct {
	handler *CheckoutHandler
	remote  *remoteCartMock
	orders  *orderPlacerMock
	forms   *formstate.MemoryStore
}

func newCheckoutFixture() *checkoutFixture {
	remote := &remoteCartMock{}
	forms := formstate.NewMemoryStore()
	ordersMock := &orderPlacerMock{orderID: "order-777"}
	registry := cart.NewRegistry(remote)
	wizard := checkout.NewWizard(forms)
	submitter := checkout.NewSubmitter(ordersMock, nil, forms)

	return &checkoutFixture{
		handler: NewCheckoutHandler(wizard, submitter, registry, 5*time.Second),
		remote:  remote,
		orders:  ordersMock,
		forms:   forms,
	}
}

func shippingBody(t *testing.T, sameBilling bool) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"full_name":                "Ada Lovelace",
		"email":                    "ada@example.com",
		"address":                  "12 Analytical St",
		"city":                     "London",
		"zip":                      "N1 9GU",
		"country":                  "GB",
		"billing_same_as_shipping": sameBilling,
	})
	require.NoError(t, err)
	return body
}

func paymentBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(domain.PaymentInfo{
		Method:         domain.PaymentMethodCreditCard,
		CardholderName: "Ada Lovelace",
		CardNumber:     "4242424242424242",
		CardExpiry:     "12/27",
		CardCVC:        "123",
	})
	require.NoError(t, err)
	return body
}

func (f *checkoutFixture) submitValidCheckout(t *testing.T) {
	t.Helper()
	recorder := httptest.NewRecorder()
	f.handler.SubmitShipping(recorder, authedRequest("POST", "/shipping", shippingBody(t, true)))
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	f.handler.SubmitPayment(recorder, authedRequest("POST", "/payment", paymentBody(t)))
	require.Equal(t, http.StatusOK, recorder.Code)
}

func (f *checkoutFixture) seedCart() {
	lineID := "line-1"
	f.remote.items = []domain.CartLineItem{
		{RemoteLineID: &lineID, ProductID: 1, Name: "Dog Chew", UnitPrice: 10.00, Quantity: 2},
	}
}

func TestSubmitShipping_SameBillingSkipsToPayment(t *testing.T) {
	f := newCheckoutFixture()

	recorder := httptest.NewRecorder()
	f.handler.SubmitShipping(recorder, authedRequest("POST", "/shipping", shippingBody(t, true)))

	require.Equal(t, http.StatusOK, recorder.Code)
	var response StepResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, domain.StepPayment, response.Step)
}

func TestSubmitShipping_ValidationFailure(t *testing.T) {
	f := newCheckoutFixture()

	body, _ := json.Marshal(map[string]any{"full_name": "", "email": "bad"})
	recorder := httptest.NewRecorder()
	f.handler.SubmitShipping(recorder, authedRequest("POST", "/shipping", body))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	assert.Equal(t, "validation_failed", response.Code)
}

func TestReview_WithPrerequisites(t *testing.T) {
	f := newCheckoutFixture()
	f.seedCart()
	f.submitValidCheckout(t)

	recorder := httptest.NewRecorder()
	f.handler.Review(recorder, authedRequest("GET", "/review", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var response ReviewResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, domain.StepReview, response.Step)
	require.NotNil(t, response.Cart)
	assert.Equal(t, 2, response.Cart.ItemCount)
	// Card number is masked for display.
	require.NotNil(t, response.Payment)
	assert.Equal(t, "**** 4242", response.Payment.CardNumber)
}

func TestReview_EmptyCartRedirectsToShipping(t *testing.T) {
	f := newCheckoutFixture()
	f.submitValidCheckout(t)
	// Cart stays empty.

	recorder := httptest.NewRecorder()
	f.handler.Review(recorder, authedRequest("GET", "/review", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var response ReviewResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, domain.StepShipping, response.Step)
	assert.Nil(t, response.Cart)
}

func TestConfirm_Success(t *testing.T) {
	f := newCheckoutFixture()
	f.seedCart()
	f.submitValidCheckout(t)

	recorder := httptest.NewRecorder()
	f.handler.Confirm(recorder, authedRequest("POST", "/confirm", nil))

	require.Equal(t, http.StatusCreated, recorder.Code)
	var response ConfirmResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "order-777", response.OrderID)
	assert.Equal(t, domain.StepConfirmation, response.Step)

	// Cart was cleared on the remote.
	assert.Empty(t, f.remote.items)
}

func TestConfirm_RepeatReturnsSameOrderWithoutResubmitting(t *testing.T) {
	f := newCheckoutFixture()
	f.seedCart()
	f.submitValidCheckout(t)

	first := httptest.NewRecorder()
	f.handler.Confirm(first, authedRequest("POST", "/confirm", nil))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	f.handler.Confirm(second, authedRequest("POST", "/confirm", nil))
	require.Equal(t, http.StatusCreated, second.Code)

	var firstResp, secondResp ConfirmResponseDTO
	require.NoError(t, json.NewDecoder(first.Body).Decode(&firstResp))
	require.NoError(t, json.NewDecoder(second.Body).Decode(&secondResp))
	assert.Equal(t, firstResp.OrderID, secondResp.OrderID)
	assert.Equal(t, 1, f.orders.calls)
}

func TestConfirm_FailureKeepsStateForRetry(t *testing.T) {
	f := newCheckoutFixture()
	f.seedCart()
	f.submitValidCheckout(t)
	f.orders.err = errors.New("order api down")

	recorder := httptest.NewRecorder()
	f.handler.Confirm(recorder, authedRequest("POST", "/confirm", nil))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	// Cart and form state survive the failure.
	assert.NotEmpty(t, f.remote.items)
	var shipping domain.ShippingInfo
	found, err := f.forms.Get(context.Background(), "sess-user-1", "shipping", &shipping)
	require.NoError(t, err)
	assert.True(t, found)

	// Retry succeeds.
	f.orders.err = nil
	recorder = httptest.NewRecorder()
	f.handler.Confirm(recorder, authedRequest("POST", "/confirm", nil))
	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestConfirm_WithoutCheckoutData(t *testing.T) {
	f := newCheckoutFixture()
	f.seedCart()

	recorder := httptest.NewRecorder()
	f.handler.Confirm(recorder, authedRequest("POST", "/confirm", nil))

	require.Equal(t, http.StatusConflict, recorder.Code)
	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	assert.Equal(t, "missing_checkout_data", response.Code)
}

func TestGetState_DerivesCurrentStep(t *testing.T) {
	f := newCheckoutFixture()

	recorder := httptest.NewRecorder()
	f.handler.GetState(recorder, authedRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	var state checkout.State
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&state))
	assert.Equal(t, domain.StepShipping, state.Step)

	f.handler.SubmitShipping(httptest.NewRecorder(), authedRequest("POST", "/shipping", shippingBody(t, false)))

	recorder = httptest.NewRecorder()
	f.handler.GetState(recorder, authedRequest("GET", "/", nil))
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&state))
	assert.Equal(t, domain.StepBilling, state.Step)
}
