package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
	"github.com/kaanchinar/petshop-storefront/internal/formstate"
)

// Form-state keys. One key per wizard step plus bookkeeping entries; the
// confirmation record deliberately lives under its own key so clearing the
// wizard does not erase it.
const (
	keyShipping     = "shipping"
	keyBilling      = "billing"
	keyPayment      = "payment"
	keyBillingSame  = "billing_same_as_shipping"
	keySubmitKey    = "order_submit_key"
	keyConfirmation = "confirmation"
)

var ErrValidation = errors.New("validation failed")

// Wizard sequences the checkout steps: Shipping → Billing (optional) →
// Payment → Review → Confirmation. Each submit validates, persists the
// step's snapshot, and advances; going back never clears entered data.
type Wizard struct {
	forms formstate.Store
}

func NewWizard(forms formstate.Store) *Wizard {
	return &Wizard{forms: forms}
}

// State is everything the wizard has accumulated for one session.
type State struct {
	Step                  domain.Step          `json:"step"`
	Shipping              *domain.ShippingInfo `json:"shipping,omitempty"`
	Billing               *domain.BillingInfo  `json:"billing,omitempty"`
	Payment               *domain.PaymentInfo  `json:"payment,omitempty"`
	BillingSameAsShipping bool                 `json:"billing_same_as_shipping"`
	Confirmation          *domain.Confirmation `json:"confirmation,omitempty"`
}

// State loads the persisted wizard state and derives the current step from
// which snapshots are present.
func (w *Wizard) State(ctx context.Context, sessionID string) (*State, error) {
	st := &State{}

	var shipping domain.ShippingInfo
	if found, err := w.forms.Get(ctx, sessionID, keyShipping, &shipping); err != nil {
		return nil, err
	} else if found {
		st.Shipping = &shipping
	}

	var billing domain.BillingInfo
	if found, err := w.forms.Get(ctx, sessionID, keyBilling, &billing); err != nil {
		return nil, err
	} else if found {
		st.Billing = &billing
	}

	var payment domain.PaymentInfo
	if found, err := w.forms.Get(ctx, sessionID, keyPayment, &payment); err != nil {
		return nil, err
	} else if found {
		st.Payment = &payment
	}

	var same bool
	if found, err := w.forms.Get(ctx, sessionID, keyBillingSame, &same); err != nil {
		return nil, err
	} else if found {
		st.BillingSameAsShipping = same
	}

	var confirmation domain.Confirmation
	if found, err := w.forms.Get(ctx, sessionID, keyConfirmation, &confirmation); err != nil {
		return nil, err
	} else if found {
		st.Confirmation = &confirmation
	}

	st.Step = deriveStep(st)
	return st, nil
}

func deriveStep(st *State) domain.Step {
	switch {
	case st.Confirmation != nil:
		return domain.StepConfirmation
	case st.Payment != nil:
		return domain.StepReview
	case st.Shipping == nil:
		return domain.StepShipping
	case st.BillingSameAsShipping || st.Billing != nil:
		return domain.StepPayment
	default:
		return domain.StepBilling
	}
}

// SubmitShipping persists the shipping snapshot and advances. When the user
// marks billing same as shipping, the billing step is skipped.
func (w *Wizard) SubmitShipping(ctx context.Context, sessionID string, info domain.ShippingInfo, billingSameAsShipping bool) (domain.Step, error) {
	if err := validateShipping(info); err != nil {
		return domain.StepShipping, err
	}

	if err := w.forms.Set(ctx, sessionID, keyShipping, info); err != nil {
		return domain.StepShipping, err
	}
	if err := w.forms.Set(ctx, sessionID, keyBillingSame, billingSameAsShipping); err != nil {
		return domain.StepShipping, err
	}

	if billingSameAsShipping {
		return domain.StepPayment, nil
	}
	return domain.StepBilling, nil
}

func (w *Wizard) SubmitBilling(ctx context.Context, sessionID string, info domain.BillingInfo) (domain.Step, error) {
	if err := validateBilling(info); err != nil {
		return domain.StepBilling, err
	}

	if err := w.forms.Set(ctx, sessionID, keyBilling, info); err != nil {
		return domain.StepBilling, err
	}
	return domain.StepPayment, nil
}

func (w *Wizard) SubmitPayment(ctx context.Context, sessionID string, info domain.PaymentInfo) (domain.Step, error) {
	if err := validatePayment(info); err != nil {
		return domain.StepPayment, err
	}

	if err := w.forms.Set(ctx, sessionID, keyPayment, info); err != nil {
		return domain.StepPayment, err
	}
	return domain.StepReview, nil
}

// GuardReview is the review-page entry guard: shipping and payment must be
// present and the cart non-empty. A failed guard is a recoverable redirect
// back to the shipping step, not an error.
func (w *Wizard) GuardReview(ctx context.Context, sessionID string, cartEmpty bool) (domain.Step, *State, error) {
	st, err := w.State(ctx, sessionID)
	if err != nil {
		return domain.StepShipping, nil, err
	}

	if st.Shipping == nil || st.Payment == nil || cartEmpty {
		return domain.StepShipping, st, nil
	}
	return domain.StepReview, st, nil
}

// Reset drops every persisted snapshot for the session.
func (w *Wizard) Reset(ctx context.Context, sessionID string) error {
	return w.forms.Clear(ctx, sessionID)
}

func validateShipping(info domain.ShippingInfo) error {
	if strings.TrimSpace(info.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if !strings.Contains(info.Email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if strings.TrimSpace(info.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if strings.TrimSpace(info.City) == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if strings.TrimSpace(info.Zip) == "" {
		return fmt.Errorf("%w: zip is required", ErrValidation)
	}
	if strings.TrimSpace(info.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrValidation)
	}
	return nil
}

func validateBilling(info domain.BillingInfo) error {
	if strings.TrimSpace(info.FullName) == "" {
		return fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if strings.TrimSpace(info.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if strings.TrimSpace(info.City) == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if strings.TrimSpace(info.Zip) == "" {
		return fmt.Errorf("%w: zip is required", ErrValidation)
	}
	if strings.TrimSpace(info.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrValidation)
	}
	return nil
}

func validatePayment(info domain.PaymentInfo) error {
	switch info.Method {
	case domain.PaymentMethodPayPal:
		return nil
	case domain.PaymentMethodCreditCard:
		if strings.TrimSpace(info.CardholderName) == "" {
			return fmt.Errorf("%w: cardholder name is required", ErrValidation)
		}
		if len(strings.TrimSpace(info.CardNumber)) < 12 {
			return fmt.Errorf("%w: card number is invalid", ErrValidation)
		}
		if strings.TrimSpace(info.CardExpiry) == "" {
			return fmt.Errorf("%w: card expiry is required", ErrValidation)
		}
		if strings.TrimSpace(info.CardCVC) == "" {
			return fmt.Errorf("%w: card cvc is required", ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported payment method %q", ErrValidation, info.Method)
	}
}
