package domain

// Step identifies one page of the linear checkout wizard.
type Step string

const (
	StepShipping     Step = "SHIPPING"
	StepBilling      Step = "BILLING"
	StepPayment      Step = "PAYMENT"
	StepReview       Step = "REVIEW"
	StepConfirmation Step = "CONFIRMATION"
)

func (s Step) String() string {
	return string(s)
}

// PaymentMethod discriminates PaymentInfo. Card fields are meaningful only
// for PaymentMethodCreditCard.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit-card"
	PaymentMethodPayPal     PaymentMethod = "paypal"
)

// ShippingInfo is the snapshot written by the shipping step on submit.
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// BillingInfo is the snapshot written by the optional billing step.
type BillingInfo struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// PaymentInfo is the snapshot written by the payment step.
type PaymentInfo struct {
	Method         PaymentMethod `json:"method"`
	CardholderName string        `json:"cardholder_name,omitempty"`
	CardNumber     string        `json:"card_number,omitempty"`
	CardExpiry     string        `json:"card_expiry,omitempty"`
	CardCVC        string        `json:"card_cvc,omitempty"`
}

// SubmissionStatus tracks the order-submission state machine.
type SubmissionStatus string

const (
	SubmissionStatusIdle       SubmissionStatus = "IDLE"
	SubmissionStatusSubmitting SubmissionStatus = "SUBMITTING"
	SubmissionStatusSucceeded  SubmissionStatus = "SUCCEEDED"
	SubmissionStatusFailed     SubmissionStatus = "FAILED"
)

func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusSucceeded
}

// String representation (for logging)
func (s SubmissionStatus) String() string {
	return string(s)
}
