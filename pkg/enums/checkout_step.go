package enums

import "fmt"

// CheckoutStep is the current stage of a checkout attempt.
type CheckoutStep string

const (
	CheckoutStepCollectingAddress CheckoutStep = "COLLECTING_ADDRESS"
	CheckoutStepSelectingPayment  CheckoutStep = "SELECTING_PAYMENT"
	CheckoutStepReviewing         CheckoutStep = "REVIEWING"
	CheckoutStepSubmitting        CheckoutStep = "SUBMITTING"
	CheckoutStepCompleted         CheckoutStep = "COMPLETED"
	CheckoutStepFailed            CheckoutStep = "FAILED"
	CheckoutStepDisposed          CheckoutStep = "DISPOSED"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepCollectingAddress,
	CheckoutStepSelectingPayment,
	CheckoutStepReviewing,
	CheckoutStepSubmitting,
	CheckoutStepCompleted,
	CheckoutStepFailed,
	CheckoutStepDisposed,
}

// String implements fmt.Stringer.
func (c CheckoutStep) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStep.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}

// IsTerminal reports whether the attempt can make no further progress.
func (c CheckoutStep) IsTerminal() bool {
	return c == CheckoutStepCompleted || c == CheckoutStepDisposed
}
