package enums

import "fmt"

// PaymentState tracks the lifecycle of a collection request. The gateway owns
// the vocabulary past the initial pending state, so reconciliation stores
// unknown states verbatim; this enum covers the states the platform reasons
// about.
type PaymentState string

const (
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

var validPaymentStates = []PaymentState{
	PaymentStatePending,
	PaymentStateSuccess,
	PaymentStateFailed,
}

// String implements fmt.Stringer.
func (p PaymentState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentState.
func (p PaymentState) IsValid() bool {
	for _, candidate := range validPaymentStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state ends the payment lifecycle.
func (p PaymentState) IsTerminal() bool {
	return p == PaymentStateSuccess || p == PaymentStateFailed
}

// ParsePaymentState converts raw input into a PaymentState.
func ParsePaymentState(value string) (PaymentState, error) {
	for _, candidate := range validPaymentStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment state %q", value)
}
