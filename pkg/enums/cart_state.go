package enums

import "fmt"

// CartState is the lifecycle state of a session cart.
type CartState string

const (
	CartStateUninitialized CartState = "UNINITIALIZED"
	CartStateLoading       CartState = "LOADING"
	CartStateReady         CartState = "READY"
	CartStateEmpty         CartState = "EMPTY"
)

var validCartStates = []CartState{
	CartStateUninitialized,
	CartStateLoading,
	CartStateReady,
	CartStateEmpty,
}

// String implements fmt.Stringer.
func (c CartState) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartState.
func (c CartState) IsValid() bool {
	for _, candidate := range validCartStates {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartState converts raw input into a CartState.
func ParseCartState(value string) (CartState, error) {
	for _, candidate := range validCartStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart state %q", value)
}
