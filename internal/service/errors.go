package service

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the caller's role does not permit the
	// operation.
	ErrForbidden = errors.New("access denied")

	// ErrOrderNotFound is returned for an unknown order id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrSkinNotFound is returned for an unknown skin id.
	ErrSkinNotFound = errors.New("skin not found")

	// ErrUserNotFound is returned for an unknown user id.
	ErrUserNotFound = errors.New("user not found")

	// ErrSkinNotPurchasable is returned when ordering an inactive or
	// not-yet-released skin.
	ErrSkinNotPurchasable = errors.New("skin is not available for purchase")

	// ErrGifterNoFreeSlots is returned when the selected gifter has no unused
	// slot for the skin.
	ErrGifterNoFreeSlots = errors.New("selected gifter has no available slots for this skin")

	// ErrNoFreeSlots is returned when no gifter has an unused slot for the
	// skin.
	ErrNoFreeSlots = errors.New("no slots available from any gifter")

	// ErrInvalidTransition is returned when an operation is applied to an
	// order whose current status does not admit it.
	ErrInvalidTransition = errors.New("operation not allowed in current order status")
)

// PolicyError is an anti-abuse rejection. Reason is user-visible and carries
// the specific ground for the rejection (rate limit, ban).
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

// rejectf builds a PolicyError with a formatted reason.
func rejectf(format string, args ...any) *PolicyError {
	return &PolicyError{Reason: fmt.Sprintf(format, args...)}
}
