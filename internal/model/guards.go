package model

import "strings"

// ValidateRegistration checks the caller-supplied fields of a registration
// against the fee schedule. Wallet balance is checked by the store.
func ValidateRegistration(description, location string, reward, payment int64, fees Fees) *Rejection {
	if strings.TrimSpace(description) == "" {
		return Reject(KindInvalidInput, "description required")
	}
	if strings.TrimSpace(location) == "" {
		return Reject(KindInvalidInput, "location required")
	}
	if reward < 0 {
		return Reject(KindInvalidInput, "reward must not be negative")
	}
	if payment < 0 {
		return Reject(KindInvalidInput, "payment must not be negative")
	}
	required, ok := addAmounts(fees.RegistrationFee, reward)
	if !ok {
		return Reject(KindInvalidInput, "reward too large")
	}
	if payment < required {
		return Reject(KindInsufficientPayment, "payment %d below registration fee plus reward (%d)", payment, required)
	}
	return nil
}

// CheckReporter decides whether caller may report item found with the given
// payment. The owner is always refused, whatever the item's status.
func CheckReporter(item *Item, callerID, payment int64, fees Fees) *Rejection {
	if item.OwnerID == callerID {
		return Reject(KindUnauthorized, "owner cannot report own item found")
	}
	if item.Status != ItemStatusOpen {
		return Reject(KindInvalidState, "item %d is %s, not open", item.ID, item.Status)
	}
	if payment < 0 {
		return Reject(KindInvalidInput, "payment must not be negative")
	}
	if payment < fees.ClaimFee {
		return Reject(KindInsufficientPayment, "payment %d below claim fee (%d)", payment, fees.ClaimFee)
	}
	return nil
}

// CheckReleaser decides whether caller may release item's reward to its
// finder. Only the owner may, and only once the item has been reported found.
func CheckReleaser(item *Item, callerID int64) *Rejection {
	if item.OwnerID != callerID {
		return Reject(KindUnauthorized, "only the owner can release the reward")
	}
	if item.Status != ItemStatusFoundReported {
		return Reject(KindInvalidState, "item %d is %s, not found_reported", item.ID, item.Status)
	}
	return nil
}

// CheckPhotoEditor decides whether caller may replace item's photo. Only the
// owner may, and only while the item is still open.
func CheckPhotoEditor(item *Item, callerID int64) *Rejection {
	if item.OwnerID != callerID {
		return Reject(KindUnauthorized, "only the owner can change the photo")
	}
	if item.Status != ItemStatusOpen {
		return Reject(KindInvalidState, "item %d is %s, not open", item.ID, item.Status)
	}
	return nil
}

// addAmounts adds two non-negative amounts, reporting overflow.
func addAmounts(a, b int64) (int64, bool) {
	sum := a + b
	if sum < a || sum < b {
		return 0, false
	}
	return sum, true
}
