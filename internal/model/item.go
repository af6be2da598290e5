package model

import "time"

// Item is a lost-item record. Description, location, owner and reward are
// fixed at registration; the finder is set once when the item is reported
// found.
type Item struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Owner       string     `json:"owner"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Reward      int64      `json:"reward"`
	Escrow      int64      `json:"escrow"`
	Status      ItemStatus `json:"status"`
	FinderID    int64      `json:"finder_id"`
	Finder      string     `json:"finder"`
	HasImage    bool       `json:"has_image"`
	CreatedAt   time.Time  `json:"created_at"`
	FoundAt     *time.Time `json:"found_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// NoFinder is the finder id of an item that has not been reported found.
const NoFinder int64 = 0

// ItemStatus is the lifecycle state of an item.
type ItemStatus string

// Item statuses, in lifecycle order.
const (
	ItemStatusOpen          ItemStatus = "open"
	ItemStatusFoundReported ItemStatus = "found_reported"
	ItemStatusResolved      ItemStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusOpen, ItemStatusFoundReported, ItemStatusResolved:
		return true
	}
	return false
}

// Next returns the status that follows s, and false for the terminal status.
func (s ItemStatus) Next() (ItemStatus, bool) {
	switch s {
	case ItemStatusOpen:
		return ItemStatusFoundReported, true
	case ItemStatusFoundReported:
		return ItemStatusResolved, true
	}
	return "", false
}

// Fees is the deployment-wide fee schedule.
type Fees struct {
	RegistrationFee int64 `json:"registration_fee"`
	ClaimFee        int64 `json:"claim_fee"`
}
