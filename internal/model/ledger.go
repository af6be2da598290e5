package model

import (
	"strconv"
	"time"
)

// LedgerEntry is one leg of a ledger operation. The deltas of all entries
// sharing an OpID sum to zero.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	OpID      string    `json:"op_id"`
	ItemID    *int64    `json:"item_id,omitempty"`
	Account   string    `json:"account"`
	Kind      EntryKind `json:"kind"`
	Delta     int64     `json:"delta"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryKind labels why value moved.
type EntryKind string

// Entry kinds.
const (
	EntryPayment    EntryKind = "payment"
	EntryRefund     EntryKind = "refund"
	EntryEscrowHold EntryKind = "escrow_hold"
	EntryFee        EntryKind = "fee"
	EntryPayout     EntryKind = "payout"
	EntryDeposit    EntryKind = "deposit"
	EntryWithdrawal EntryKind = "withdrawal"
	EntrySweep      EntryKind = "sweep"
)

// Ledger accounts that are not tied to a user or item.
const (
	AccountRevenue  = "revenue"
	AccountTreasury = "treasury"
)

// WalletAccount names the journal account of a user's wallet.
func WalletAccount(userID int64) string {
	return "wallet:" + strconv.FormatInt(userID, 10)
}

// EscrowAccount names the journal account holding an item's reward.
func EscrowAccount(itemID int64) string {
	return "escrow:" + strconv.FormatInt(itemID, 10)
}

// Wallet is a user's spendable balance.
type Wallet struct {
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditReport lists every discrepancy found between balances and the journal.
type AuditReport struct {
	ItemsChecked   int      `json:"items_checked"`
	WalletsChecked int      `json:"wallets_checked"`
	Problems       []string `json:"problems"`
}

// OK reports whether the audit found nothing wrong.
func (r *AuditReport) OK() bool {
	return len(r.Problems) == 0
}
