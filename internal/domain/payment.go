package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentIntent is the expected-payment tuple recorded when a pending order
// is created. The manual-external payment path validates incoming
// signatures against it; it expires after a short window.
type PaymentIntent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Recipient   string          `json:"recipient"`
	Currency    Currency        `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PaymentRecord is a chain-neutral view of a confirmed transaction: who
// received what, plus the memo if one was attached. Produced by the chain
// inspector, consumed by reconciliation.
type PaymentRecord struct {
	Signature string
	Slot      uint64
	Failed    bool
	Memo      string
	Transfers []TransferRecord
}

// TransferRecord is a single credit observed in a transaction. Mint is
// empty for native transfers.
type TransferRecord struct {
	Recipient string
	Mint      string
	Amount    uint64
}

// AmountTo sums every credit to recipient in the given mint.
func (r *PaymentRecord) AmountTo(recipient, mint string) uint64 {
	var total uint64
	for _, t := range r.Transfers {
		if t.Recipient == recipient && t.Mint == mint {
			total += t.Amount
		}
	}
	return total
}
