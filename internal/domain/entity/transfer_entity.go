package entity

import "time"

// TransferOutcome reports what a successful transfer did: the fee withheld
// from the recipient's credit (zero when energy was spent instead) and
// whether an energy unit paid for the waiver.
type TransferOutcome struct {
	Fee        float64 `json:"fee"`
	EnergyUsed bool    `json:"energy_used"`
}

// Transfer is an immutable ledger entry recorded for every applied
// transfer. Amount is what left the sender; Amount-Fee is what the
// recipient received. The fee itself is removed from circulation.
type Transfer struct {
	ID          string
	SenderID    string
	RecipientID string
	Amount      float64
	Fee         float64
	EnergyUsed  bool
	CreatedAt   time.Time
}
