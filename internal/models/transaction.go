package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NoWallet marks the leg of a transaction that does not apply.
const NoWallet = "-"

type TransactionType string

const (
	TransactionTypePayment  TransactionType = "Payment"
	TransactionTypeRecharge TransactionType = "Recharge"
	TransactionTypeTransfer TransactionType = "Transfer"
	TransactionTypeRevert   TransactionType = "Revert"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypePayment, TransactionTypeRecharge, TransactionTypeTransfer, TransactionTypeRevert:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusQueued          TransactionStatus = "Queued"
	TransactionStatusProceed         TransactionStatus = "Proceed"
	TransactionStatusFailed          TransactionStatus = "Failed"
	TransactionStatusCanceled        TransactionStatus = "Canceled"
	TransactionStatusQueuedForRevert TransactionStatus = "QueuedForRevert"
	TransactionStatusReverted        TransactionStatus = "Reverted"
)

// statusPrecedence is the total order transactions move along. A status can
// only be replaced by one of equal or higher rank.
var statusPrecedence = map[TransactionStatus]int{
	TransactionStatusQueued:          0,
	TransactionStatusProceed:         1,
	TransactionStatusFailed:          2,
	TransactionStatusCanceled:        3,
	TransactionStatusQueuedForRevert: 4,
	TransactionStatusReverted:        5,
}

// Precedence returns the rank of s, or -1 for an unknown status.
func (s TransactionStatus) Precedence() int {
	if rank, ok := statusPrecedence[s]; ok {
		return rank
	}
	return -1
}

func (s TransactionStatus) Valid() bool {
	return s.Precedence() >= 0
}

// CanMoveTo reports whether next does not go backwards from s.
func (s TransactionStatus) CanMoveTo(next TransactionStatus) bool {
	return next.Valid() && next.Precedence() >= s.Precedence()
}

// Transaction purposes
const (
	TransactionPurposeOther    = "Other"
	TransactionPurposeFood     = "Food"
	TransactionPurposeTravel   = "Travel"
	TransactionPurposeBills    = "Bills"
	TransactionPurposeShopping = "Shopping"
)

type Transaction struct {
	TransactionID       string            `gorm:"primarykey;size:64" json:"transaction_id"`
	ParentTransactionID *string           `gorm:"index;size:64" json:"parent_transaction_id,omitempty"`
	FromWallet          string            `gorm:"index;size:32;not null" json:"from_wallet"`
	ToWallet            string            `gorm:"index;size:32;not null" json:"to_wallet"`
	Amount              decimal.Decimal   `gorm:"type:numeric(20,4);not null" json:"amount"`
	Currency            string            `gorm:"size:8;not null" json:"currency"`
	TransactionType     TransactionType   `gorm:"size:16;not null" json:"transaction_type"`
	TransactionStatus   TransactionStatus `gorm:"size:16;not null;index" json:"transaction_status"`
	TransactionPurpose  string            `gorm:"size:32" json:"transaction_purpose"`
	FailureCode         *string           `gorm:"size:64" json:"failure_code,omitempty"`
	Comment             *string           `json:"comment,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// TransactionRequest carries what a caller supplies for a new transaction.
type TransactionRequest struct {
	TargetWallet       string          `json:"target_wallet" validate:"required"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency" validate:"required,len=3"`
	TransactionPurpose string          `json:"transaction_purpose"`
	Comment            *string         `json:"comment"`
}

func newTransaction(txType TransactionType, from, to string, req TransactionRequest) *Transaction {
	purpose := req.TransactionPurpose
	if purpose == "" {
		purpose = TransactionPurposeOther
	}
	return &Transaction{
		TransactionID:      uuid.NewString(),
		FromWallet:         from,
		ToWallet:           to,
		Amount:             req.Amount,
		Currency:           NormalizeCurrency(req.Currency),
		TransactionType:    txType,
		TransactionStatus:  TransactionStatusQueued,
		TransactionPurpose: purpose,
		Comment:            req.Comment,
	}
}

// NewPaymentTransaction debits the target wallet; there is no receiving leg.
func NewPaymentTransaction(req TransactionRequest) *Transaction {
	return newTransaction(TransactionTypePayment, req.TargetWallet, NoWallet, req)
}

// NewRechargeTransaction credits the target wallet; there is no sending leg.
func NewRechargeTransaction(req TransactionRequest) *Transaction {
	return newTransaction(TransactionTypeRecharge, NoWallet, req.TargetWallet, req)
}

func NewTransferTransaction(fromWalletNumber string, req TransactionRequest) *Transaction {
	return newTransaction(TransactionTypeTransfer, fromWalletNumber, req.TargetWallet, req)
}

// NewRevertTransaction builds the compensating transaction for original. Its
// legs are swapped so settling it moves the funds back.
func NewRevertTransaction(original *Transaction) *Transaction {
	parentID := original.TransactionID
	return &Transaction{
		TransactionID:       uuid.NewString(),
		ParentTransactionID: &parentID,
		FromWallet:          original.ToWallet,
		ToWallet:            original.FromWallet,
		Amount:              original.Amount,
		Currency:            original.Currency,
		TransactionType:     TransactionTypeRevert,
		TransactionStatus:   TransactionStatusQueued,
		TransactionPurpose:  original.TransactionPurpose,
		Comment:             original.Comment,
	}
}

// TransactionStatusChanged is published after every effective status change.
type TransactionStatusChanged struct {
	TransactionID     string            `json:"transaction_id"`
	TransactionStatus TransactionStatus `json:"transaction_status"`
	FailureCode       *string           `json:"failure_code,omitempty"`
}

// NewTransactionQueued is the payload of the new-transaction topic.
type NewTransactionQueued struct {
	TransactionID string `json:"transaction_id"`
}
