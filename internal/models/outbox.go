package models

import "time"

// Outbox message kinds.
const (
	OutboxNewTransaction = "new_transaction"
	OutboxStatusChanged  = "status_changed"
)

// OutboxMessage is a queue message written in the same database transaction
// as the change it announces. It is deleted once published.
type OutboxMessage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
