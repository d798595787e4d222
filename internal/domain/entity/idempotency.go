package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response of a processed mutation so a retried
// request with the same key replays it instead of paying twice. A key is
// scoped to the store and the concrete endpoint ("POST /api/v1/purchases/<id>/payments").
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_scope;size:255;not null"`
	StoreID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_idempotency_scope;not null"`
	OperatorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Endpoint     string    `gorm:"uniqueIndex:idx_idempotency_scope;size:255;not null"`
	RequestHash  string    `gorm:"size:64"`
	ResponseCode int       `gorm:"not null"`
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
