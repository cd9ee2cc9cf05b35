package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	DeleteByTransactionID(ctx context.Context, transactionID uuid.UUID) error
	// DeleteRecorded removes the payment a completed transaction recorded with method
	DeleteRecorded(ctx context.Context, transactionID uuid.UUID, method string) error
}
