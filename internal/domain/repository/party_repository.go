package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/pkg/pagination"
)

// PartyRepository defines the interface for customer and supplier operations
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Party, error)
	List(ctx context.Context, params *PartyFilterParams) ([]entity.Party, int64, error)
}

// PartyFilterParams contains filtering parameters for party queries
type PartyFilterParams struct {
	Pagination *pagination.PaginationParams
	Type       enum.PartyType
	Search     string
}
