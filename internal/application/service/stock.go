package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
)

// ComputeStockDelta returns the stock movement a transaction of the given type
// applies per item: purchases add, sales remove, everything else leaves stock alone.
func ComputeStockDelta(txnType enum.TransactionType, items []entity.TransactionItem) map[uuid.UUID]int {
	deltas := make(map[uuid.UUID]int)

	var sign int
	switch txnType {
	case enum.TransactionTypePurchase:
		sign = 1
	case enum.TransactionTypeSale:
		sign = -1
	default:
		return deltas
	}

	for _, item := range items {
		deltas[item.ItemID] += sign * item.Quantity
	}
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas
}

// NegateDelta reverses a delta so applying both leaves stock unchanged
func NegateDelta(deltas map[uuid.UUID]int) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(deltas))
	for id, d := range deltas {
		out[id] = -d
	}
	return out
}
