package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/analytics"
	"github.com/sangkips/bizledger-api/pkg/period"
	"github.com/shopspring/decimal"
)

// Inventory report types
const (
	ReportValuation = "valuation"
	ReportTurnover  = "turnover"
	ReportLowStock  = "low-stock"
)

const uncategorized = "Uncategorized"

var two = decimal.NewFromInt(2)

// ItemValuation is the stock value of one item
type ItemValuation struct {
	ItemID        uuid.UUID       `json:"item_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	analytics.StockValue
}

// CategoryValuation rolls item values up to their category
type CategoryValuation struct {
	Category  string `json:"category"`
	ItemCount int    `json:"item_count"`
	Quantity  int    `json:"quantity"`
	analytics.StockValue
}

// InventoryValuation values the stock on hand per item and per category
type InventoryValuation struct {
	Items      []ItemValuation      `json:"items"`
	Categories []CategoryValuation  `json:"categories"`
	Total      analytics.StockValue `json:"total"`
}

// ItemTurnover is the turnover of one item over a period
type ItemTurnover struct {
	ItemID            uuid.UUID       `json:"item_id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	QuantitySold      int64           `json:"quantity_sold"`
	QuantityPurchased int64           `json:"quantity_purchased"`
	COGS              decimal.Decimal `json:"cogs"`
	AverageInventory  decimal.Decimal `json:"average_inventory"`
	analytics.Turnover
}

// InventoryTurnover is the turnover of the whole stock and of every stocked item
type InventoryTurnover struct {
	Period           period.Range    `json:"period"`
	COGS             decimal.Decimal `json:"cogs"`
	OpeningInventory decimal.Decimal `json:"opening_inventory"`
	ClosingInventory decimal.Decimal `json:"closing_inventory"`
	AverageInventory decimal.Decimal `json:"average_inventory"`
	analytics.Turnover
	Items []ItemTurnover `json:"items"`
}

// LowStockItem is an item at or below its reorder level
type LowStockItem struct {
	ItemID        uuid.UUID       `json:"item_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	MinStock      int             `json:"min_stock"`
	Shortfall     int             `json:"shortfall"`
	ReorderCost   decimal.Decimal `json:"reorder_cost"`
}

// InventorySummary counts the catalog and values the stock
type InventorySummary struct {
	TotalItems      int                  `json:"total_items"`
	ActiveItems     int                  `json:"active_items"`
	ServiceItems    int                  `json:"service_items"`
	CategoryCount   int                  `json:"category_count"`
	LowStockCount   int                  `json:"low_stock_count"`
	OutOfStockCount int                  `json:"out_of_stock_count"`
	TotalQuantity   int                  `json:"total_quantity"`
	Value           analytics.StockValue `json:"value"`
}

func (s *ReportService) inventory(ctx context.Context, q ReportQuery) (interface{}, error) {
	switch q.Type {
	case ReportValuation:
		return s.InventoryValuation(ctx, q)
	case ReportTurnover:
		return s.InventoryTurnover(ctx, q)
	case ReportLowStock:
		return s.LowStock(ctx, q)
	case ReportSummary, "":
		return s.InventorySummary(ctx, q)
	}
	return nil, invalidReportType(q.Type)
}

func categoryName(r repository.StockItemRow) string {
	if r.CategoryName == nil || *r.CategoryName == "" {
		return uncategorized
	}
	return *r.CategoryName
}

func inCategory(r repository.StockItemRow, categoryID *uuid.UUID) bool {
	if categoryID == nil {
		return true
	}
	return r.CategoryID != nil && *r.CategoryID == *categoryID
}

// InventoryValuation values every stocked item, optionally within one category
func (s *ReportService) InventoryValuation(ctx context.Context, q ReportQuery) (*InventoryValuation, error) {
	report := &InventoryValuation{Items: []ItemValuation{}, Categories: []CategoryValuation{}}

	err := s.run(ctx, "Inventory valuation report", func(ctx context.Context, tx repository.Store) error {
		stock, err := loadStock(ctx, tx)
		if err != nil {
			return err
		}

		index := make(map[string]int)
		for _, r := range stock.items {
			if !stocked(r) || !inCategory(r, q.CategoryID) {
				continue
			}
			cost := effectiveCost(r)
			value := analytics.ValueStock(r.StockQuantity, cost, r.UnitPrice)
			category := categoryName(r)

			report.Items = append(report.Items, ItemValuation{
				ItemID:        r.ID,
				Name:          r.Name,
				SKU:           r.SKU,
				Category:      category,
				StockQuantity: r.StockQuantity,
				CostPrice:     cost,
				UnitPrice:     r.UnitPrice,
				StockValue:    value,
			})

			i, ok := index[category]
			if !ok {
				i = len(report.Categories)
				index[category] = i
				report.Categories = append(report.Categories, CategoryValuation{Category: category})
			}
			c := &report.Categories[i]
			c.ItemCount++
			c.Quantity += r.StockQuantity
			c.StockValue = c.StockValue.Add(value)
			report.Total = report.Total.Add(value)
		}

		sortByAmountDesc(report.Items, func(v ItemValuation) decimal.Decimal { return v.CostValue })
		sortByAmountDesc(report.Categories, func(v CategoryValuation) decimal.Decimal { return v.CostValue })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// InventoryTurnover relates the cost of goods moved in q.Range to the average stock held.
// Opening stock is reconstructed as closing stock plus units sold minus units bought.
func (s *ReportService) InventoryTurnover(ctx context.Context, q ReportQuery) (*InventoryTurnover, error) {
	report := &InventoryTurnover{Period: q.Range, Items: []ItemTurnover{}}

	err := s.run(ctx, "Inventory turnover report", func(ctx context.Context, tx repository.Store) error {
		stock, err := loadStock(ctx, tx)
		if err != nil {
			return err
		}
		movements, err := tx.Analytics().ItemMovements(ctx, rangeFilter(q.Range,
			enum.TransactionTypeSale, enum.TransactionTypePurchase))
		if err != nil {
			return err
		}
		totals, err := loadTypeTotals(ctx, tx, rangeFilter(q.Range, enum.TransactionTypePurchase))
		if err != nil {
			return err
		}

		sold := make(map[uuid.UUID]int64)
		bought := make(map[uuid.UUID]int64)
		boughtValue := make(map[uuid.UUID]decimal.Decimal)
		for _, m := range movements {
			switch m.Type {
			case enum.TransactionTypeSale:
				sold[m.ItemID] += m.Quantity
			case enum.TransactionTypePurchase:
				bought[m.ItemID] += m.Quantity
				boughtValue[m.ItemID] = boughtValue[m.ItemID].Add(m.TotalAmount)
			}
		}

		// a category filter limits COGS to purchase lines of that category's items
		categoryCOGS := decimal.Zero
		opening, closing := decimal.Zero, decimal.Zero
		for _, r := range stock.items {
			if r.IsService || !inCategory(r, q.CategoryID) {
				continue
			}
			cost := effectiveCost(r)
			closingQty := int64(max(r.StockQuantity, 0))
			openingQty := max(int64(r.StockQuantity)+sold[r.ID]-bought[r.ID], 0)
			closingValue := cost.Mul(decimal.NewFromInt(closingQty))
			openingValue := cost.Mul(decimal.NewFromInt(openingQty))
			opening = opening.Add(openingValue)
			closing = closing.Add(closingValue)
			categoryCOGS = categoryCOGS.Add(boughtValue[r.ID])

			if !r.IsActive && sold[r.ID] == 0 && bought[r.ID] == 0 {
				continue
			}
			avg := openingValue.Add(closingValue).Div(two)
			cogs := cost.Mul(decimal.NewFromInt(sold[r.ID]))
			report.Items = append(report.Items, ItemTurnover{
				ItemID:            r.ID,
				Name:              r.Name,
				SKU:               r.SKU,
				QuantitySold:      sold[r.ID],
				QuantityPurchased: bought[r.ID],
				COGS:              cogs,
				AverageInventory:  avg.Round(2),
				Turnover:          analytics.ComputeTurnover(cogs, avg),
			})
		}

		report.COGS = totals.total(enum.TransactionTypePurchase)
		if q.CategoryID != nil {
			report.COGS = categoryCOGS
		}
		report.OpeningInventory = opening
		report.ClosingInventory = closing
		avg := opening.Add(closing).Div(two)
		report.AverageInventory = avg.Round(2)
		report.Turnover = analytics.ComputeTurnover(report.COGS, avg)

		sortByAmountDesc(report.Items, func(t ItemTurnover) decimal.Decimal { return t.Ratio })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LowStock lists active stocked items at or below their minimum, largest shortfall first
func (s *ReportService) LowStock(ctx context.Context, q ReportQuery) ([]LowStockItem, error) {
	out := []LowStockItem{}

	err := s.run(ctx, "Low stock report", func(ctx context.Context, tx repository.Store) error {
		stock, err := loadStock(ctx, tx)
		if err != nil {
			return err
		}
		for _, r := range stock.items {
			if !lowStock(r) || !inCategory(r, q.CategoryID) {
				continue
			}
			shortfall := r.MinStock - r.StockQuantity
			out = append(out, LowStockItem{
				ItemID:        r.ID,
				Name:          r.Name,
				SKU:           r.SKU,
				Category:      categoryName(r),
				StockQuantity: r.StockQuantity,
				MinStock:      r.MinStock,
				Shortfall:     shortfall,
				ReorderCost:   effectiveCost(r).Mul(decimal.NewFromInt(int64(shortfall))),
			})
		}
		sortByAmountDesc(out, func(l LowStockItem) decimal.Decimal { return decimal.NewFromInt(int64(l.Shortfall)) })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InventorySummary counts items and values the stock on hand
func (s *ReportService) InventorySummary(ctx context.Context, q ReportQuery) (*InventorySummary, error) {
	summary := &InventorySummary{}

	err := s.run(ctx, "Inventory summary report", func(ctx context.Context, tx repository.Store) error {
		stock, err := loadStock(ctx, tx)
		if err != nil {
			return err
		}
		categories := make(map[string]bool)
		for _, r := range stock.items {
			if !inCategory(r, q.CategoryID) {
				continue
			}
			summary.TotalItems++
			if r.IsActive {
				summary.ActiveItems++
			}
			if r.IsService {
				summary.ServiceItems++
			}
			categories[categoryName(r)] = true
			if lowStock(r) {
				summary.LowStockCount++
				if r.StockQuantity <= 0 {
					summary.OutOfStockCount++
				}
			}
			if stocked(r) {
				summary.TotalQuantity += r.StockQuantity
				summary.Value = summary.Value.Add(analytics.ValueStock(r.StockQuantity, effectiveCost(r), r.UnitPrice))
			}
		}
		summary.CategoryCount = len(categories)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
