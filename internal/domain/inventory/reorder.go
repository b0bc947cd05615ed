package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// ReorderPriority urgencia de reposición.
type ReorderPriority string

const (
	ReorderUrgent ReorderPriority = "urgent"
	ReorderSoon   ReorderPriority = "soon"
	ReorderNormal ReorderPriority = "normal"
	ReorderNone   ReorderPriority = "none"
)

// Rank orden de urgencia (0 = más urgente).
func (p ReorderPriority) Rank() int {
	switch p {
	case ReorderUrgent:
		return 0
	case ReorderSoon:
		return 1
	case ReorderNormal:
		return 2
	default:
		return 3
	}
}

// Umbrales en días de cobertura.
const (
	soonDays   = 3
	normalDays = 7
)

// ReorderRecommendation recomendación por ítem.
type ReorderRecommendation struct {
	InventoryItemID string
	Name            string
	Unit            string
	CurrentStock    decimal.Decimal
	MinStock        decimal.Decimal
	MaxStock        *decimal.Decimal
	Priority        ReorderPriority
	Reason          string
	SuggestedOrder  decimal.Decimal
	DailyUsage      *decimal.Decimal
	DaysRemaining   *int
}

// CalculateReorderRecommendations clasifica cada ítem por urgencia. dailyUsage puede ser nil.
func CalculateReorderRecommendations(items []*entity.InventoryItem, dailyUsage map[string]decimal.Decimal) []ReorderRecommendation {
	out := make([]ReorderRecommendation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		rec := ReorderRecommendation{
			InventoryItemID: item.ID,
			Name:            item.Name,
			Unit:            item.Unit,
			CurrentStock:    item.CurrentStock,
			MinStock:        item.MinStock,
			MaxStock:        item.MaxStock,
			Priority:        ReorderNone,
			SuggestedOrder:  decimal.Zero,
		}

		var days *int
		if usage, ok := dailyUsage[item.ID]; ok && usage.IsPositive() {
			u := usage
			rec.DailyUsage = &u
			n := 0
			if item.CurrentStock.IsPositive() {
				n = int(item.CurrentStock.Div(usage).Floor().IntPart())
			}
			days = &n
			rec.DaysRemaining = days
		}

		twiceMin := precision.Multiply(item.MinStock, decimal.NewFromInt(2), precision.DefaultPlaces)
		switch {
		case !item.CurrentStock.IsPositive():
			rec.Priority = ReorderUrgent
			rec.Reason = "out of stock"
			rec.SuggestedOrder = twiceMin
			if item.MaxStock != nil {
				rec.SuggestedOrder = *item.MaxStock
			}
		case item.CurrentStock.LessThanOrEqual(item.MinStock):
			rec.Priority = ReorderUrgent
			rec.Reason = fmt.Sprintf("below minimum (%s <= %s)", item.CurrentStock.String(), item.MinStock.String())
			rec.SuggestedOrder = refill(item, twiceMin)
		case days != nil && *days <= soonDays:
			rec.Priority = ReorderSoon
			rec.Reason = fmt.Sprintf("runs out in %d days at current usage", *days)
			rec.SuggestedOrder = refill(item, twiceMin)
		case days != nil && *days <= normalDays:
			rec.Priority = ReorderNormal
			rec.Reason = fmt.Sprintf("runs out in %d days at current usage", *days)
			rec.SuggestedOrder = refill(item, twiceMin)
		default:
			rec.Reason = "stock sufficient"
		}
		out = append(out, rec)
	}
	return out
}

// refill cantidad a pedir: hasta el máximo si existe, si no dos veces el mínimo.
func refill(item *entity.InventoryItem, twiceMin decimal.Decimal) decimal.Decimal {
	if item.MaxStock == nil {
		return twiceMin
	}
	q := precision.Subtract(*item.MaxStock, item.CurrentStock, precision.DefaultPlaces)
	if q.IsNegative() {
		return decimal.Zero
	}
	return q
}
