package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/precision"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReorderUseCase genera la lista de reposición de una sede.
// Combina el stock actual con el consumo diario derivado de las ventas de la ventana configurada.
type ReorderUseCase struct {
	itemRepo   repository.InventoryItemRepository
	movRepo    repository.StockMovementRepository
	windowDays int
	now        func() time.Time
}

// NewReorderUseCase construye el caso de uso de reposición.
func NewReorderUseCase(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
	windowDays int,
) *ReorderUseCase {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &ReorderUseCase{
		itemRepo:   itemRepo,
		movRepo:    movRepo,
		windowDays: windowDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetReorderRecommendations devuelve una recomendación por ítem, de la más urgente a la menos urgente.
func (uc *ReorderUseCase) GetReorderRecommendations(ctx context.Context, tenantID, locationID string) ([]inventory.ReorderRecommendation, error) {
	items, err := uc.itemRepo.ListByLocation(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []inventory.ReorderRecommendation{}, nil
	}

	since := uc.now().AddDate(0, 0, -uc.windowDays)
	sold, err := uc.movRepo.SalesUsageSince(ctx, tenantID, locationID, since)
	if err != nil {
		return nil, err
	}

	window := decimal.NewFromInt(int64(uc.windowDays))
	daily := make(map[string]decimal.Decimal, len(sold))
	for id, total := range sold {
		perDay, err := precision.Divide(total, window, precision.DefaultPlaces)
		if err != nil {
			continue
		}
		daily[id] = perDay
	}

	recs := inventory.CalculateReorderRecommendations(items, daily)
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs, nil
}
