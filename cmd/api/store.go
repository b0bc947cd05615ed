package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/mongodb"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// store agrupa el almacén transaccional elegido por STORE_DRIVER.
type store struct {
	txRunner  inventory.TxRunner
	items     repository.InventoryItemRepository
	movements repository.StockMovementRepository
	audit     repository.AuditLogRepository
	close     func(context.Context) error
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("crear esquema: %w", err)
			}
			log.Info().Msg("esquema de PostgreSQL verificado")
		}
		return &store{
			txRunner:  postgres.NewTxRunner(pool),
			items:     postgres.NewInventoryItemRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			audit:     postgres.NewAuditLogRepository(pool),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMongoDB:
		client, err := mongodb.NewClient(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("crear índices: %w", err)
		}
		db := client.Database()
		return &store{
			txRunner:  mongodb.NewTxRunner(client),
			items:     mongodb.NewInventoryItemRepository(db),
			movements: mongodb.NewStockMovementRepository(db),
			audit:     mongodb.NewAuditLogRepository(db),
			close:     client.Close,
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &store{
			txRunner:  s,
			items:     s.Items(),
			movements: s.Movements(),
			audit:     s.AuditLogs(),
			close:     func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("driver de almacenamiento desconocido: %q", cfg.Store.Driver)
}
