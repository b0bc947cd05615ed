package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción multi-documento.
// session.WithTransaction reintenta fn ante errores transitorios (write conflicts),
// por lo que fn debe poder ejecutarse más de una vez.
type TxRunner struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewTxRunner construye el runner sobre la base de datos del ledger.
func NewTxRunner(c *Client) *TxRunner {
	return &TxRunner{client: c.client, db: c.database}
}

// Run abre una sesión y ejecuta fn con repositorios atados a ella.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		itemRepo := &InventoryItemRepo{coll: r.db.Collection(CollectionInventory), scope: scope{session: session}}
		movRepo := &StockMovementRepo{coll: r.db.Collection(CollectionStockMovements), scope: scope{session: session}}
		return nil, fn(itemRepo, movRepo)
	}, txOpts)
	if err != nil {
		var se mongo.ServerError
		if errors.As(err, &se) {
			return mapError("transaction", err)
		}
		return err
	}
	return nil
}
