// Package mongodb implementa el almacén transaccional sobre MongoDB (replica set requerido
// para transacciones multi-documento).
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Nombres de colecciones.
const (
	CollectionInventory      = "inventory"
	CollectionStockMovements = "stockMovements"
	CollectionAuditLogs      = "auditLogs"
)

// Client envuelve el cliente de MongoDB y la base de datos del ledger.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient conecta y verifica con ping al primario.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("conectar MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	return &Client{client: client, database: client.Database(cfg.Database)}, nil
}

// Database devuelve el handle de la base de datos.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Close desconecta el cliente.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes crea los índices de las tres colecciones (idempotente).
func (c *Client) EnsureIndexes(ctx context.Context) error {
	for name, models := range indexModels() {
		if _, err := c.database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("crear índices %s: %w", name, err)
		}
	}
	return nil
}
