package tracing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/tracing"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestSetup_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := tracing.Setup(context.Background(), config.TelemetryConfig{ServiceName: "stock-ledger"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}
