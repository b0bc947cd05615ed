package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

func TestMetrics_Contadores(t *testing.T) {
	m := metrics.New("stock-ledger-test")

	m.ObserveTransaction("bulk_movement", true, 15*time.Millisecond)
	m.ObserveTransaction("bulk_movement", false, time.Millisecond)
	m.ObserveTransaction("bulk_movement", true, time.Millisecond)
	m.IncMovement(entity.MovementTypeSale)
	m.IncMovement(entity.MovementTypeSale)
	m.IncAuditFailure()
	m.RecordHTTPRequest("POST", "/api/inventory/movements", 201, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("bulk_movement", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("bulk_movement", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsTotal.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PublishFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/inventory/movements", "201")))
}

func TestMetrics_HandlerExponeElRegistry(t *testing.T) {
	m := metrics.New("stock-ledger-test")
	m.IncPublishFailure()

	n, err := testutil.GatherAndCount(m.Registry(), "stock_ledger_event_publish_failures_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, m.Handler())
}
