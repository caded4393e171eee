package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	appledger "github.com/stockbooks/backend/internal/application/ledger"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// attrCostingMethod labels movement metrics with the policy that costed them
var attrCostingMethod = attribute.Key("costing_method")

// MovementMetrics tracks costed stock movements and optimistic-lock retries
type MovementMetrics struct {
	receiptsTotal    *Counter
	issuesTotal      *Counter
	movementValue    *Histogram
	conflictRetries  *Counter
	conflictAttempts *Histogram
}

// NewMovementMetrics creates movement instruments on the given meter. Pass a
// nil meter to use the globally registered one.
func NewMovementMetrics(meter metric.Meter) (*MovementMetrics, error) {
	if meter == nil {
		meter = otel.Meter("stockbooks/ledger")
	}

	mm := &MovementMetrics{}
	var err error

	mm.receiptsTotal, err = NewCounter(meter,
		"stock_receipts_total",
		"Total number of receipt movements posted to the ledger",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	mm.issuesTotal, err = NewCounter(meter,
		"stock_issues_total",
		"Total number of issue movements posted to the ledger",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	mm.movementValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "stock_movement_value",
		Description: "Distribution of absolute movement values",
		Unit:        "{currency}",
	})
	if err != nil {
		return nil, err
	}

	mm.conflictRetries, err = NewCounter(meter,
		"stock_conflict_retries_total",
		"Total number of movements retried after an optimistic lock conflict",
		"{retries}",
	)
	if err != nil {
		return nil, err
	}

	mm.conflictAttempts, err = NewHistogram(meter, HistogramOpts{
		Name:        "stock_conflict_attempts",
		Description: "Attempts needed before a conflicted movement committed",
		Unit:        "{attempts}",
		Boundaries:  []float64{1, 2, 3, 4, 5},
	})
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// RecordReceipt records one committed receipt movement
func (mm *MovementMetrics) RecordReceipt(ctx context.Context, method ledger.CostingMethod, value decimal.Decimal) {
	attrs := []attribute.KeyValue{attrCostingMethod.String(string(method))}
	mm.receiptsTotal.Inc(ctx, attrs...)
	mm.movementValue.Record(ctx, value.InexactFloat64(), attrs...)
}

// RecordIssue records one committed issue movement
func (mm *MovementMetrics) RecordIssue(ctx context.Context, method ledger.CostingMethod, value decimal.Decimal) {
	attrs := []attribute.KeyValue{attrCostingMethod.String(string(method))}
	mm.issuesTotal.Inc(ctx, attrs...)
	mm.movementValue.Record(ctx, value.InexactFloat64(), attrs...)
}

// RecordConflictRetry records how many attempts a conflicted movement needed
func (mm *MovementMetrics) RecordConflictRetry(ctx context.Context, attempts int) {
	mm.conflictRetries.Inc(ctx)
	mm.conflictAttempts.Record(ctx, float64(attempts))
}

// Ensure MovementMetrics implements MovementRecorder
var _ appledger.MovementRecorder = (*MovementMetrics)(nil)
