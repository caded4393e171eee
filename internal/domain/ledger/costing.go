package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// CostingMethod represents the inventory costing policy
type CostingMethod string

const (
	// CostingMethodWeightedAvg costs issues at the running weighted average
	CostingMethodWeightedAvg CostingMethod = "WEIGHTED_AVG"
	// CostingMethodFIFO costs issues by consuming the oldest open lots first
	CostingMethodFIFO CostingMethod = "FIFO"
)

// String returns the string representation of the costing method
func (m CostingMethod) String() string {
	return string(m)
}

// IsValid returns true if the costing method is valid
func (m CostingMethod) IsValid() bool {
	return m == CostingMethodWeightedAvg || m == CostingMethodFIFO
}

// LotConsumption records how much an issue took from one lot
type LotConsumption struct {
	LotID    uuid.UUID
	Qty      decimal.Decimal
	UnitCost decimal.Decimal
	Value    decimal.Decimal
}

// IssueCosting is the costed result of an issue: the weighted unit cost of
// the issued mix, its total value, and the lot consumptions backing it.
type IssueCosting struct {
	UnitCost     decimal.Decimal
	Value        decimal.Decimal
	Consumptions []LotConsumption
}

// CostingStrategy computes the cost of an issued quantity against the
// current running balance and the open lots for the key.
type CostingStrategy interface {
	// Method returns the costing method implemented by this strategy
	Method() CostingMethod
	// CostIssue computes unit cost and value for issuing qty. It never
	// mutates its inputs; applying lot consumptions is the caller's job.
	CostIssue(level *StockLevel, qty decimal.Decimal, lots []StockLot) (*IssueCosting, error)
}

// ReceiptValue returns the monetary value of a receipt (qty * unitCost),
// rounded to the value scale.
func ReceiptValue(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitCost).Round(ValueScale)
}

// StrategyFor returns the strategy implementing the given costing method
func StrategyFor(method CostingMethod) (CostingStrategy, error) {
	switch method {
	case CostingMethodWeightedAvg:
		return NewWeightedAverageStrategy(), nil
	case CostingMethodFIFO:
		return NewFIFOStrategy(), nil
	default:
		return nil, shared.NewDomainError("INVALID_COSTING_METHOD", "Unknown costing method")
	}
}

// WeightedAverageStrategy costs issues at the running average cost of the
// key at the time of issue.
type WeightedAverageStrategy struct{}

// NewWeightedAverageStrategy creates a new weighted-average strategy
func NewWeightedAverageStrategy() *WeightedAverageStrategy {
	return &WeightedAverageStrategy{}
}

// Method returns the costing method
func (s *WeightedAverageStrategy) Method() CostingMethod {
	return CostingMethodWeightedAvg
}

// CostIssue charges the issue proportionally against the running value:
// value = runningValue * qty / runningQty. A proportional removal leaves the
// average cost of the remaining stock unchanged and, unlike qty * roundedAvg,
// cannot strand rounding residue when the key is fully issued.
func (s *WeightedAverageStrategy) CostIssue(level *StockLevel, qty decimal.Decimal, _ []StockLot) (*IssueCosting, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if qty.GreaterThan(level.OnHandQty) {
		return nil, shared.ErrInsufficientStock
	}

	var value decimal.Decimal
	if qty.Equal(level.OnHandQty) {
		value = level.OnHandValue
	} else {
		value = level.OnHandValue.Mul(qty).Div(level.OnHandQty).Round(ValueScale)
	}

	return &IssueCosting{
		UnitCost: level.AvgUnitCost,
		Value:    value,
	}, nil
}

// FIFOStrategy costs issues by consuming open lots in receipt order
type FIFOStrategy struct{}

// NewFIFOStrategy creates a new FIFO strategy
func NewFIFOStrategy() *FIFOStrategy {
	return &FIFOStrategy{}
}

// Method returns the costing method
func (s *FIFOStrategy) Method() CostingMethod {
	return CostingMethodFIFO
}

// CostIssue consumes open lots oldest-first (received-at, then creation
// order) until the requested quantity is covered. The returned unit cost is
// the weighted cost of the consumed mix (value / qty).
func (s *FIFOStrategy) CostIssue(level *StockLevel, qty decimal.Decimal, lots []StockLot) (*IssueCosting, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if qty.GreaterThan(level.OnHandQty) {
		return nil, shared.ErrInsufficientStock
	}

	open := make([]StockLot, 0, len(lots))
	for _, lot := range lots {
		if lot.IsOpen() {
			open = append(open, lot)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].ReceivedAt.Equal(open[j].ReceivedAt) {
			return open[i].ReceivedAt.Before(open[j].ReceivedAt)
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	remaining := qty
	value := decimal.Zero
	consumptions := make([]LotConsumption, 0, len(open))

	for _, lot := range open {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, lot.RemainingQty)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		lotValue := take.Mul(lot.UnitCost)
		consumptions = append(consumptions, LotConsumption{
			LotID:    lot.ID,
			Qty:      take,
			UnitCost: lot.UnitCost,
			Value:    lotValue,
		})
		value = value.Add(lotValue)
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		// lots out of sync with the running balance; refuse rather than
		// invent a cost for uncovered quantity
		return nil, shared.ErrInsufficientStock
	}

	return &IssueCosting{
		UnitCost:     value.Div(qty).Round(AvgCostScale),
		Value:        value.Round(ValueScale),
		Consumptions: consumptions,
	}, nil
}
