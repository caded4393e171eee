package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/ledger"
)

// DefaultAgingBuckets are the standard age bands in days
var DefaultAgingBuckets = []struct {
	Label   string
	MinDays int
	MaxDays int // -1 = unbounded
}{
	{"0-30", 0, 30},
	{"31-60", 31, 60},
	{"61-90", 61, 90},
	{"91-180", 91, 180},
	{"180+", 181, -1},
}

// AgingService builds inventory aging reports from the persisted open-lot
// queue. Because issues decrement lots, the buckets reflect the true
// remaining age of current on-hand stock rather than of all-time receipts.
type AgingService struct {
	lotRepo ledger.StockLotRepository
}

// NewAgingService creates a new AgingService
func NewAgingService(lotRepo ledger.StockLotRepository) *AgingService {
	return &AgingService{lotRepo: lotRepo}
}

// Report computes the age-bucketed remaining quantity for one key as of now
func (s *AgingService) Report(ctx context.Context, itemID, warehouseID uuid.UUID) (*AgingReport, error) {
	return s.ReportAsOf(ctx, itemID, warehouseID, time.Now())
}

// ReportAsOf computes the aging report using the given reference time
func (s *AgingService) ReportAsOf(ctx context.Context, itemID, warehouseID uuid.UUID, asOf time.Time) (*AgingReport, error) {
	lots, err := s.lotRepo.FindOpen(ctx, itemID, warehouseID)
	if err != nil {
		return nil, err
	}

	buckets := make([]AgingBucket, len(DefaultAgingBuckets))
	for i, b := range DefaultAgingBuckets {
		buckets[i] = AgingBucket{
			Label:   b.Label,
			MinDays: b.MinDays,
			MaxDays: b.MaxDays,
			Qty:     decimal.Zero,
			Value:   decimal.Zero,
		}
	}

	for i := range lots {
		lot := &lots[i]
		if !lot.IsOpen() {
			continue
		}
		age := lot.AgeDays(asOf)
		for j := range buckets {
			if age < buckets[j].MinDays {
				continue
			}
			if buckets[j].MaxDays >= 0 && age > buckets[j].MaxDays {
				continue
			}
			buckets[j].Qty = buckets[j].Qty.Add(lot.RemainingQty)
			buckets[j].Value = buckets[j].Value.Add(lot.RemainingValue())
			buckets[j].LotCount++
			break
		}
	}

	return &AgingReport{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		AsOf:        asOf,
		Buckets:     buckets,
	}, nil
}
