package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockbooks/backend/internal/domain/ledger"
	"github.com/stockbooks/backend/internal/domain/shared"
)

// maxConflictRetries bounds how often a movement is retried after losing a
// running-balance append race before the conflict is surfaced to the caller.
const maxConflictRetries = 3

// MovementRecorder receives notifications about committed movements, used
// by the telemetry layer to keep counters.
type MovementRecorder interface {
	RecordReceipt(ctx context.Context, method ledger.CostingMethod, value decimal.Decimal)
	RecordIssue(ctx context.Context, method ledger.CostingMethod, value decimal.Decimal)
	RecordConflictRetry(ctx context.Context, attempts int)
}

// CostingService is the costing engine: it computes the unit cost and value
// of every stock movement according to the configured policy and appends the
// valued result to the ledger. Each movement runs in one transaction; the
// running balance is guarded by optimistic locking and a movement that loses
// the race is retried a bounded number of times.
type CostingService struct {
	scope          TransactionScope
	itemRepo       ledger.ItemRepository
	levelRepo      ledger.StockLevelRepository
	entryRepo      ledger.LedgerEntryRepository
	lotRepo        ledger.StockLotRepository
	defaultMethod  ledger.CostingMethod
	eventPublisher shared.EventPublisher
	recorder       MovementRecorder
}

// NewCostingService creates a new CostingService. The default costing method
// is an explicit value; it is never read from ambient state mid-calculation.
func NewCostingService(
	scope TransactionScope,
	itemRepo ledger.ItemRepository,
	levelRepo ledger.StockLevelRepository,
	entryRepo ledger.LedgerEntryRepository,
	lotRepo ledger.StockLotRepository,
	defaultMethod ledger.CostingMethod,
) (*CostingService, error) {
	if !defaultMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_COSTING_METHOD", "Invalid default costing method")
	}
	return &CostingService{
		scope:         scope,
		itemRepo:      itemRepo,
		levelRepo:     levelRepo,
		entryRepo:     entryRepo,
		lotRepo:       lotRepo,
		defaultMethod: defaultMethod,
	}, nil
}

// SetEventPublisher sets the publisher for movement domain events
func (s *CostingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMovementRecorder sets the telemetry recorder
func (s *CostingService) SetMovementRecorder(recorder MovementRecorder) {
	s.recorder = recorder
}

// Receive appends an IN entry valued at qty * unitCost. Under FIFO a new
// open lot is recorded for later consumption; under weighted average the
// running average cost absorbs the receipt.
func (s *CostingService) Receive(ctx context.Context, cmd ReceiveCommand) (*MovementResult, error) {
	if cmd.Qty.LessThanOrEqual(decimal.Zero) || cmd.UnitCost.IsNegative() {
		return nil, shared.ErrInvalidQuantity
	}
	if !cmd.RefType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REF_TYPE", "Invalid reference type")
	}

	method, err := s.resolveMethod(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	var result *MovementResult
	err = s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			level, err := repos.StockLevelRepo().GetOrCreate(ctx, cmd.ItemID, cmd.WarehouseID)
			if err != nil {
				return err
			}

			value := ledger.ReceiptValue(cmd.Qty, cmd.UnitCost)
			if err := level.ApplyReceipt(cmd.Qty, value); err != nil {
				return err
			}

			entry, err := ledger.NewLedgerEntry(
				cmd.ItemID, cmd.WarehouseID,
				ledger.DirectionIn,
				cmd.Qty, cmd.UnitCost, value,
				level.OnHandQty, level.OnHandValue, level.AvgUnitCost,
				cmd.RefType, cmd.RefID, method, level.LastSeq, cmd.UserID,
			)
			if err != nil {
				return err
			}

			// every receipt opens a lot so the aging report and FIFO
			// issues share one decremented-exactly-once queue
			lot, err := ledger.NewStockLot(cmd.ItemID, cmd.WarehouseID, cmd.Qty, cmd.UnitCost)
			if err != nil {
				return err
			}

			if err := repos.EntryRepo().Append(ctx, entry); err != nil {
				return err
			}
			if err := repos.LotRepo().Save(ctx, lot); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
				return err
			}

			s.publish(ctx, ledger.NewStockReceivedEvent(entry))
			result = movementResultFrom(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordReceipt(ctx, method, result.Value)
	}
	return result, nil
}

// Issue computes the cost of the issued quantity according to the item's
// policy, appends an OUT entry and decrements the running totals. An issue
// that exceeds the on-hand quantity fails before anything is written.
func (s *CostingService) Issue(ctx context.Context, cmd IssueCommand) (*MovementResult, error) {
	if cmd.Qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if !cmd.RefType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REF_TYPE", "Invalid reference type")
	}

	method, err := s.resolveMethod(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	strategy, err := ledger.StrategyFor(method)
	if err != nil {
		return nil, err
	}

	var result *MovementResult
	err = s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			level, err := repos.StockLevelRepo().FindByKey(ctx, cmd.ItemID, cmd.WarehouseID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.ErrInsufficientStock
				}
				return err
			}
			if !level.CanIssue(cmd.Qty) {
				return shared.ErrInsufficientStock
			}

			lots, err := repos.LotRepo().FindOpen(ctx, cmd.ItemID, cmd.WarehouseID)
			if err != nil {
				return err
			}

			costing, err := strategy.CostIssue(level, cmd.Qty, lots)
			if err != nil {
				return err
			}

			// lots are decremented under both policies so the aging
			// queue always tracks remaining stock
			updated, err := consumeLots(lots, cmd.Qty)
			if err != nil {
				return err
			}

			if err := level.ApplyIssue(cmd.Qty, costing.Value); err != nil {
				return err
			}

			entry, err := ledger.NewLedgerEntry(
				cmd.ItemID, cmd.WarehouseID,
				ledger.DirectionOut,
				cmd.Qty, costing.UnitCost, costing.Value,
				level.OnHandQty, level.OnHandValue, level.AvgUnitCost,
				cmd.RefType, cmd.RefID, method, level.LastSeq, cmd.UserID,
			)
			if err != nil {
				return err
			}

			if err := repos.EntryRepo().Append(ctx, entry); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveAll(ctx, updated); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().SaveWithLock(ctx, level); err != nil {
				return err
			}

			s.publish(ctx, ledger.NewStockIssuedEvent(entry))
			result = movementResultFrom(entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.RecordIssue(ctx, method, result.Value)
	}
	return result, nil
}

// Transfer issues at the source warehouse and receives at the destination
// at the issued mix cost, under one shared reference and one transaction.
func (s *CostingService) Transfer(ctx context.Context, cmd TransferCommand) (*TransferResult, error) {
	if cmd.Qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if cmd.FromWarehouseID == cmd.ToWarehouseID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination warehouses must differ")
	}

	method, err := s.resolveMethod(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	strategy, err := ledger.StrategyFor(method)
	if err != nil {
		return nil, err
	}

	var out, in *MovementResult
	err = s.withConflictRetry(ctx, func() error {
		return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			// OUT leg at the source
			source, err := repos.StockLevelRepo().FindByKey(ctx, cmd.ItemID, cmd.FromWarehouseID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.ErrInsufficientStock
				}
				return err
			}
			if !source.CanIssue(cmd.Qty) {
				return shared.ErrInsufficientStock
			}

			lots, err := repos.LotRepo().FindOpen(ctx, cmd.ItemID, cmd.FromWarehouseID)
			if err != nil {
				return err
			}
			costing, err := strategy.CostIssue(source, cmd.Qty, lots)
			if err != nil {
				return err
			}
			updated, err := consumeLots(lots, cmd.Qty)
			if err != nil {
				return err
			}
			if err := source.ApplyIssue(cmd.Qty, costing.Value); err != nil {
				return err
			}

			outEntry, err := ledger.NewLedgerEntry(
				cmd.ItemID, cmd.FromWarehouseID,
				ledger.DirectionOut,
				cmd.Qty, costing.UnitCost, costing.Value,
				source.OnHandQty, source.OnHandValue, source.AvgUnitCost,
				ledger.RefTypeTransfer, cmd.RefID, method, source.LastSeq, cmd.UserID,
			)
			if err != nil {
				return err
			}

			// IN leg at the destination, valued at the issued mix cost so
			// no value is created or destroyed by the move
			dest, err := repos.StockLevelRepo().GetOrCreate(ctx, cmd.ItemID, cmd.ToWarehouseID)
			if err != nil {
				return err
			}
			if err := dest.ApplyReceipt(cmd.Qty, costing.Value); err != nil {
				return err
			}

			inEntry, err := ledger.NewLedgerEntry(
				cmd.ItemID, cmd.ToWarehouseID,
				ledger.DirectionIn,
				cmd.Qty, costing.UnitCost, costing.Value,
				dest.OnHandQty, dest.OnHandValue, dest.AvgUnitCost,
				ledger.RefTypeTransfer, cmd.RefID, method, dest.LastSeq, cmd.UserID,
			)
			if err != nil {
				return err
			}

			destLot, err := ledger.NewStockLot(cmd.ItemID, cmd.ToWarehouseID, cmd.Qty, costing.UnitCost)
			if err != nil {
				return err
			}

			if err := repos.EntryRepo().Append(ctx, outEntry); err != nil {
				return err
			}
			if err := repos.EntryRepo().Append(ctx, inEntry); err != nil {
				return err
			}
			if err := repos.LotRepo().SaveAll(ctx, updated); err != nil {
				return err
			}
			if err := repos.LotRepo().Save(ctx, destLot); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().SaveWithLock(ctx, source); err != nil {
				return err
			}
			if err := repos.StockLevelRepo().SaveWithLock(ctx, dest); err != nil {
				return err
			}

			s.publish(ctx, ledger.NewStockIssuedEvent(outEntry), ledger.NewStockReceivedEvent(inEntry))
			out = movementResultFrom(outEntry)
			in = movementResultFrom(inEntry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{Out: out, In: in}, nil
}

// OpeningBalance records the initial stock for a key as a normal receipt
// with the OPENING_BALANCE reference type.
func (s *CostingService) OpeningBalance(ctx context.Context, itemID, warehouseID uuid.UUID, qty, unitCost decimal.Decimal, refID string, userID uuid.UUID) (*MovementResult, error) {
	return s.Receive(ctx, ReceiveCommand{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Qty:         qty,
		UnitCost:    unitCost,
		RefType:     ledger.RefTypeOpeningBalance,
		RefID:       refID,
		UserID:      userID,
	})
}

// StockCard replays the ordered entries for a key within a date range
func (s *CostingService) StockCard(ctx context.Context, query StockCardQuery) ([]StockCardRow, error) {
	entries, err := s.entryRepo.Replay(ctx, query.ItemID, query.WarehouseID, query.From, query.To)
	if err != nil {
		return nil, err
	}
	return ToStockCardRows(entries), nil
}

// OnHand returns the latest running snapshot for a key; a key with no
// movements reports zero rather than not-found.
func (s *CostingService) OnHand(ctx context.Context, itemID, warehouseID uuid.UUID) (*StockOnHand, error) {
	level, err := s.levelRepo.FindByKey(ctx, itemID, warehouseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &StockOnHand{
				ItemID:      itemID,
				WarehouseID: warehouseID,
				OnHandQty:   decimal.Zero,
				OnHandValue: decimal.Zero,
				AvgUnitCost: decimal.Zero,
			}, nil
		}
		return nil, err
	}
	return &StockOnHand{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		OnHandQty:   level.OnHandQty,
		OnHandValue: level.OnHandValue,
		AvgUnitCost: level.AvgUnitCost,
	}, nil
}

// resolveMethod returns the costing policy for an item: the per-item
// override when set, else the system default the service was built with.
func (s *CostingService) resolveMethod(ctx context.Context, itemID uuid.UUID) (ledger.CostingMethod, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return "", err
	}
	return item.ResolveCostingMethod(s.defaultMethod), nil
}

// withConflictRetry re-runs fn for bounded optimistic-lock conflicts.
// The conflict is detected before the transaction commits, so a retry
// re-reads a fresh running balance and recomputes the movement.
func (s *CostingService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = fn()
		if err == nil {
			if s.recorder != nil && attempt > 0 {
				s.recorder.RecordConflictRetry(ctx, attempt)
			}
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

func (s *CostingService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// consumeLots deducts qty from the open lots oldest-first and returns the
// lots that changed. Each lot is decremented at most once per issue.
func consumeLots(lots []ledger.StockLot, qty decimal.Decimal) ([]*ledger.StockLot, error) {
	remaining := qty
	updated := make([]*ledger.StockLot, 0, len(lots))
	for i := range lots {
		if remaining.IsZero() {
			break
		}
		if !lots[i].IsOpen() {
			continue
		}
		taken := lots[i].Deduct(remaining)
		remaining = remaining.Sub(taken)
		updated = append(updated, &lots[i])
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, shared.ErrInsufficientStock
	}
	return updated, nil
}

func movementResultFrom(entry *ledger.LedgerEntry) *MovementResult {
	return &MovementResult{
		EntryID:        entry.ID,
		UnitCost:       entry.UnitCost,
		Value:          entry.Value,
		RunningQty:     entry.RunningQty,
		RunningValue:   entry.RunningValue,
		RunningAvgCost: entry.RunningAvgCost,
		CostingMethod:  entry.CostingMethod,
	}
}
