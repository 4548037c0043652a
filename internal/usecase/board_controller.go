package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
)

// SnapshotSource supplies the full product list a board is built from
type SnapshotSource interface {
	ListProducts(ctx context.Context) ([]domain.ProductRecord, error)
}

// ChangeNotifier signals when the host item collection changes
type ChangeNotifier interface {
	Subscribe() (<-chan struct{}, func())
}

// BoardController owns the current partition and applies drops to it
type BoardController struct {
	source       SnapshotSource
	synchronizer *PlacementSynchronizer
	config       BucketConfig
	logger       *zap.Logger

	mu        sync.Mutex
	partition domain.Partition
	// generation counts every replacement of partition
	generation uint64
	// snapshots counts partitions rebuilt from the store
	snapshots uint64
	// requested and applied order refreshes so an older snapshot never wins
	requested uint64
	applied   uint64
}

// NewBoardController creates a controller showing an empty board until the first refresh
func NewBoardController(
	source SnapshotSource,
	synchronizer *PlacementSynchronizer,
	config BucketConfig,
	logger *zap.Logger,
) *BoardController {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BoardController{
		source:       source,
		synchronizer: synchronizer,
		config:       config,
		logger:       logger.Named("board"),
		partition:    domain.NewPartition(config.Buckets()),
	}
}

// Partition returns a copy of the current partition
func (b *BoardController) Partition() domain.Partition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.partition.Clone()
}

// Generation returns the number of times the partition has been replaced
func (b *BoardController) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Refresh rebuilds the partition from a fresh snapshot. On fetch failure
// the previous partition is kept.
func (b *BoardController) Refresh(ctx context.Context) (domain.Partition, error) {
	b.mu.Lock()
	b.requested++
	ticket := b.requested
	b.mu.Unlock()

	items, err := b.source.ListProducts(ctx)
	if err != nil {
		b.logger.Warn("snapshot fetch failed", zap.String("kind", domain.KindOf(err)), zap.Error(err))
		return b.Partition(), fmt.Errorf("refresh board: %w", err)
	}

	next := Rebuild(items, b.config)

	b.mu.Lock()
	defer b.mu.Unlock()

	if ticket < b.applied {
		b.logger.Debug("dropping stale snapshot", zap.Uint64("ticket", ticket), zap.Uint64("applied", b.applied))
		return b.partition.Clone(), nil
	}
	b.applied = ticket
	b.snapshots++
	b.replaceLocked(next)

	b.logger.Debug("board rebuilt",
		zap.Int("source_items", len(items)),
		zap.Int("placed", next.Len()),
		zap.Int("buckets", len(next.Order)))
	return b.partition.Clone(), nil
}

// Watch refreshes once, then again after every change of notifier, until
// ctx is done. Refresh failures are logged and the previous board kept.
func (b *BoardController) Watch(ctx context.Context, notifier ChangeNotifier) error {
	changes, unsubscribe := notifier.Subscribe()
	defer unsubscribe()

	if _, err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
		b.logger.Warn("initial refresh failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if _, err := b.Refresh(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("refresh after change failed", zap.Error(err))
			}
		}
	}
}

// Drop moves itemID to destination, showing the move immediately and
// reconciling with whatever the board looks like once the store answers.
func (b *BoardController) Drop(ctx context.Context, itemID string, destination domain.BucketName) (domain.Partition, MoveOutcome, error) {
	b.mu.Lock()
	current := b.partition
	source, _, found := current.Locate(itemID)
	b.mu.Unlock()

	if !found {
		return current.Clone(), OutcomeIgnored, nil
	}

	move := domain.PlacementMove{ItemID: itemID, Source: source, Destination: destination}

	var (
		before      domain.Partition
		sourceIndex int
		previewGen  uint64
		previewSnap uint64
		previewed   bool
	)
	preview := func(next domain.Partition) {
		b.mu.Lock()
		defer b.mu.Unlock()

		// the board may have been refreshed since current was read
		_, index, _ := b.partition.Locate(itemID)
		moved, ok := ApplyMove(b.partition, move)
		if !ok {
			return
		}
		before = b.partition
		sourceIndex = index
		b.replaceLocked(moved)
		previewGen = b.generation
		previewSnap = b.snapshots
		previewed = true
	}

	_, outcome, err := b.synchronizer.Move(ctx, current, move, preview)

	b.mu.Lock()
	defer b.mu.Unlock()

	untouched := previewed && b.generation == previewGen

	switch outcome {
	case OutcomeApplied:
		if !untouched {
			b.placeLocked(itemID, destination)
		}
	case OutcomeSyncFailed:
		switch {
		case !previewed:
			// the move was never shown
		case untouched:
			b.replaceLocked(before)
		case b.snapshots != previewSnap:
			// a fresh snapshot already shows where the store has the item
			b.logger.Debug("keeping snapshot placement after failed move", zap.String("item", itemID))
		default:
			b.revertLocked(move, sourceIndex)
		}
	}

	return b.partition.Clone(), outcome, err
}

// placeLocked moves itemID to bucket if it is somewhere else on the board
func (b *BoardController) placeLocked(itemID string, bucket domain.BucketName) {
	at, _, ok := b.partition.Locate(itemID)
	if !ok || at == bucket {
		return
	}
	if moved, ok := ApplyMove(b.partition, domain.PlacementMove{ItemID: itemID, Source: at, Destination: bucket}); ok {
		b.replaceLocked(moved)
	}
}

// revertLocked puts the item of move back into its source bucket at index,
// provided it is still in the destination
func (b *BoardController) revertLocked(move domain.PlacementMove, index int) {
	at, _, ok := b.partition.Locate(move.ItemID)
	if !ok || at != move.Destination {
		return
	}
	back := domain.PlacementMove{ItemID: move.ItemID, Source: move.Destination, Destination: move.Source}
	if moved, ok := applyMoveAt(b.partition, back, index); ok {
		b.replaceLocked(moved)
	}
}

// partition values are never mutated in place, only replaced
func (b *BoardController) replaceLocked(p domain.Partition) {
	b.partition = p
	b.generation++
}
