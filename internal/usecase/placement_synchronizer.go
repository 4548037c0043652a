package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
)

// MoveOutcome reports what happened to a requested move
type MoveOutcome string

const (
	// OutcomeApplied means the store accepted the move
	OutcomeApplied MoveOutcome = "Applied"
	// OutcomeSyncFailed means the store rejected the move and the pre-move partition stands
	OutcomeSyncFailed MoveOutcome = "SyncFailed"
	// OutcomeIgnored means the move was not attempted
	OutcomeIgnored MoveOutcome = "Ignored"
)

// CategoryWriter persists an item's category
type CategoryWriter interface {
	SetCategory(ctx context.Context, id string, category domain.BucketName) error
}

// ApplyMove returns p with the item moved to the end of the destination
// bucket. p itself is not modified. ok is false when the move does not
// apply: same source and destination, unknown destination, or the item
// is not in the source bucket.
func ApplyMove(p domain.Partition, move domain.PlacementMove) (domain.Partition, bool) {
	return applyMoveAt(p, move, -1)
}

// applyMoveAt is ApplyMove inserting at index in the destination. An index
// outside the destination appends.
func applyMoveAt(p domain.Partition, move domain.PlacementMove, index int) (domain.Partition, bool) {
	if move.Source == move.Destination || !p.HasBucket(move.Destination) {
		return p, false
	}

	idx := slices.IndexFunc(p.Buckets[move.Source], func(item domain.ProductRecord) bool {
		return item.ID == move.ItemID
	})
	if idx < 0 {
		return p, false
	}

	next := p.Clone()
	item := next.Buckets[move.Source][idx]
	next.Buckets[move.Source] = slices.Delete(next.Buckets[move.Source], idx, idx+1)
	dest := next.Buckets[move.Destination]
	if index < 0 || index > len(dest) {
		index = len(dest)
	}
	next.Buckets[move.Destination] = slices.Insert(dest, index, item)
	return next, true
}

// PlacementSynchronizer applies moves and mirrors them to the remote store
type PlacementSynchronizer struct {
	store  CategoryWriter
	logger *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewPlacementSynchronizer creates a synchronizer writing through store
func NewPlacementSynchronizer(store CategoryWriter, logger *zap.Logger) *PlacementSynchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PlacementSynchronizer{
		store:    store,
		logger:   logger.Named("placement"),
		inflight: make(map[string]struct{}),
	}
}

// Move applies move to p and persists the new category.
//
// preview, if non-nil, receives the optimistic partition before the remote
// call is made. On success the moved partition is returned with
// OutcomeApplied. On remote failure p is returned unchanged with
// OutcomeSyncFailed and an error wrapping domain.ErrSyncFailed. Moves that
// do not apply return p with OutcomeIgnored and make no remote call; a move
// of an item that already has one pending is ignored with
// domain.ErrOperationInFlight.
func (s *PlacementSynchronizer) Move(
	ctx context.Context,
	p domain.Partition,
	move domain.PlacementMove,
	preview func(domain.Partition),
) (domain.Partition, MoveOutcome, error) {
	next, ok := ApplyMove(p, move)
	if !ok {
		return p, OutcomeIgnored, nil
	}

	if !s.acquire(move.ItemID) {
		return p, OutcomeIgnored, fmt.Errorf("%w: item %s", domain.ErrOperationInFlight, move.ItemID)
	}
	defer s.release(move.ItemID)

	if preview != nil {
		preview(next)
	}

	if err := s.store.SetCategory(ctx, move.ItemID, move.Destination); err != nil {
		s.logger.Warn("category sync failed, rolling back",
			zap.String("item", move.ItemID),
			zap.String("from", string(move.Source)),
			zap.String("to", string(move.Destination)),
			zap.Error(err))
		return p, OutcomeSyncFailed, fmt.Errorf("%w: %s to %s: %w", domain.ErrSyncFailed, move.ItemID, move.Destination, err)
	}

	s.logger.Info("category updated",
		zap.String("item", move.ItemID),
		zap.String("from", string(move.Source)),
		zap.String("to", string(move.Destination)))
	return next, OutcomeApplied, nil
}

// Pending reports whether a move of itemID is awaiting the remote store
func (s *PlacementSynchronizer) Pending(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[itemID]
	return ok
}

func (s *PlacementSynchronizer) acquire(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[itemID]; busy {
		return false
	}
	s.inflight[itemID] = struct{}{}
	return true
}

func (s *PlacementSynchronizer) release(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, itemID)
}
