package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/roomboard-io/roomboard-engine/pkg/apperrors"
	"github.com/roomboard-io/roomboard-engine/pkg/models"
	"github.com/roomboard-io/roomboard-engine/pkg/repositories"
)

// OrderingEngine maintains dense, gap-free positions for columns and
// cards. Every operation locks its sibling scope (board row for
// columns, column row for cards) before reading positions or WIP
// counts, so check-then-act spans are serialized; callers are expected
// to run each operation inside one transaction (database.InTx) so the
// renumbering commits or rolls back as a unit.
type OrderingEngine struct {
	repo   repositories.OrderingRepository
	logger *zap.Logger
}

// NewOrderingEngine creates a position engine over the given store.
func NewOrderingEngine(repo repositories.OrderingRepository, logger *zap.Logger) *OrderingEngine {
	return &OrderingEngine{repo: repo, logger: logger}
}

// Append locks the scope and returns the next free trailing position
// among active siblings (0 for an empty scope).
func (e *OrderingEngine) Append(ctx context.Context, scope models.OrderScope) (int, error) {
	if err := e.repo.LockScope(ctx, scope); err != nil {
		return 0, err
	}
	return e.repo.NextPosition(ctx, scope)
}

// AppendWithCapacity is Append plus a WIP-limit check on the scope's
// column. Used when a new card is about to enter the scope.
func (e *OrderingEngine) AppendWithCapacity(ctx context.Context, scope models.OrderScope) (int, error) {
	if err := e.repo.LockScope(ctx, scope); err != nil {
		return 0, err
	}
	if err := e.checkCapacity(ctx, scope); err != nil {
		return 0, err
	}
	return e.repo.NextPosition(ctx, scope)
}

// Reorder applies the caller's full desired ordering of the scope's
// active siblings. The id list must be a total permutation of the
// active sibling set; anything else is rejected with a validation
// error and positions stay untouched. Soft-deleted siblings are packed
// after the active ones in their prior relative order so they stay
// internally consistent.
func (e *OrderingEngine) Reorder(ctx context.Context, scope models.OrderScope, orderedIDs []int64) error {
	if err := e.repo.LockScope(ctx, scope); err != nil {
		return err
	}

	siblings, err := e.repo.Siblings(ctx, scope)
	if err != nil {
		return err
	}

	placements, err := planReorder(siblings, orderedIDs)
	if err != nil {
		return err
	}

	// Move everything into a disjoint temporary range first so the
	// final assignment never collides with a not-yet-moved sibling
	// under the active-position unique index.
	tempBase := 0
	for _, s := range siblings {
		if s.Position >= tempBase {
			tempBase = s.Position + 1
		}
	}
	if err := e.repo.ShiftPositions(ctx, scope, tempBase); err != nil {
		return err
	}

	for _, p := range placements {
		if err := e.repo.SetPosition(ctx, scope, p.id, p.position); err != nil {
			return err
		}
	}
	return nil
}

// Compact renumbers the scope's active siblings to 0..n-1, closing any
// gap a soft delete or move-out left behind. Assignments run in
// ascending position order, which only ever lowers a row's position,
// so the unique index is never transiently violated.
func (e *OrderingEngine) Compact(ctx context.Context, scope models.OrderScope) error {
	siblings, err := e.repo.Siblings(ctx, scope)
	if err != nil {
		return err
	}

	next := 0
	for _, s := range siblings {
		if s.Deleted {
			continue
		}
		if s.Position != next {
			if err := e.repo.SetPosition(ctx, scope, s.ID, next); err != nil {
				return err
			}
		}
		next++
	}
	return nil
}

// Move relocates a card from its current column scope to dest: the
// destination is validated and WIP-checked, the card lands at the
// destination's trailing position, and the source scope is compacted.
// Both scopes are locked in a deterministic order so two opposite
// moves cannot deadlock.
func (e *OrderingEngine) Move(ctx context.Context, src, dest models.OrderScope, id int64) (int, error) {
	first, second := src, dest
	if lockAfter(src, dest) {
		first, second = dest, src
	}
	if err := e.repo.LockScope(ctx, first); err != nil {
		return 0, err
	}
	if err := e.repo.LockScope(ctx, second); err != nil {
		return 0, err
	}

	if err := e.checkCapacity(ctx, dest); err != nil {
		return 0, err
	}

	position, err := e.repo.NextPosition(ctx, dest)
	if err != nil {
		return 0, err
	}
	if err := e.repo.Relocate(ctx, dest, id, position); err != nil {
		return 0, err
	}
	if err := e.Compact(ctx, src); err != nil {
		return 0, err
	}
	return position, nil
}

// Restore brings a soft-deleted sibling back into the scope. The scope
// must still exist and be active, and for card scopes the WIP limit is
// re-validated: the limit may have been lowered while the row was
// archived, in which case the row stays deleted. The row never returns
// to its old position; it is appended at the tail.
func (e *OrderingEngine) Restore(ctx context.Context, scope models.OrderScope, id int64) (int, error) {
	if err := e.repo.LockScope(ctx, scope); err != nil {
		return 0, err
	}
	if err := e.checkCapacity(ctx, scope); err != nil {
		return 0, err
	}

	position, err := e.repo.NextPosition(ctx, scope)
	if err != nil {
		return 0, err
	}
	if err := e.repo.RestoreRow(ctx, scope, id, position); err != nil {
		return 0, err
	}
	return position, nil
}

// checkCapacity rejects the arrival of one more active card when the
// scope's column is at its WIP limit.
func (e *OrderingEngine) checkCapacity(ctx context.Context, scope models.OrderScope) error {
	if scope.Kind != models.OrderCards {
		return nil
	}
	capacity, err := e.repo.Capacity(ctx, scope)
	if err != nil {
		return err
	}
	if capacity.Limit != nil && capacity.Active >= *capacity.Limit {
		e.logger.Debug("WIP limit reached",
			zap.Int64("column_id", scope.ColumnID),
			zap.Int("limit", *capacity.Limit),
			zap.Int("active", capacity.Active))
		return &apperrors.WIPLimitError{ColumnTitle: capacity.Title, Limit: *capacity.Limit}
	}
	return nil
}

// lockAfter orders scopes for deadlock-free double locking.
func lockAfter(a, b models.OrderScope) bool {
	if a.Kind != b.Kind {
		return a.Kind > b.Kind
	}
	return a.ColumnID > b.ColumnID
}

type placement struct {
	id       int64
	position int
}

// planReorder validates the requested ordering against the sibling set
// and lays out final positions: active rows take 0..n-1 in the
// requested order, soft-deleted rows pack after them preserving their
// prior relative order.
func planReorder(siblings []models.OrderedRow, orderedIDs []int64) ([]placement, error) {
	if len(orderedIDs) == 0 {
		return nil, apperrors.Validation("order", "ordered id list must not be empty")
	}

	active := make(map[int64]bool, len(siblings))
	activeCount := 0
	for _, s := range siblings {
		if !s.Deleted {
			active[s.ID] = false
			activeCount++
		}
	}

	if len(orderedIDs) != activeCount {
		return nil, apperrors.Validation("order", "expected all %d active items, got %d", activeCount, len(orderedIDs))
	}

	placements := make([]placement, 0, len(siblings))
	for i, id := range orderedIDs {
		seen, ok := active[id]
		if !ok {
			return nil, apperrors.Validation("order", "id %d is not an active item in this scope", id)
		}
		if seen {
			return nil, apperrors.Validation("order", "id %d appears more than once", id)
		}
		active[id] = true
		placements = append(placements, placement{id: id, position: i})
	}

	next := len(orderedIDs)
	for _, s := range siblings {
		if s.Deleted {
			placements = append(placements, placement{id: s.ID, position: next})
			next++
		}
	}
	return placements, nil
}

