package votes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/metrics"
	"github.com/parascope/backend/internal/models"
	"github.com/parascope/backend/internal/retry"
)

// conflictAttempts bounds retries of the read-then-decide step when two
// requests from the same user race on the same target (double-click).
const conflictAttempts = 3

// Ledger enforces "at most one open vote per user per target" and drives the
// toggle/switch/remove state machine. Every Apply makes exactly one aggregator
// call carrying the signed counter deltas for the transition it performed.
type Ledger struct {
	store   Store
	agg     Aggregator
	targets TargetChecker
	log     *zap.Logger
}

// NewLedger wires a ledger from its collaborators.
func NewLedger(store Store, agg Aggregator, targets TargetChecker, log *zap.Logger) *Ledger {
	return &Ledger{store: store, agg: agg, targets: targets, log: log}
}

// Apply records a vote request and returns the resulting vote state.
//
// Transitions:
//
//	none      + upvote   -> voted up      (+1 up)
//	voted up  + upvote   -> none          (-1 up)            toggle off
//	voted up  + downvote -> voted down    (-1 up, +1 down)   switch
//
// and symmetrically for downvotes. Conflicting conditional writes are retried
// transparently before surfacing a conflict to the caller.
func (l *Ledger) Apply(ctx context.Context, userID, targetID int, target TargetType, requested VoteType) (Outcome, error) {
	exists, err := l.targets.TargetExists(ctx, targetID, target)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		return Outcome{}, apperrors.NotFound(string(target) + " not found")
	}

	policy := retry.Policy{
		MaxAttempts:    conflictAttempts,
		InitialBackoff: 5 * time.Millisecond,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			metrics.VoteConflictsTotal.Inc()
			l.log.Debug("vote write conflict, retrying",
				zap.Int("attempt", attempt),
				zap.Int("user_id", userID),
				zap.Int("target_id", targetID),
				zap.Error(err))
		},
	}

	isConflict := func(err error) bool {
		return apperrors.IsKind(err, apperrors.KindConflict)
	}

	var transition string
	outcome, err := retry.Do(ctx, policy, isConflict, func() (Outcome, error) {
		return l.applyOnce(ctx, userID, targetID, target, requested, &transition)
	})
	if err != nil {
		return Outcome{}, err
	}

	metrics.VotesTotal.WithLabelValues(string(target), transition).Inc()

	return outcome, nil
}

func (l *Ledger) applyOnce(ctx context.Context, userID, targetID int, target TargetType, requested VoteType, transition *string) (Outcome, error) {
	existing, err := l.store.Find(ctx, userID, targetID, target)
	if err != nil {
		return Outcome{}, err
	}

	// No open vote: create one and credit the requested counter.
	if existing == nil {
		v := &models.Vote{
			UserID:     userID,
			TargetID:   targetID,
			TargetType: string(target),
			Type:       string(requested),
		}
		if err := l.store.Insert(ctx, v); err != nil {
			return Outcome{}, err
		}
		if err := l.applyDeltas(ctx, targetID, target, requested, 1); err != nil {
			return Outcome{}, err
		}
		*transition = "create"
		t := requested
		return Outcome{Voted: true, Type: &t}, nil
	}

	current := VoteType(existing.Type)

	// Same type again: toggle off, returning the counter to its prior value.
	if current == requested {
		if err := l.store.Delete(ctx, existing.ID, current); err != nil {
			return Outcome{}, err
		}
		if err := l.applyDeltas(ctx, targetID, target, current, -1); err != nil {
			return Outcome{}, err
		}
		*transition = "remove"
		return Outcome{Voted: false, Type: nil}, nil
	}

	// Opposite type: switch. The two deltas travel in one aggregator call so
	// a concurrent reader can never see a half-applied switch.
	if err := l.store.UpdateType(ctx, existing.ID, current, requested); err != nil {
		return Outcome{}, err
	}
	upDelta, downDelta := -1, 1
	if requested == Upvote {
		upDelta, downDelta = 1, -1
	}
	if err := l.agg.ApplyVoteDeltas(ctx, targetID, target, upDelta, downDelta); err != nil {
		return Outcome{}, err
	}
	*transition = "switch"
	t := requested
	return Outcome{Voted: true, Type: &t}, nil
}

func (l *Ledger) applyDeltas(ctx context.Context, targetID int, target TargetType, typ VoteType, delta int) error {
	if typ == Upvote {
		return l.agg.ApplyVoteDeltas(ctx, targetID, target, delta, 0)
	}
	return l.agg.ApplyVoteDeltas(ctx, targetID, target, 0, delta)
}

// Status returns the caller's current vote on a target, if any.
func (l *Ledger) Status(ctx context.Context, userID, targetID int, target TargetType) (Outcome, error) {
	existing, err := l.store.Find(ctx, userID, targetID, target)
	if err != nil {
		return Outcome{}, err
	}
	if existing == nil {
		return Outcome{Voted: false, Type: nil}, nil
	}
	t := VoteType(existing.Type)
	return Outcome{Voted: true, Type: &t}, nil
}
