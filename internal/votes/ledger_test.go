package votes

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/models"
)

// fakeStore is an in-memory Store and TargetChecker with the same conditional
// write semantics as the database-backed one.
type fakeStore struct {
	mu              sync.Mutex
	nextID          int
	votes           map[string]*models.Vote
	missingTargets  map[int]bool
	insertConflicts int // fail this many Inserts with a conflict before succeeding
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		votes:          make(map[string]*models.Vote),
		missingTargets: make(map[int]bool),
	}
}

func voteKey(userID, targetID int, target TargetType) string {
	return fmt.Sprintf("%d|%d|%s", userID, targetID, target)
}

func (s *fakeStore) Find(_ context.Context, userID, targetID int, target TargetType) (*models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.votes[voteKey(userID, targetID, target)]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (s *fakeStore) Insert(_ context.Context, v *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertConflicts > 0 {
		s.insertConflicts--
		return apperrors.Conflict("vote already exists")
	}
	key := voteKey(v.UserID, v.TargetID, TargetType(v.TargetType))
	if _, ok := s.votes[key]; ok {
		return apperrors.Conflict("vote already exists")
	}
	s.nextID++
	v.ID = s.nextID
	copied := *v
	s.votes[key] = &copied
	return nil
}

func (s *fakeStore) UpdateType(_ context.Context, id int, from, to VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.votes {
		if v.ID == id {
			if VoteType(v.Type) != from {
				return apperrors.Conflict("vote changed concurrently")
			}
			v.Type = string(to)
			return nil
		}
	}
	return apperrors.Conflict("vote changed concurrently")
}

func (s *fakeStore) Delete(_ context.Context, id int, current VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, v := range s.votes {
		if v.ID == id {
			if VoteType(v.Type) != current {
				return apperrors.Conflict("vote changed concurrently")
			}
			delete(s.votes, key)
			return nil
		}
	}
	return apperrors.Conflict("vote changed concurrently")
}

func (s *fakeStore) TargetExists(_ context.Context, targetID int, _ TargetType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.missingTargets[targetID], nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.votes)
}

// fakeAggregator tracks net counter deltas and how many times it was called.
type fakeAggregator struct {
	mu        sync.Mutex
	calls     int
	upvotes   int
	downvotes int
}

func (a *fakeAggregator) ApplyVoteDeltas(_ context.Context, _ int, _ TargetType, upDelta, downDelta int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.upvotes += upDelta
	a.downvotes += downDelta
	return nil
}

func (a *fakeAggregator) IncrementCommentCount(context.Context, int, int) error { return nil }
func (a *fakeAggregator) IncrementReplyCount(context.Context, int, int) error   { return nil }
func (a *fakeAggregator) IncrementViews(context.Context, int) error             { return nil }

func (a *fakeAggregator) snapshot() (calls, up, down int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls, a.upvotes, a.downvotes
}

func newTestLedger() (*Ledger, *fakeStore, *fakeAggregator) {
	store := newFakeStore()
	agg := &fakeAggregator{}
	return NewLedger(store, agg, store, zap.NewNop()), store, agg
}

func TestApplyCreatesVote(t *testing.T) {
	ledger, store, agg := newTestLedger()

	out, err := ledger.Apply(context.Background(), 1, 10, TargetPost, Upvote)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	require.NotNil(t, out.Type)
	assert.Equal(t, Upvote, *out.Type)

	calls, up, down := agg.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, up)
	assert.Equal(t, 0, down)
	assert.Equal(t, 1, store.count())
}

func TestApplyToggleOff(t *testing.T) {
	ledger, store, agg := newTestLedger()
	ctx := context.Background()

	_, err := ledger.Apply(ctx, 1, 10, TargetPost, Downvote)
	require.NoError(t, err)

	out, err := ledger.Apply(ctx, 1, 10, TargetPost, Downvote)
	require.NoError(t, err)
	assert.False(t, out.Voted)
	assert.Nil(t, out.Type)

	calls, up, down := agg.snapshot()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, up)
	assert.Equal(t, 0, down, "toggle off returns counters to their prior value")
	assert.Equal(t, 0, store.count())

	// a third request starts a fresh vote rather than resurrecting the old one
	out, err = ledger.Apply(ctx, 1, 10, TargetPost, Downvote)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	_, _, down = agg.snapshot()
	assert.Equal(t, 1, down)
}

func TestApplySwitchIsOneAggregatorCall(t *testing.T) {
	ledger, store, agg := newTestLedger()
	ctx := context.Background()

	_, err := ledger.Apply(ctx, 1, 10, TargetComment, Upvote)
	require.NoError(t, err)

	out, err := ledger.Apply(ctx, 1, 10, TargetComment, Downvote)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	require.NotNil(t, out.Type)
	assert.Equal(t, Downvote, *out.Type)

	calls, up, down := agg.snapshot()
	assert.Equal(t, 2, calls, "switch delivers both deltas in a single call")
	assert.Equal(t, 0, up)
	assert.Equal(t, 1, down)
	assert.Equal(t, 1, store.count(), "switch keeps exactly one open vote")
}

func TestApplySwitchBackAndForth(t *testing.T) {
	ledger, _, agg := newTestLedger()
	ctx := context.Background()

	_, err := ledger.Apply(ctx, 1, 10, TargetPost, Upvote)
	require.NoError(t, err)
	_, err = ledger.Apply(ctx, 1, 10, TargetPost, Downvote)
	require.NoError(t, err)
	out, err := ledger.Apply(ctx, 1, 10, TargetPost, Upvote)
	require.NoError(t, err)

	require.NotNil(t, out.Type)
	assert.Equal(t, Upvote, *out.Type)

	_, up, down := agg.snapshot()
	assert.Equal(t, 1, up)
	assert.Equal(t, 0, down)
}

func TestApplyMissingTarget(t *testing.T) {
	ledger, store, agg := newTestLedger()
	store.missingTargets[99] = true

	_, err := ledger.Apply(context.Background(), 1, 99, TargetPost, Upvote)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	calls, _, _ := agg.snapshot()
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, store.count())
}

func TestApplyRetriesConflict(t *testing.T) {
	ledger, store, agg := newTestLedger()
	store.insertConflicts = 1

	out, err := ledger.Apply(context.Background(), 1, 10, TargetPost, Upvote)
	require.NoError(t, err, "a single conflict is absorbed by the retry")
	assert.True(t, out.Voted)

	calls, up, _ := agg.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, up)
	assert.Equal(t, 1, store.count())
}

func TestApplyConflictExhaustsRetries(t *testing.T) {
	ledger, store, agg := newTestLedger()
	store.insertConflicts = conflictAttempts

	_, err := ledger.Apply(context.Background(), 1, 10, TargetPost, Upvote)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	calls, _, _ := agg.snapshot()
	assert.Equal(t, 0, calls)
}

func TestApplyConcurrentDistinctUsers(t *testing.T) {
	ledger, store, agg := newTestLedger()
	ctx := context.Background()

	const users = 100
	var wg sync.WaitGroup
	errs := make(chan error, users)
	wg.Add(users)
	for u := 1; u <= users; u++ {
		go func(userID int) {
			defer wg.Done()
			_, err := ledger.Apply(ctx, userID, 10, TargetPost, Upvote)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	calls, up, down := agg.snapshot()
	assert.Equal(t, users, calls)
	assert.Equal(t, users, up)
	assert.Equal(t, 0, down)
	assert.Equal(t, users, store.count())
}

func TestStatus(t *testing.T) {
	ledger, _, _ := newTestLedger()
	ctx := context.Background()

	out, err := ledger.Status(ctx, 1, 10, TargetPost)
	require.NoError(t, err)
	assert.False(t, out.Voted)
	assert.Nil(t, out.Type)

	_, err = ledger.Apply(ctx, 1, 10, TargetPost, Upvote)
	require.NoError(t, err)

	out, err = ledger.Status(ctx, 1, 10, TargetPost)
	require.NoError(t, err)
	assert.True(t, out.Voted)
	require.NotNil(t, out.Type)
	assert.Equal(t, Upvote, *out.Type)
}

func TestParseVoteType(t *testing.T) {
	tests := []struct {
		in   string
		want VoteType
		ok   bool
	}{
		{"upvote", Upvote, true},
		{"downvote", Downvote, true},
		{"sideways", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseVoteType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTargetType(t *testing.T) {
	got, ok := ParseTargetType("post")
	assert.True(t, ok)
	assert.Equal(t, TargetPost, got)

	got, ok = ParseTargetType("comment")
	assert.True(t, ok)
	assert.Equal(t, TargetComment, got)

	_, ok = ParseTargetType("user")
	assert.False(t, ok)
}
