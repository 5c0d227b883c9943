// Package votes implements the vote ledger and the score aggregation that
// keeps the denormalized counters on posts and comments consistent with it.
package votes

import (
	"context"

	"github.com/parascope/backend/internal/models"
)

// VoteType is the direction of a vote.
type VoteType string

const (
	Upvote   VoteType = "upvote"
	Downvote VoteType = "downvote"
)

// ParseVoteType validates a wire-level vote type.
func ParseVoteType(s string) (VoteType, bool) {
	switch VoteType(s) {
	case Upvote, Downvote:
		return VoteType(s), true
	}
	return "", false
}

// TargetType identifies what kind of content a vote lands on.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ParseTargetType validates a wire-level target type.
func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(s) {
	case TargetPost, TargetComment:
		return TargetType(s), true
	}
	return "", false
}

// Outcome reports the state a vote ended up in after Apply. Voted=false means
// the vote was toggled off and Type is null on the wire.
type Outcome struct {
	Voted bool      `json:"voted"`
	Type  *VoteType `json:"type"`
}

// Store is the durable vote-record collaborator. Insert, UpdateType and Delete
// are conditional writes: they fail with a conflict error when the record no
// longer matches the state the caller read, which is how same-user races on
// one target are detected.
type Store interface {
	// Find returns the open vote for (userID, targetID, target), or nil
	// when the user has no vote on that target.
	Find(ctx context.Context, userID, targetID int, target TargetType) (*models.Vote, error)

	// Insert creates a vote, failing with a conflict error if a vote for
	// the same (user, target) pair already exists.
	Insert(ctx context.Context, v *models.Vote) error

	// UpdateType switches a vote from one type to the other, failing with
	// a conflict error if the record no longer holds `from`.
	UpdateType(ctx context.Context, id int, from, to VoteType) error

	// Delete removes a vote, failing with a conflict error if the record
	// no longer holds `current` (or is already gone).
	Delete(ctx context.Context, id int, current VoteType) error
}

// TargetChecker validates that a vote target exists before any write.
type TargetChecker interface {
	TargetExists(ctx context.Context, targetID int, target TargetType) (bool, error)
}

// Aggregator owns every mutation of the denormalized counters. Nothing else
// in the codebase may increment or decrement them.
type Aggregator interface {
	// ApplyVoteDeltas applies the supplied ±1 deltas to the target's
	// upvote/downvote counters as a single atomic update. Both halves of
	// a switch land together or not at all.
	ApplyVoteDeltas(ctx context.Context, targetID int, target TargetType, upDelta, downDelta int) error

	// IncrementCommentCount adjusts a post's comment counter.
	IncrementCommentCount(ctx context.Context, postID, delta int) error

	// IncrementReplyCount adjusts a comment's reply counter.
	IncrementReplyCount(ctx context.Context, commentID, delta int) error

	// IncrementViews bumps a post's view counter by one.
	IncrementViews(ctx context.Context, postID int) error
}
