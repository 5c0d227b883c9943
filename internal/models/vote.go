package models

import "time"

// Vote tracks one user's vote on a post or comment. The unique index over
// (user_id, target_id, target_type) makes the ledger a partial function from
// (user, target) to vote type: inserting a second open vote for the same pair
// fails at the store.
type Vote struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	UserID     int       `gorm:"uniqueIndex:idx_votes_user_target;not null" json:"user_id"`
	TargetID   int       `gorm:"uniqueIndex:idx_votes_user_target;not null" json:"target_id"`
	TargetType string    `gorm:"uniqueIndex:idx_votes_user_target;size:16;not null" json:"target_type"` // "post" or "comment"
	Type       string    `gorm:"size:16;not null" json:"type"`                                          // "upvote" or "downvote"
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
