package models

import "time"

// DeletedCommentBody replaces the body of tombstoned comments. The record
// itself stays in place so replies keep a stable parent to group under.
const DeletedCommentBody = "[deleted]"

type Comment struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Body       string    `gorm:"not null" json:"body"`
	PostID     int       `gorm:"index" json:"post_id"`
	AuthorID   int       `json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorName string    `json:"author_name"`
	ParentID   *int      `gorm:"index" json:"parent_id,omitempty"`
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	ReplyCount int       `gorm:"default:0" json:"reply_count"`
	IsEdited   bool      `json:"is_edited"`
	IsDeleted  bool      `gorm:"index" json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Score is upvotes minus downvotes, derived from current counters.
func (c *Comment) Score() int {
	return c.Upvotes - c.Downvotes
}

type CreateCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *int   `json:"parent_id,omitempty"`
}
