package models

import (
	"regexp"
	"strings"
	"time"
)

const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
	PostStatusArchived  = "archived"
)

const (
	PostTypeOpinion    = "opinion"
	PostTypeConspiracy = "conspiracy"
)

type Post struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Content       string    `json:"content"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Type          string    `gorm:"size:16;default:opinion" json:"type"`
	TopicID       *int      `json:"topic_id,omitempty"`
	TopicSlug     string    `gorm:"index" json:"topic_slug"` // denormalized for feed filters
	AuthorID      *int      `json:"author_id,omitempty"`     // nil for AI-generated posts
	AuthorName    string    `json:"author_name"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	Upvotes       int       `gorm:"default:0" json:"upvotes"`
	Downvotes     int       `gorm:"default:0" json:"downvotes"`
	CommentCount  int       `gorm:"default:0" json:"comment_count"`
	Views         int       `gorm:"default:0" json:"views"`
	Status        string    `gorm:"size:16;index;default:published" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Score is upvotes minus downvotes. It is always derived from the current
// counters and never stored, so the two cannot diverge.
func (p *Post) Score() int {
	return p.Upvotes - p.Downvotes
}

type CreatePostRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Type      string `json:"type"`
	TopicSlug string `json:"topic_slug"`
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	slugTrim     = regexp.MustCompile(`(^-+)|(-+$)`)
)

// GenerateSlug builds a URL-friendly slug from a post title.
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return slugTrim.ReplaceAllString(s, "")
}
