package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parascope/backend/internal/apperrors"
	"github.com/parascope/backend/internal/config"
	"github.com/parascope/backend/internal/redisstore"
	"github.com/parascope/backend/internal/votes"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Vote    *VoteHandler
	User    *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers. voteLimiter may
// be nil when Redis is not configured.
func NewHandler(db *gorm.DB, cfg *config.Config, voteLimiter *redisstore.VoteLimiter, log *zap.Logger) *Handler {
	store := votes.NewGormStore(db)
	agg := votes.NewGormAggregator(db)
	ledger := votes.NewLedger(store, agg, store, log)

	return &Handler{
		Auth:    NewAuthHandler(db, cfg.JWT),
		Post:    NewPostHandler(db, agg, log),
		Comment: NewCommentHandler(db, agg, log),
		Vote:    NewVoteHandler(db, ledger, voteLimiter, log),
		User:    NewUserHandler(db),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// respondError maps an application error onto an HTTP response.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
