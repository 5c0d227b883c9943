package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parascope/backend/internal/models"
	"github.com/parascope/backend/internal/redisstore"
	"github.com/parascope/backend/internal/votes"
)

type VoteHandler struct {
	db      *gorm.DB
	ledger  *votes.Ledger
	limiter *redisstore.VoteLimiter // nil when redis is not configured
	log     *zap.Logger
}

func NewVoteHandler(db *gorm.DB, ledger *votes.Ledger, limiter *redisstore.VoteLimiter, log *zap.Logger) *VoteHandler {
	return &VoteHandler{db: db, ledger: ledger, limiter: limiter, log: log}
}

// Vote applies an upvote/downvote to a post or comment (PROTECTED).
// Voting the same direction twice removes the vote; voting the opposite
// direction switches it.
func (h *VoteHandler) Vote(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		TargetID   int    `json:"target_id" binding:"required"`
		TargetType string `json:"target_type" binding:"required,oneof=post comment"`
		Type       string `json:"type" binding:"required,oneof=upvote downvote"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id, target_type (post|comment) and type (upvote|downvote) are required"})
		return
	}

	target, _ := votes.ParseTargetType(input.TargetType)
	voteType, _ := votes.ParseVoteType(input.Type)

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(c.Request.Context(), userID)
		if err != nil {
			// a broken limiter should not block voting
			h.log.Warn("vote rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many votes, slow down"})
			return
		}
	}

	outcome, err := h.ledger.Apply(c.Request.Context(), userID, input.TargetID, target, voteType)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"voted": outcome.Voted,
		"type":  outcome.Type,
	}
	h.echoCounters(c, input.TargetID, target, resp)

	c.JSON(http.StatusOK, resp)
}

// Status returns the caller's current vote on a target (PROTECTED).
func (h *VoteHandler) Status(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, err := strconv.Atoi(c.Query("target_id"))
	if err != nil || targetID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id is required"})
		return
	}
	target, ok := votes.ParseTargetType(c.DefaultQuery("target_type", "post"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_type must be post or comment"})
		return
	}

	outcome, err := h.ledger.Status(c.Request.Context(), userID, targetID, target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// echoCounters adds the target's current counters to the response so clients
// can update without a second read.
func (h *VoteHandler) echoCounters(c *gin.Context, targetID int, target votes.TargetType, resp gin.H) {
	switch target {
	case votes.TargetPost:
		var post models.Post
		if err := h.db.First(&post, targetID).Error; err == nil {
			resp["upvotes"] = post.Upvotes
			resp["downvotes"] = post.Downvotes
			resp["score"] = post.Score()
		}
	case votes.TargetComment:
		var comment models.Comment
		if err := h.db.First(&comment, targetID).Error; err == nil {
			resp["upvotes"] = comment.Upvotes
			resp["downvotes"] = comment.Downvotes
			resp["score"] = comment.Score()
		}
	}
}
