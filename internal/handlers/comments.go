package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parascope/backend/internal/models"
	"github.com/parascope/backend/internal/threads"
	"github.com/parascope/backend/internal/votes"
)

type CommentHandler struct {
	db  *gorm.DB
	agg votes.Aggregator
	log *zap.Logger
}

func NewCommentHandler(db *gorm.DB, agg votes.Aggregator, log *zap.Logger) *CommentHandler {
	return &CommentHandler{db: db, agg: agg, log: log}
}

// GetComments returns the post's comment tree. Query param: sort
// (best|top|new|old|controversial).
func (h *CommentHandler) GetComments(c *gin.Context) {
	postID := c.Param("id")

	sortBy, err := threads.ParseSort(c.DefaultQuery("sort", string(threads.Best)))
	if err != nil {
		respondError(c, err)
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var comments []models.Comment
	if err := h.db.Where("post_id = ?", post.ID).Preload("Author").Find(&comments).Error; err != nil {
		h.log.Error("failed to fetch comments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	tree, err := threads.Build(comments, sortBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

// CreateComment creates a comment or reply on a post (PROTECTED). Replies to
// replies are flattened under the top-level ancestor, so threads stay one
// level deep.
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	postID := c.Param("id")
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var author models.User
	if err := h.db.First(&author, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	comment := models.Comment{
		Body:       input.Body,
		PostID:     post.ID,
		AuthorID:   author.ID,
		AuthorName: author.Username,
	}

	if input.ParentID != nil {
		var parent models.Comment
		if err := h.db.First(&parent, *input.ParentID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
		if parent.PostID != post.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent comment belongs to a different post"})
			return
		}
		// flatten: a reply to a reply hangs off the top-level ancestor
		parentID := parent.ID
		if parent.ParentID != nil {
			parentID = *parent.ParentID
		}
		comment.ParentID = &parentID
	}

	if err := h.db.Create(&comment).Error; err != nil {
		h.log.Error("failed to create comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	ctx := c.Request.Context()
	if err := h.agg.IncrementCommentCount(ctx, post.ID, 1); err != nil {
		h.log.Warn("failed to bump comment count", zap.Int("post_id", post.ID), zap.Error(err))
	}
	if comment.ParentID != nil {
		if err := h.agg.IncrementReplyCount(ctx, *comment.ParentID, 1); err != nil {
			h.log.Warn("failed to bump reply count", zap.Int("comment_id", *comment.ParentID), zap.Error(err))
		}
	}

	h.db.Preload("Author").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID := c.Param("commentId")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	comment.Body = input.Body
	comment.IsEdited = true
	h.db.Save(&comment)
	h.db.Preload("Author").First(&comment, comment.ID)

	c.JSON(http.StatusOK, comment)
}

// DeleteComment tombstones a comment (owner only). The record stays so
// existing replies keep their grouping parent; counters are released.
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID := c.Param("commentId")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	if comment.IsDeleted {
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
		return
	}

	comment.Body = models.DeletedCommentBody
	comment.IsDeleted = true
	if err := h.db.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx := c.Request.Context()
	if err := h.agg.IncrementCommentCount(ctx, comment.PostID, -1); err != nil {
		h.log.Warn("failed to release comment count", zap.Int("post_id", comment.PostID), zap.Error(err))
	}
	if comment.ParentID != nil {
		if err := h.agg.IncrementReplyCount(ctx, *comment.ParentID, -1); err != nil {
			h.log.Warn("failed to release reply count", zap.Int("comment_id", *comment.ParentID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
