package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/parascope/backend/internal/metrics"
	"github.com/parascope/backend/internal/models"
	"github.com/parascope/backend/internal/ranking"
	"github.com/parascope/backend/internal/votes"
)

type PostHandler struct {
	db  *gorm.DB
	agg votes.Aggregator
	log *zap.Logger
}

func NewPostHandler(db *gorm.DB, agg votes.Aggregator, log *zap.Logger) *PostHandler {
	return &PostHandler{db: db, agg: agg, log: log}
}

// GetPosts returns the ranked feed. Query params: sort (newest|popular|top|
// trending|hot|controversial), topic, type (opinion|conspiracy), page, limit.
func (h *PostHandler) GetPosts(c *gin.Context) {
	algo, err := ranking.ParseAlgorithm(c.DefaultQuery("sort", string(ranking.Newest)))
	if err != nil {
		respondError(c, err)
		return
	}

	page, limit := parsePagination(c)

	query := h.db.Preload("Author").Where("status = ?", models.PostStatusPublished)
	if topic := c.Query("topic"); topic != "" {
		query = query.Where("topic_slug = ?", topic)
	}
	if postType := c.Query("type"); postType != "" {
		if postType != models.PostTypeOpinion && postType != models.PostTypeConspiracy {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be opinion or conspiracy"})
			return
		}
		query = query.Where("type = ?", postType)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		h.log.Error("failed to fetch posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	start := time.Now()
	ordered, err := ranking.Rank(posts, algo, time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	metrics.RankingDuration.WithLabelValues(string(algo)).Observe(time.Since(start).Seconds())

	pageItems, pagination := paginate(ordered, page, limit)
	if pageItems == nil {
		pageItems = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      pageItems,
		"pagination": pagination,
	})
}

// GetPost returns a single post by ID and bumps its view counter.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID := c.Param("id")
	var post models.Post

	if err := h.db.Preload("Author").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := h.agg.IncrementViews(c.Request.Context(), post.ID); err != nil {
		// a lost view is not worth failing the read
		h.log.Warn("failed to increment views", zap.Int("post_id", post.ID), zap.Error(err))
	} else {
		post.Views++
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost creates a new post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postType := input.Type
	if postType == "" {
		postType = models.PostTypeOpinion
	}
	if postType != models.PostTypeOpinion && postType != models.PostTypeConspiracy {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be opinion or conspiracy"})
		return
	}

	var author models.User
	if err := h.db.First(&author, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	post := models.Post{
		Title:      input.Title,
		Content:    input.Content,
		Type:       postType,
		Slug:       uniqueSlug(h.db, input.Title),
		AuthorID:   &author.ID,
		AuthorName: author.Username,
		Status:     models.PostStatusPublished,
	}

	if input.TopicSlug != "" {
		var topic models.Topic
		if err := h.db.Where("slug = ?", input.TopicSlug).First(&topic).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
			return
		}
		post.TopicID = &topic.ID
		post.TopicSlug = topic.Slug
	}

	if err := h.db.Create(&post).Error; err != nil {
		h.log.Error("failed to create post", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	h.db.Preload("Author").First(&post, post.ID)
	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID == nil || *post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	if input.Title != "" {
		post.Title = input.Title
	}
	if input.Content != "" {
		post.Content = input.Content
	}

	h.db.Save(&post)
	h.db.Preload("Author").First(&post, post.ID)

	c.JSON(http.StatusOK, post)
}

// DeletePost archives a post (PROTECTED - requires ownership)
func (h *PostHandler) DeletePost(c *gin.Context) {
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

	if post.AuthorID == nil || *post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	post.Status = models.PostStatusArchived
	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// uniqueSlug suffixes the generated slug with a counter when taken.
func uniqueSlug(db *gorm.DB, title string) string {
	base := models.GenerateSlug(title)
	if base == "" {
		base = "post"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		db.Model(&models.Post{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
