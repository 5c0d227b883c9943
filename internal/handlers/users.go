package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/parascope/backend/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUserProfile returns a public user profile with post/comment counts and
// karma (the summed score across the user's posts and comments).
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var postCount, commentCount int64
	h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&postCount)
	h.db.Model(&models.Comment{}).Where("author_id = ? AND is_deleted = ?", user.ID, false).Count(&commentCount)

	var postKarma, commentKarma int64
	h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).
		Select("COALESCE(SUM(upvotes - downvotes), 0)").Scan(&postKarma)
	h.db.Model(&models.Comment{}).Where("author_id = ? AND is_deleted = ?", user.ID, false).
		Select("COALESCE(SUM(upvotes - downvotes), 0)").Scan(&commentKarma)

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"post_count":    postCount,
		"comment_count": commentCount,
		"karma":         postKarma + commentKarma,
	})
}

// UpdateUserProfile updates the caller's own profile (PROTECTED)
func (h *UserHandler) UpdateUserProfile(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	h.db.Save(&user)
	c.JSON(http.StatusOK, user)
}

// GetTopics lists all topics.
func (h *UserHandler) GetTopics(c *gin.Context) {
	var topics []models.Topic
	if err := h.db.Order("name asc").Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch topics"})
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	c.JSON(http.StatusOK, topics)
}

// FollowTopic subscribes the caller to a topic (PROTECTED)
func (h *UserHandler) FollowTopic(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var topic models.Topic
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	follow := models.TopicFollow{UserID: userID, TopicID: topic.ID}
	if err := h.db.Where("user_id = ? AND topic_id = ?", userID, topic.ID).
		FirstOrCreate(&follow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow topic"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Following topic"})
}

// UnfollowTopic unsubscribes the caller from a topic (PROTECTED)
func (h *UserHandler) UnfollowTopic(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var topic models.Topic
	if err := h.db.Where("slug = ?", c.Param("slug")).First(&topic).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Topic not found"})
		return
	}

	h.db.Where("user_id = ? AND topic_id = ?", userID, topic.ID).Delete(&models.TopicFollow{})
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed topic"})
}
