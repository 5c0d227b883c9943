package models

import "time"

// TopicFollow records a user following a topic.
type TopicFollow struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:idx_topic_follows;not null" json:"user_id"`
	TopicID   int       `gorm:"uniqueIndex:idx_topic_follows;not null" json:"topic_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Topic     Topic     `gorm:"foreignKey:TopicID" json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}
