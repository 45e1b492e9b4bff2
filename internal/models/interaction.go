package models

import (
	"time"
)

// ArticleInteraction holds one user's like/save/share state for one
// article URL. The unique index guarantees at most one row per pair.
type ArticleInteraction struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_user_article" json:"userId"`
	ArticleURL string    `gorm:"not null;index;uniqueIndex:idx_user_article" json:"articleUrl"`
	Liked      bool      `gorm:"default:false" json:"liked"`
	Saved      bool      `gorm:"default:false" json:"saved"`
	ShareCount int       `gorm:"default:0" json:"shareCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
