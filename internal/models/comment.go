package models

import (
	"time"
)

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ArticleURL string    `gorm:"not null;index" json:"articleUrl"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	// Denormalized author fields so listings render without a join
	Author      string    `gorm:"not null" json:"author"`
	AuthorPhoto string    `json:"authorPhoto"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	ParentID    *uint     `gorm:"index" json:"parentId"` // nil for top-level comments
	LikeCount   int       `gorm:"default:0" json:"likeCount"`
	ReplyCount  int       `gorm:"default:0" json:"replyCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CommentLike records one like per (user, comment). Comment.LikeCount is
// kept equal to the number of rows here, updated in the same transaction.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
