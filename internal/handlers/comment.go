package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"newsreader/internal/db"
	"newsreader/internal/middleware"
	"newsreader/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// commentView is a comment plus the caller-dependent fields.
type commentView struct {
	models.Comment
	IsLiked bool          `json:"isLiked"`
	Replies []commentView `json:"replies,omitempty"`
}

// articleParam decodes the :articleId path segment, which clients send
// URL-encoded since article identifiers are typically full URLs.
func articleParam(c *gin.Context) (string, bool) {
	raw := c.Param("articleId")
	decoded, err := url.PathUnescape(raw)
	if err != nil || decoded == "" {
		return "", false
	}
	return decoded, true
}

// likedSet returns the ids of the given comments that userID has liked.
func likedSet(userID uint, commentIDs []uint) map[uint]bool {
	liked := make(map[uint]bool)
	if len(commentIDs) == 0 {
		return liked
	}
	var likes []models.CommentLike
	db.DB.Where("user_id = ? AND comment_id IN ?", userID, commentIDs).Find(&likes)
	for _, l := range likes {
		liked[l.CommentID] = true
	}
	return liked
}

// List returns top-level comments newest-first, each with its replies
// oldest-first. isLiked is filled for authenticated callers.
func (h *CommentHandler) List(c *gin.Context) {
	articleURL, ok := articleParam(c)
	if !ok {
		Fail(c, http.StatusBadRequest, "Invalid article identifier")
		return
	}

	var parents []models.Comment
	if err := db.DB.Where("article_url = ? AND parent_id IS NULL", articleURL).
		Order("created_at DESC").Find(&parents).Error; err != nil {
		ServerError(c, err)
		return
	}

	parentIDs := make([]uint, len(parents))
	for i, p := range parents {
		parentIDs[i] = p.ID
	}

	var replies []models.Comment
	if len(parentIDs) > 0 {
		if err := db.DB.Where("parent_id IN ?", parentIDs).
			Order("created_at ASC").Find(&replies).Error; err != nil {
			ServerError(c, err)
			return
		}
	}

	liked := map[uint]bool{}
	if user := middleware.CurrentUser(c); user != nil {
		all := parentIDs
		for _, r := range replies {
			all = append(all, r.ID)
		}
		liked = likedSet(user.ID, all)
	}

	replyMap := make(map[uint][]commentView)
	for _, r := range replies {
		replyMap[*r.ParentID] = append(replyMap[*r.ParentID], commentView{
			Comment: r,
			IsLiked: liked[r.ID],
		})
	}

	views := make([]commentView, 0, len(parents))
	for _, p := range parents {
		views = append(views, commentView{
			Comment: p,
			IsLiked: liked[p.ID],
			Replies: replyMap[p.ID],
		})
	}

	c.JSON(http.StatusOK, views)
}

type commentRequest struct {
	Text string `json:"text"`
}

// Create posts a top-level comment on an article.
func (h *CommentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	articleURL, ok := articleParam(c)
	if !ok {
		Fail(c, http.StatusBadRequest, "Invalid article identifier")
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		Fail(c, http.StatusBadRequest, "Comment text must not be empty")
		return
	}

	comment := models.Comment{
		ArticleURL:  articleURL,
		UserID:      user.ID,
		Author:      authorName(user),
		AuthorPhoto: user.PhotoURL,
		Text:        req.Text,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		ServerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentView{Comment: comment, Replies: []commentView{}})
}

// Reply posts a reply below a top-level comment. The parent's reply
// count is maintained in the same transaction.
func (h *CommentHandler) Reply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	parentID, err := strconv.Atoi(c.Param("parentId"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid comment id")
		return
	}

	var req commentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil || strings.TrimSpace(req.Text) == "" {
		Fail(c, http.StatusBadRequest, "Reply text must not be empty")
		return
	}

	var parent models.Comment
	if err := db.DB.First(&parent, parentID).Error; err != nil {
		Fail(c, http.StatusNotFound, "Parent comment not found")
		return
	}
	if parent.ParentID != nil {
		Fail(c, http.StatusBadRequest, "Replies cannot be nested")
		return
	}

	pid := parent.ID
	reply := models.Comment{
		ArticleURL:  parent.ArticleURL,
		UserID:      user.ID,
		Author:      authorName(user),
		AuthorPhoto: user.PhotoURL,
		Text:        req.Text,
		ParentID:    &pid,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
			UpdateColumn("reply_count", gorm.Expr("reply_count + 1")).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentView{Comment: reply})
}

// ToggleLike flips the caller's like on a comment. The like row and the
// denormalized counter move together inside one transaction, and the
// counter never goes negative.
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid comment id")
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Comment not found")
		return
	}

	var isLiked bool
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentLike
		findErr := tx.Where("user_id = ? AND comment_id = ?", user.ID, comment.ID).First(&existing).Error
		if findErr == nil {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			isLiked = false
			return tx.Model(&models.Comment{}).Where("id = ? AND like_count > 0", comment.ID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		like := models.CommentLike{UserID: user.ID, CommentID: comment.ID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		isLiked = true
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	var likeCount int64
	db.DB.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&likeCount)

	message := "Comment unliked"
	if isLiked {
		message = "Comment liked"
	}
	OK(c, http.StatusOK, message, gin.H{
		"isLiked":   isLiked,
		"likeCount": likeCount,
	})
}

// Update edits a comment's text; only the owner may edit.
func (h *CommentHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid comment id")
		return
	}

	var req commentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil || strings.TrimSpace(req.Text) == "" {
		Fail(c, http.StatusBadRequest, "Comment text must not be empty")
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Comment not found")
		return
	}
	if comment.UserID != user.ID {
		Fail(c, http.StatusForbidden, "You are not allowed to edit this comment")
		return
	}

	if err := db.DB.Model(&comment).Update("text", req.Text).Error; err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Comment updated", gin.H{"comment": comment})
}

// Delete removes a comment. Deleting a parent cascades to its replies
// and their likes; deleting a reply decrements the parent's reply count.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, "Invalid comment id")
		return
	}

	var comment models.Comment
	if err := db.DB.First(&comment, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "Comment not found")
		return
	}
	if comment.UserID != user.ID {
		Fail(c, http.StatusForbidden, "You are not allowed to delete this comment")
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if comment.ParentID == nil {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			affected := append(replyIDs, comment.ID)
			if err := tx.Where("comment_id IN ?", affected).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Comment{}).Where("id = ? AND reply_count > 0", *comment.ParentID).
				UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Comment deleted", nil)
}

func authorName(user *models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Email
}
