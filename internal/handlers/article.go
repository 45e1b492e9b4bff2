package handlers

import (
	"errors"
	"net/http"

	"newsreader/internal/db"
	"newsreader/internal/middleware"
	"newsreader/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ArticleHandler struct{}

func NewArticleHandler() *ArticleHandler {
	return &ArticleHandler{}
}

// ensureArticle lazily creates the cached article row for a URL.
func ensureArticle(tx *gorm.DB, articleURL string) error {
	var article models.Article
	return tx.Where(models.Article{URL: articleURL}).FirstOrCreate(&article).Error
}

// interactionFor loads or initializes the caller's row for an article.
func interactionFor(userID uint, articleURL string) (*models.ArticleInteraction, error) {
	var interaction models.ArticleInteraction
	err := db.DB.Where("user_id = ? AND article_url = ?", userID, articleURL).First(&interaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		interaction = models.ArticleInteraction{UserID: userID, ArticleURL: articleURL}
		return &interaction, nil
	}
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

type likeRequest struct {
	ArticleURL string `json:"articleUrl"`
	IsLiked    *bool  `json:"isLiked"`
}

// SetLiked upserts the caller's liked flag for an article. Replaying the
// same boolean is a state-wise no-op.
func (h *ArticleHandler) SetLiked(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleURL == "" || req.IsLiked == nil {
		Fail(c, http.StatusBadRequest, "articleUrl and isLiked are required")
		return
	}

	interaction, err := interactionFor(user.ID, req.ArticleURL)
	if err != nil {
		ServerError(c, err)
		return
	}

	interaction.Liked = *req.IsLiked
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureArticle(tx, req.ArticleURL); err != nil {
			return err
		}
		return tx.Save(interaction).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	message := "Article unliked"
	if interaction.Liked {
		message = "Article liked"
	}
	OK(c, http.StatusOK, message, gin.H{"isLiked": interaction.Liked})
}

type saveRequest struct {
	ArticleURL string `json:"articleUrl"`
	IsSaved    *bool  `json:"isSaved"`
}

// SetSaved upserts the caller's bookmark flag for an article.
func (h *ArticleHandler) SetSaved(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleURL == "" || req.IsSaved == nil {
		Fail(c, http.StatusBadRequest, "articleUrl and isSaved are required")
		return
	}

	interaction, err := interactionFor(user.ID, req.ArticleURL)
	if err != nil {
		ServerError(c, err)
		return
	}

	interaction.Saved = *req.IsSaved
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureArticle(tx, req.ArticleURL); err != nil {
			return err
		}
		return tx.Save(interaction).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	message := "Article removed from saved"
	if interaction.Saved {
		message = "Article saved"
	}
	OK(c, http.StatusOK, message, gin.H{"isSaved": interaction.Saved})
}

type shareRequest struct {
	ArticleURL string `json:"articleUrl"`
}

// RecordShare bumps the caller's share counter. Anonymous shares are
// acknowledged but not persisted.
func (h *ArticleHandler) RecordShare(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleURL == "" {
		Fail(c, http.StatusBadRequest, "articleUrl is required")
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		OK(c, http.StatusOK, "Article shared", nil)
		return
	}

	interaction, err := interactionFor(user.ID, req.ArticleURL)
	if err != nil {
		ServerError(c, err)
		return
	}

	interaction.ShareCount++
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := ensureArticle(tx, req.ArticleURL); err != nil {
			return err
		}
		return tx.Save(interaction).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Article shared", gin.H{"shareCount": interaction.ShareCount})
}

// Stats aggregates like/save/share totals over all interaction rows for
// an article, plus the caller's own flags when authenticated.
func (h *ArticleHandler) Stats(c *gin.Context) {
	articleURL := c.Query("url")
	if articleURL == "" {
		Fail(c, http.StatusBadRequest, "url query parameter is required")
		return
	}

	var interactions []models.ArticleInteraction
	if err := db.DB.Where("article_url = ?", articleURL).Find(&interactions).Error; err != nil {
		ServerError(c, err)
		return
	}

	stats := gin.H{}
	totalLikes, totalSaves, totalShares := 0, 0, 0
	for _, i := range interactions {
		if i.Liked {
			totalLikes++
		}
		if i.Saved {
			totalSaves++
		}
		totalShares += i.ShareCount
	}
	stats["totalLikes"] = totalLikes
	stats["totalSaves"] = totalSaves
	stats["totalShares"] = totalShares

	var commentCount int64
	db.DB.Model(&models.Comment{}).Where("article_url = ?", articleURL).Count(&commentCount)
	stats["commentCount"] = commentCount

	if user := middleware.CurrentUser(c); user != nil {
		userLiked, userSaved := false, false
		for _, i := range interactions {
			if i.UserID == user.ID {
				userLiked = i.Liked
				userSaved = i.Saved
				break
			}
		}
		stats["userLiked"] = userLiked
		stats["userSaved"] = userSaved
	}

	c.JSON(http.StatusOK, stats)
}

// Saved lists the caller's bookmarked article URLs, most recent first.
func (h *ArticleHandler) Saved(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var interactions []models.ArticleInteraction
	if err := db.DB.Where("user_id = ? AND saved = ?", user.ID, true).
		Order("updated_at DESC").Find(&interactions).Error; err != nil {
		ServerError(c, err)
		return
	}

	type savedArticle struct {
		ArticleURL string `json:"articleUrl"`
		SavedAt    string `json:"savedAt"`
	}
	saved := make([]savedArticle, 0, len(interactions))
	for _, i := range interactions {
		saved = append(saved, savedArticle{
			ArticleURL: i.ArticleURL,
			SavedAt:    i.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, saved)
}
