package handlers

import (
	"net/http"

	"newsreader/internal/services"

	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	news *services.NewsService
}

func NewNewsHandler() *NewsHandler {
	return &NewsHandler{news: services.GetNewsService()}
}

// Category proxies the upstream headline feed for an allow-listed
// category. The upstream body is passed through untouched.
func (h *NewsHandler) Category(c *gin.Context) {
	category := c.Param("category")
	if !services.CategoryAllowed(category) {
		Fail(c, http.StatusBadRequest, "Invalid category")
		return
	}

	body, err := h.news.FetchCategory(category)
	if err != nil {
		ServerError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// Extract fetches a third-party article page and returns its readable,
// sanitized body.
func (h *NewsHandler) Extract(c *gin.Context) {
	articleURL := c.Query("url")
	if articleURL == "" {
		Fail(c, http.StatusBadRequest, "url query parameter is required")
		return
	}

	article, err := h.news.ExtractArticle(articleURL)
	if err != nil {
		ServerError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}
