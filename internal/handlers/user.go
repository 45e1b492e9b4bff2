package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"newsreader/internal/db"
	"newsreader/internal/middleware"
	"newsreader/internal/models"
	"newsreader/internal/services"
	"newsreader/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Profile returns the caller's public profile.
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	OK(c, http.StatusOK, "", gin.H{"user": user.Public()})
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

// UpdateProfile changes the display name and/or password.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.DisplayName); name != "" {
		updates["display_name"] = name
	}
	if req.Password != "" {
		if len(req.Password) < minPasswordLength {
			Fail(c, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			ServerError(c, err)
			return
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			ServerError(c, err)
			return
		}
	}

	var fresh models.User
	if err := db.DB.First(&fresh, user.ID).Error; err != nil {
		ServerError(c, err)
		return
	}
	OK(c, http.StatusOK, "Profile updated", gin.H{"user": fresh.Public()})
}

// UploadProfileImage stores a profile image and persists its URL.
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		Fail(c, http.StatusBadRequest, "No image file uploaded")
		return
	}
	defer file.Close()

	result, err := services.SaveProfileImage(user.ID, file, header)
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := db.DB.Model(user).Update("photo_url", result.URL).Error; err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Profile image uploaded", gin.H{"imageUrl": result.URL})
}
