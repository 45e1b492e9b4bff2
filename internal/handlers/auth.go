package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"newsreader/internal/config"
	"newsreader/internal/db"
	"newsreader/internal/middleware"
	"newsreader/internal/models"
	"newsreader/internal/services"
	"newsreader/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthHandler struct {
	mailService  *services.MailService
	tokenService *services.TokenService
	pending      *services.PendingStore
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		mailService:  services.GetMailService(),
		tokenService: services.GetTokenService(),
		pending:      services.GetPendingStore(),
	}
}

// tokenResponse renders the access+refresh pair plus the public profile.
func (h *AuthHandler) tokenResponse(c *gin.Context, code int, message string, user *models.User) {
	access, refresh, err := h.tokenService.GeneratePair(user.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	OK(c, code, message, gin.H{
		"token":        access,
		"refreshToken": refresh,
		"user":         user.Public(),
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register validates the payload and parks the registration in the
// pending store until the emailed OTP is verified. No user row is
// written here.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" || req.Email == "" || req.Password == "" {
		Fail(c, http.StatusBadRequest, "All fields are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		Fail(c, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		Fail(c, http.StatusBadRequest, "Email is already registered")
		return
	}
	if err := db.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		Fail(c, http.StatusBadRequest, "Username is already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		ServerError(c, err)
		return
	}

	code := h.pending.Put(req.Username, req.Email, hash)
	h.mailService.SendVerificationEmail(req.Email, code)

	OK(c, http.StatusOK, "Registration received. Check your email for the verification code.", gin.H{
		"email": req.Email,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify consumes the OTP and promotes the pending registration to a
// persisted, verified user. The code works exactly once.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	reg := h.pending.Verify(req.Email, req.Code)
	if reg == nil {
		Fail(c, http.StatusBadRequest, "Verification code is invalid or expired")
		return
	}

	now := time.Now()
	user := models.User{
		Username:        reg.Username,
		DisplayName:     reg.Username,
		Email:           reg.Email,
		Password:        reg.PasswordHash,
		IsEmailVerified: true,
		LastLogin:       &now,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// The name was taken while the registration sat pending
		Fail(c, http.StatusBadRequest, "Email or username is no longer available")
		return
	}

	h.tokenResponse(c, http.StatusCreated, "Email verified", &user)
}

type emailRequest struct {
	Email string `json:"email"`
}

// Resend regenerates the OTP for a pending registration.
func (h *AuthHandler) Resend(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := db.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil && existing.IsEmailVerified {
		Fail(c, http.StatusBadRequest, "Email is already verified")
		return
	}

	code := h.pending.Refresh(req.Email)
	if code == "" {
		Fail(c, http.StatusNotFound, "No pending registration for this email")
		return
	}

	h.mailService.SendVerificationEmail(req.Email, code)
	OK(c, http.StatusOK, "A new verification code has been sent", nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials and issues the token pair. Unknown email and
// wrong password return the same message so accounts cannot be probed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		Fail(c, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		Fail(c, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if !user.IsEmailVerified {
		Fail(c, http.StatusUnauthorized, "Email is not verified")
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := db.DB.Model(&user).Update("last_login", now).Error; err != nil {
		ServerError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusOK, "Login successful", &user)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh validates the refresh token and reissues an access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		Fail(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	userID, err := h.tokenService.VerifyRefreshToken(req.RefreshToken)
	if err != nil {
		message := "Invalid refresh token"
		if errors.Is(err, services.ErrTokenExpired) {
			message = "Refresh token expired, please log in again"
		}
		Fail(c, http.StatusUnauthorized, message)
		return
	}

	var user models.User
	if err := db.DB.First(&user, userID).Error; err != nil {
		Fail(c, http.StatusUnauthorized, "User not found")
		return
	}

	access, err := h.tokenService.GenerateAccessToken(user.ID)
	if err != nil {
		ServerError(c, err)
		return
	}
	OK(c, http.StatusOK, "", gin.H{"token": access})
}

// ForgotPassword emails a time-limited reset link. The response does not
// reveal whether the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := db.DB.Where("email = ?", req.Email).First(&user).Error; err == nil {
		token, err := utils.GenerateToken()
		if err != nil {
			ServerError(c, err)
			return
		}
		expires := time.Now().Add(15 * time.Minute)
		updates := map[string]interface{}{
			"reset_token":         utils.HashToken(token),
			"reset_token_expires": expires,
		}
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			ServerError(c, err)
			return
		}
		resetURL := fmt.Sprintf("%s/reset-password?token=%s", config.Get().SiteURL, token)
		h.mailService.SendPasswordResetEmail(user.Email, resetURL)
	}

	OK(c, http.StatusOK, "If the account exists, a reset link has been sent", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPassword sets a new password against an unexpired reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Password) < minPasswordLength {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	var user models.User
	err := db.DB.Where("reset_token = ? AND reset_token_expires > ?", utils.HashToken(req.Token), time.Now()).First(&user).Error
	if err != nil {
		Fail(c, http.StatusBadRequest, "Reset token is invalid or expired")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		ServerError(c, err)
		return
	}
	updates := map[string]interface{}{
		"password":            hash,
		"reset_token":         "",
		"reset_token_expires": nil,
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Password has been reset, please log in", nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword requires the current password before accepting a new one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		Fail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		ServerError(c, err)
		return
	}
	if err := db.DB.Model(user).Update("password", hash).Error; err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Password updated", nil)
}

// CheckEmail reports whether an email is already registered.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	exists := db.DB.Where("email = ?", req.Email).First(&user).Error == nil
	OK(c, http.StatusOK, "", gin.H{"exists": exists})
}

type usernameRequest struct {
	Username string `json:"username"`
}

// CheckUsername reports whether a username is already taken.
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user models.User
	exists := db.DB.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error == nil
	OK(c, http.StatusOK, "", gin.H{"exists": exists})
}

// VerifiedStatus returns the caller's email-verification flag.
func (h *AuthHandler) VerifiedStatus(c *gin.Context) {
	user := middleware.CurrentUser(c)
	OK(c, http.StatusOK, "", gin.H{"isEmailVerified": user.IsEmailVerified})
}

// DeleteAccount removes the user and everything they own.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	user := middleware.CurrentUser(c)

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		// Replies under this user's comments go too, so no orphans remain
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", user.ID).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			var replyIDs []uint
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", commentIDs).Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			affected := append(commentIDs, replyIDs...)
			if err := tx.Where("comment_id IN ?", affected).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("parent_id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		// This user's replies under other users' comments get their
		// parent counts walked back before the rows disappear
		var parentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("user_id = ? AND parent_id IS NOT NULL", user.ID).
			Pluck("parent_id", &parentIDs).Error; err != nil {
			return err
		}
		for _, pid := range parentIDs {
			if err := tx.Model(&models.Comment{}).Where("id = ? AND reply_count > 0", pid).
				UpdateColumn("reply_count", gorm.Expr("reply_count - 1")).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.ArticleInteraction{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	OK(c, http.StatusOK, "Account deleted", nil)
}
