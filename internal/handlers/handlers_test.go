package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"newsreader/internal/db"
	"newsreader/internal/middleware"
	"newsreader/internal/models"
	"newsreader/internal/services"
	"newsreader/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB points the package-level connection at a fresh in-memory
// sqlite database.
func setupTestDB(t *testing.T) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	db.DB = conn
}

// setupRouter builds a gin engine with the API routes under test.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = false

	authHandler := NewAuthHandler()
	userHandler := NewUserHandler()
	commentHandler := NewCommentHandler()
	articleHandler := NewArticleHandler()

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify", authHandler.Verify)
	auth.POST("/resend", authHandler.Resend)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	authProtected := api.Group("/auth")
	authProtected.Use(middleware.AuthRequired())
	authProtected.GET("/profile", userHandler.Profile)
	authProtected.POST("/profile", userHandler.UpdateProfile)
	authProtected.POST("/change-password", authHandler.ChangePassword)
	authProtected.DELETE("/account", authHandler.DeleteAccount)

	api.GET("/articles/:articleId/comments", middleware.LoadUser(), commentHandler.List)
	api.POST("/articles/:articleId/comments", middleware.AuthRequired(), commentHandler.Create)

	comments := api.Group("/comments")
	comments.Use(middleware.AuthRequired())
	comments.POST("/:parentId/replies", commentHandler.Reply)
	comments.POST("/:id/like", commentHandler.ToggleLike)
	comments.PUT("/:id", commentHandler.Update)
	comments.DELETE("/:id", commentHandler.Delete)

	api.POST("/articles/like", middleware.AuthRequired(), articleHandler.SetLiked)
	api.POST("/articles/save", middleware.AuthRequired(), articleHandler.SetSaved)
	api.POST("/articles/share", middleware.LoadUser(), articleHandler.RecordShare)
	api.GET("/articles/stats", middleware.LoadUser(), articleHandler.Stats)
	api.GET("/articles/saved", middleware.AuthRequired(), articleHandler.Saved)

	return r
}

// createTestUser persists a verified user and returns it with a valid
// access token.
func createTestUser(t *testing.T, username, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := models.User{
		Username:        username,
		DisplayName:     username,
		Email:           email,
		Password:        hash,
		IsEmailVerified: true,
		LastLogin:       &now,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	token, err := services.GetTokenService().GenerateAccessToken(user.ID)
	require.NoError(t, err)

	return &user, token
}

// doJSON performs a JSON request and decodes the response body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]interface{}{}
	if len(w.Body.Bytes()) > 0 && w.Body.Bytes()[0] == '{' {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
