package router

import (
	"newsreader/internal/config"
	"newsreader/internal/handlers"
	"newsreader/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	userHandler := handlers.NewUserHandler()
	commentHandler := handlers.NewCommentHandler()
	articleHandler := handlers.NewArticleHandler()
	newsHandler := handlers.NewNewsHandler()

	// Static serving for uploaded profile images
	r.Static("/uploads", config.Get().UploadDir)

	api := r.Group("/api")

	// Auth (public)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/verify", authHandler.Verify)
		auth.POST("/resend", authHandler.Resend)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/google", authHandler.GoogleLogin)
		auth.GET("/google/url", authHandler.GoogleAuthURL)
		auth.GET("/google/callback", authHandler.GoogleCallback)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/check-email", authHandler.CheckEmail)
		auth.POST("/check-username", authHandler.CheckUsername)
	}

	// Auth (protected)
	authProtected := api.Group("/auth")
	authProtected.Use(middleware.AuthRequired())
	{
		authProtected.GET("/profile", userHandler.Profile)
		authProtected.POST("/profile", userHandler.UpdateProfile)
		authProtected.POST("/change-password", authHandler.ChangePassword)
		authProtected.GET("/verified", authHandler.VerifiedStatus)
		authProtected.DELETE("/account", authHandler.DeleteAccount)
	}

	// Profile image upload
	api.POST("/upload-profile-image", middleware.AuthRequired(), userHandler.UploadProfileImage)

	// Comments
	api.GET("/articles/:articleId/comments", middleware.LoadUser(), commentHandler.List)
	api.POST("/articles/:articleId/comments", middleware.AuthRequired(), commentHandler.Create)

	comments := api.Group("/comments")
	comments.Use(middleware.AuthRequired())
	{
		comments.POST("/:parentId/replies", commentHandler.Reply)
		comments.POST("/:id/like", commentHandler.ToggleLike)
		comments.PUT("/:id", commentHandler.Update)
		comments.DELETE("/:id", commentHandler.Delete)
	}

	// Article interactions
	api.POST("/articles/like", middleware.AuthRequired(), articleHandler.SetLiked)
	api.POST("/articles/save", middleware.AuthRequired(), articleHandler.SetSaved)
	api.POST("/articles/share", middleware.LoadUser(), articleHandler.RecordShare)
	api.GET("/articles/stats", middleware.LoadUser(), articleHandler.Stats)
	api.GET("/articles/saved", middleware.AuthRequired(), articleHandler.Saved)

	// News proxy
	api.GET("/news/extract", newsHandler.Extract)
	api.GET("/news/:category", newsHandler.Category)
}
