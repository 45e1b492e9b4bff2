package main

import (
	"log"

	"newsreader/internal/config"
	"newsreader/internal/db"
	"newsreader/internal/handlers"
	"newsreader/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	cfg := config.Load()

	// Initialize Database
	db.Init(cfg.DatabaseURL)

	// Google OAuth config for the code-flow endpoints
	handlers.InitGoogleOAuth()

	// Initialize Gin
	r := gin.Default()

	// Article identifiers arrive URL-encoded in path segments; keep the
	// raw path so encoded slashes survive until the handler unescapes.
	r.UseRawPath = true
	r.UnescapePathValues = false

	router.RegisterRoutes(r)

	log.Printf("Newsreader API starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
