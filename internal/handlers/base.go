package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error responses are a uniform {success:false, message} body across the
// whole API.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// OK renders a success body, merging extra fields into the response.
func OK(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}

// ServerError logs the underlying error and renders a generic 500; store
// and transport failures are never leaked to clients.
func ServerError(c *gin.Context, err error) {
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	Fail(c, http.StatusInternalServerError, "Something went wrong, please try again later")
}
