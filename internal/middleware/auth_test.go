package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"newsreader/internal/db"
	"newsreader/internal/models"
	"newsreader/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "middleware-test-secret"

// The secret must be pinned before the token service singleton is
// built, so expired tokens minted below verify against the same key.
func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", testSecret)
	os.Exit(m.Run())
}

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	db.DB = conn

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentUser(c).ID})
	})
	r.GET("/optional", LoadUser(), func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": user != nil})
	})
	return r
}

func request(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredMessages(t *testing.T) {
	r := setupAuthTest(t)

	user := models.User{Username: "alice", Email: "a@x.com", Password: "x", IsEmailVerified: true}
	require.NoError(t, db.DB.Create(&user).Error)

	valid, err := services.GetTokenService().GenerateAccessToken(user.ID)
	require.NoError(t, err)

	expired, err := services.NewTokenService(testSecret, -time.Minute, -time.Minute).GenerateAccessToken(user.ID)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		code    int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, "Missing token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Missing token"},
		{"literal null", "Bearer null", http.StatusUnauthorized, "Missing token"},
		{"literal undefined", "Bearer undefined", http.StatusUnauthorized, "Missing token"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Malformed token"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "Token expired, please log in again"},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := request(r, "/protected", tc.header)
			assert.Equal(t, tc.code, w.Code)
			if tc.message != "" {
				assert.Contains(t, w.Body.String(), tc.message)
			}
		})
	}
}

func TestAuthRequiredDeletedUser(t *testing.T) {
	r := setupAuthTest(t)

	user := models.User{Username: "ghost", Email: "g@x.com", Password: "x", IsEmailVerified: true}
	require.NoError(t, db.DB.Create(&user).Error)
	token, err := services.GetTokenService().GenerateAccessToken(user.ID)
	require.NoError(t, err)

	require.NoError(t, db.DB.Delete(&user).Error)

	w := request(r, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestLoadUserOptional(t *testing.T) {
	r := setupAuthTest(t)

	user := models.User{Username: "bob", Email: "b@x.com", Password: "x", IsEmailVerified: true}
	require.NoError(t, db.DB.Create(&user).Error)
	token, err := services.GetTokenService().GenerateAccessToken(user.ID)
	require.NoError(t, err)

	// Anonymous, bad and valid tokens all pass through
	w := request(r, "/optional", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = request(r, "/optional", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = request(r, "/optional", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}
