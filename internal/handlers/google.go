package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsreader/internal/config"
	"newsreader/internal/db"
	"newsreader/internal/models"
	"newsreader/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var googleOauthConfig *oauth2.Config

// InitGoogleOAuth builds the oauth2 config for the code-flow endpoints.
func InitGoogleOAuth() {
	cfg := config.Get()
	googleOauthConfig = &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.SiteURL + "/api/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// GoogleUserInfo is the identity we need from either Google flow.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

// tokenInfo is the payload of Google's tokeninfo endpoint for an ID token.
type tokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// GoogleLogin verifies a client-obtained Google ID token server-side and
// signs the user in, creating the account on first sight.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
		Fail(c, http.StatusBadRequest, "idToken is required")
		return
	}

	info, err := verifyGoogleIDToken(req.IDToken)
	if err != nil {
		Fail(c, http.StatusUnauthorized, "Google token could not be verified")
		return
	}

	user, err := upsertGoogleUser(info)
	if err != nil {
		ServerError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusOK, "Login successful", user)
}

// verifyGoogleIDToken validates the token against Google's tokeninfo
// endpoint and checks it was issued for this application.
func verifyGoogleIDToken(idToken string) (*GoogleUserInfo, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken))
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}

	if info.Aud != config.Get().GoogleClientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.EmailVerified != "true" {
		return nil, fmt.Errorf("google email not verified")
	}

	return &GoogleUserInfo{
		ID:            info.Sub,
		Email:         info.Email,
		VerifiedEmail: true,
		Name:          info.Name,
		GivenName:     info.GivenName,
		Picture:       info.Picture,
	}, nil
}

// upsertGoogleUser finds a user by Google id or email, creating or
// binding as needed. Google accounts arrive email-verified.
func upsertGoogleUser(info *GoogleUserInfo) (*models.User, error) {
	var user models.User
	err := db.DB.Where("google_id = ?", info.ID).Or("email = ?", strings.ToLower(info.Email)).First(&user).Error
	now := time.Now()

	if err != nil {
		username := info.GivenName
		if username == "" {
			username = strings.Split(info.Email, "@")[0]
		}

		// A random credential; Google users set a real password later if
		// they want email login
		hash, hashErr := utils.HashPassword(info.ID + utils.GenerateRandomCode(8))
		if hashErr != nil {
			return nil, hashErr
		}

		user = models.User{
			Username:        uniqueUsername(username),
			DisplayName:     info.Name,
			Email:           strings.ToLower(info.Email),
			Password:        hash,
			PhotoURL:        info.Picture,
			GoogleID:        info.ID,
			IsEmailVerified: true,
			LastLogin:       &now,
		}
		if createErr := db.DB.Create(&user).Error; createErr != nil {
			return nil, createErr
		}
		return &user, nil
	}

	updates := map[string]interface{}{
		"is_email_verified": true,
		"last_login":        now,
	}
	if user.GoogleID == "" {
		updates["google_id"] = info.ID
	}
	if user.PhotoURL == "" && info.Picture != "" {
		updates["photo_url"] = info.Picture
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// uniqueUsername appends a numeric suffix when the base name is taken.
func uniqueUsername(base string) string {
	name := base
	for i := 0; i < 10; i++ {
		var existing models.User
		if err := db.DB.Where("username = ?", name).First(&existing).Error; err != nil {
			return name
		}
		name = fmt.Sprintf("%s%s", base, utils.GenerateRandomCode(4))
	}
	return name
}

// GoogleAuthURL starts the authorization-code flow for web clients. The
// state token lives in the TTL cache until the callback returns.
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	state, err := utils.GenerateToken()
	if err != nil {
		ServerError(c, err)
		return
	}
	utils.GetCache().Set("oauth:state:"+state, true, 10*time.Minute)

	authURL := googleOauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	OK(c, http.StatusOK, "", gin.H{"url": authURL})
}

// GoogleCallback finishes the code flow: state check, code exchange,
// userinfo fetch, then the same upsert as the id-token route.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	if state == "" || utils.GetCache().Get("oauth:state:"+state) == nil {
		Fail(c, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	utils.GetCache().Delete("oauth:state:" + state)

	code := c.Query("code")
	if code == "" {
		Fail(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		Fail(c, http.StatusUnauthorized, "Failed to exchange authorization code")
		return
	}

	info, err := fetchGoogleUserInfo(token.AccessToken)
	if err != nil {
		ServerError(c, err)
		return
	}
	if !info.VerifiedEmail {
		Fail(c, http.StatusBadRequest, "Google email is not verified")
		return
	}

	user, err := upsertGoogleUser(info)
	if err != nil {
		ServerError(c, err)
		return
	}

	h.tokenResponse(c, http.StatusOK, "Login successful", user)
}

func fetchGoogleUserInfo(accessToken string) (*GoogleUserInfo, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(accessToken))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info GoogleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
