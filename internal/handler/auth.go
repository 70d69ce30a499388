package handler

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wordvault/api/internal/auth"
	"github.com/wordvault/api/internal/middleware"
	"github.com/wordvault/api/internal/model"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// AuthHandler owns the Google sign-in flow and token lifecycle. Errors during
// the OAuth dance redirect back to the frontend with an error query param so
// the SPA can show them; API-shaped errors only appear on the JSON endpoints.
type AuthHandler struct {
	db           *gorm.DB
	jwtSecret    string
	googleConfig *oauth2.Config
	frontendURL  string
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, googleConfig *oauth2.Config, frontendURL string) *AuthHandler {
	return &AuthHandler{
		db:           db,
		jwtSecret:    jwtSecret,
		googleConfig: googleConfig,
		frontendURL:  frontendURL,
	}
}

// GoogleAuth starts the sign-in flow. The state nonce lives in a short-lived
// cookie and is checked on the way back.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := generateState()
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, h.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

// GoogleCallback finishes the flow: state check, code exchange, profile
// lookup, account upsert, then a redirect carrying both tokens.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	savedState, err := c.Cookie("oauth_state")
	if err != nil || state != savedState {
		h.frontendError(c, "invalid_state")
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		h.frontendError(c, "no_code")
		return
	}

	token, err := h.googleConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Printf("Google code exchange failed: %v", err)
		h.frontendError(c, "exchange_failed")
		return
	}

	profile, err := auth.GetGoogleUserInfo(c.Request.Context(), token)
	if err != nil {
		log.Printf("Google userinfo lookup failed: %v", err)
		h.frontendError(c, "user_info_failed")
		return
	}

	user, err := h.upsertGoogleUser(profile)
	if err != nil {
		log.Printf("Account upsert failed: %v", err)
		h.frontendError(c, "db_error")
		return
	}

	accessToken, refreshToken, err := h.issueTokens(user)
	if err != nil {
		log.Printf("Token issue failed: %v", err)
		h.frontendError(c, "token_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect,
		h.frontendURL+"?accessToken="+accessToken+"&refreshToken="+refreshToken)
}

// upsertGoogleUser finds the account for a Google profile, creating it on
// first sign-in and refreshing the profile fields on every later one.
func (h *AuthHandler) upsertGoogleUser(profile *auth.GoogleUserInfo) (*model.User, error) {
	var user model.User
	result := h.db.Where("provider = ? AND provider_id = ?", "google", profile.ID).First(&user)

	if result.Error == gorm.ErrRecordNotFound {
		user = model.User{
			Provider:   "google",
			ProviderID: profile.ID,
			Email:      profile.Email,
			Name:       profile.Name,
			AvatarURL:  profile.Picture,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := h.db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	h.db.Model(&user).Updates(map[string]interface{}{
		"email":      profile.Email,
		"name":       profile.Name,
		"avatar_url": profile.Picture,
		"updated_at": time.Now(),
	})
	return &user, nil
}

// issueTokens mints an access token and stores a fresh refresh token.
func (h *AuthHandler) issueTokens(user *model.User) (string, string, error) {
	accessToken, err := auth.GenerateAccessToken(user, h.jwtSecret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	record := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(auth.RefreshTokenExpiry),
		CreatedAt: time.Now(),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// RefreshToken trades a live refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	var refreshToken model.RefreshToken
	result := h.db.Where("token = ? AND revoked = false AND expires_at > ?", req.RefreshToken, time.Now()).First(&refreshToken)
	if result.Error != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}

	var user model.User
	if err := h.db.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(&user, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"expiresIn":   int(auth.AccessTokenExpiry.Seconds()),
	})
}

// Logout revokes the refresh token. Access tokens are short-lived and simply
// expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	h.db.Model(&model.RefreshToken{}).Where("token = ?", req.RefreshToken).Update("revoked", true)

	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) frontendError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"?error="+code)
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
