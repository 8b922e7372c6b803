// api/handlers/auth_handlers.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portfolio/api/middleware"
	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

const msgInvalidCredentials = "Invalid credentials"

type UserRepository interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.AdminUser, error)
	GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	UpdatePassword(ctx context.Context, username string, passwordHash []byte) error
}

type TokenIssuer interface {
	Generate(username string) (string, *utils.Claims, error)
	TTL() time.Duration
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// DefaultAdmin is the account created on the first login attempt with its username.
type DefaultAdmin struct {
	Username string
	Password string
}

type AuthHandlers struct {
	users        UserRepository
	tokens       TokenIssuer
	revoker      TokenRevoker
	defaultAdmin DefaultAdmin
	secureCookie bool
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewAuthHandlers(users UserRepository, tokens TokenIssuer, revoker TokenRevoker, admin DefaultAdmin, secureCookie bool, logger logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{
		users:        users,
		tokens:       tokens,
		revoker:      revoker,
		defaultAdmin: admin,
		secureCookie: secureCookie,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and issues a token in the body and as a cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	ctx := c.Request.Context()
	log := h.logger.WithField("username", req.Username)

	user, err := h.lookupOrBootstrap(ctx, req.Username)
	if errors.Is(err, store.ErrUserNotFound) {
		log.Info("Login failed: unknown user")
		c.JSON(http.StatusOK, models.LoginResponse{Success: false, Message: msgInvalidCredentials})
		return
	}
	if err != nil {
		log.WithError(err).Error("Login failed: user lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process login"})
		return
	}

	ok, err := utils.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		log.WithError(err).Error("Login failed: stored hash unreadable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process login"})
		return
	}
	if !ok {
		log.Info("Login failed: password mismatch")
		c.JSON(http.StatusOK, models.LoginResponse{Success: false, Message: msgInvalidCredentials})
		return
	}

	if err := h.users.UpdateLastLogin(ctx, user.Username, h.now()); err != nil {
		log.WithError(err).Warn("Failed to record last login")
	}

	tokenString, _, err := h.tokens.Generate(user.Username)
	if err != nil {
		log.WithError(err).Error("Failed to generate authentication token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, tokenString, int(h.tokens.TTL()/time.Second), "/", "", h.secureCookie, true)

	log.Info("Admin logged in")
	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Token:   tokenString,
		Message: "Login successful",
		User:    &models.LoginUser{Username: user.Username, LastLogin: user.LastLogin},
	})
}

// lookupOrBootstrap returns the named user, creating the default admin on
// first use of its username.
func (h *AuthHandlers) lookupOrBootstrap(ctx context.Context, username string) (*models.AdminUser, error) {
	user, err := h.users.GetUserByUsername(ctx, username)
	if !errors.Is(err, store.ErrUserNotFound) || username != h.defaultAdmin.Username {
		return user, err
	}

	hash, err := utils.HashPassword(h.defaultAdmin.Password)
	if err != nil {
		return nil, err
	}
	user, err = h.users.CreateUser(ctx, username, hash)
	if errors.Is(err, store.ErrUserExists) {
		// Lost a race with a concurrent first login.
		return h.users.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return nil, err
	}
	h.logger.WithField("username", username).Warn("Created default admin user; change its password")
	return user, nil
}

func (h *AuthHandlers) Verify(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "username": c.GetString(middleware.ContextUsername)})
}

func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	var req models.PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	ctx := c.Request.Context()
	username := c.GetString(middleware.ContextUsername)
	log := h.logger.WithField("username", username)

	user, err := h.users.GetUserByUsername(ctx, username)
	if err != nil {
		log.WithError(err).Error("Password change: user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	ok, err := utils.CheckPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		log.WithError(err).Error("Password change: stored hash unreadable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Current password is incorrect"})
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err == nil {
		err = h.users.UpdatePassword(ctx, username, hash)
	}
	if err != nil {
		log.WithError(err).Error("Password change: update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	log.Info("Admin password changed")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}

// Logout revokes the presented token until it would have expired and clears the cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if claims, ok := middleware.ClaimsFrom(c); ok && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.logger.WithError(err).WithField("jti", claims.ID).Error("Failed to revoke token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
			return
		}
	}

	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}
