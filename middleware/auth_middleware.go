package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

const (
	// TokenCookie is the cookie that carries the admin token for browser clients.
	TokenCookie = "jwt_token"

	ContextUsername = "username"
	ContextClaims   = "claims"
)

type TokenValidator interface {
	Validate(tokenString string) (*utils.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
}

var errAuthScheme = errors.New("authorization scheme is not bearer")

// AuthRequired accepts a Bearer token from the Authorization header, or the
// jwt_token cookie when the header is absent. On success the username and
// claims are stored in the gin context. Backend failures answer 500.
func AuthRequired(tokens TokenValidator, revoked RevocationChecker, users UserLookup, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			abortUnauthorized(c, "Invalid authentication scheme")
			return
		}
		if tokenString == "" {
			logger.Debug("auth: no token in header or cookie")
			abortUnauthorized(c, "Unauthorized: No token provided")
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			logger.WithError(err).Info("auth: invalid token")
			abortUnauthorized(c, "Unauthorized: Invalid or expired token")
			return
		}

		ctx := c.Request.Context()
		isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.WithError(err).WithField("jti", claims.ID).Error("auth: revocation lookup failed")
			abortInternal(c)
			return
		}
		if isRevoked {
			abortUnauthorized(c, "Unauthorized: Token has been revoked")
			return
		}

		if _, err := users.GetUserByUsername(ctx, claims.Username); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				abortUnauthorized(c, "Unauthorized: User not found")
				return
			}
			logger.WithError(err).WithField("username", claims.Username).Error("auth: user lookup failed")
			abortInternal(c)
			return
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// bearerToken returns the token from "Authorization: Bearer <token>", with
// the scheme matched case-insensitively, or from the cookie when there is no
// header. Any other scheme is errAuthScheme.
func bearerToken(c *gin.Context) (string, error) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		scheme, token, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "bearer") {
			return "", errAuthScheme
		}
		return strings.TrimSpace(token), nil
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie, nil
	}
	return "", nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication service unavailable"})
}
