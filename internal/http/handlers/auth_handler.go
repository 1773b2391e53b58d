package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"access_review/internal/auth"
	"access_review/internal/models"
	"access_review/internal/store"
)

// LoginHandler authenticates a system user and returns a JWT.
func LoginHandler(st store.SystemUserStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.GetSystemUserByEmail(c.Request.Context(), strings.TrimSpace(input.Email))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			writeError(c, err)
			return
		}
		if err != nil || !auth.CheckPassword(user.PasswordHash, input.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		if user.Status != models.StatusActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "account inactive"})
			return
		}

		now := time.Now()
		tokenString, err := auth.IssueToken(jwtSecret, auth.Claims{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   string(user.Role),
		}, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}

		user.LastLogin = &now
		if _, err := st.UpdateSystemUser(c.Request.Context(), user); err != nil {
			slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
		}

		c.SetCookie("token", tokenString, int(auth.TokenTTL.Seconds()), "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{
			"token": tokenString,
			"user":  user,
		})
	}
}

// MeHandler returns the system user behind the bearer token.
func MeHandler(st store.SystemUserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := auth.ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := st.GetSystemUser(c.Request.Context(), cl.UserID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
