package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"access_review/internal/auth"
	"access_review/internal/models"
	"access_review/internal/store"
)

type systemUserInput struct {
	Name       string                 `json:"name" binding:"required"`
	Email      string                 `json:"email" binding:"required,email"`
	AvatarURL  string                 `json:"avatarUrl"`
	Role       models.SystemRole      `json:"role" binding:"required"`
	Department string                 `json:"department"`
	Status     models.LifecycleStatus `json:"status"`
	Password   string                 `json:"password"`
}

func (in systemUserInput) apply(u *models.SystemUser) error {
	if !models.ValidSystemRole(in.Role) {
		return fmt.Errorf("invalid role %q", in.Role)
	}
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if !models.ValidAccessStatus(in.Status) {
		return fmt.Errorf("invalid status %q", in.Status)
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Email = strings.TrimSpace(strings.ToLower(in.Email))
	u.AvatarURL = in.AvatarURL
	u.Role = in.Role
	u.Department = strings.TrimSpace(in.Department)
	u.Status = in.Status

	if in.Password != "" {
		if len(in.Password) < 8 {
			return fmt.Errorf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	return nil
}

// ListSystemUsers returns all dashboard accounts.
func ListSystemUsers(st store.SystemUserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := st.ListSystemUsers(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

// CreateSystemUser adds a dashboard account. Emails are unique.
func CreateSystemUser(st store.SystemUserStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in systemUserInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		var user models.SystemUser
		if err := in.apply(&user); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.CreateSystemUser(c.Request.Context(), user)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "system_user.create", "system_user", user.ID, map[string]any{
			"email": user.Email,
			"role":  user.Role,
		})
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// UpdateSystemUser replaces a dashboard account's profile. The stored
// password is kept unless a new one is supplied.
func UpdateSystemUser(st store.SystemUserStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in systemUserInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		user, err := st.GetSystemUser(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if err := in.apply(&user); err != nil {
			badRequest(c, err)
			return
		}

		user, err = st.UpdateSystemUser(c.Request.Context(), user)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "system_user.update", "system_user", user.ID, nil)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// DeleteSystemUser removes the account. Access records are left alone.
func DeleteSystemUser(st store.SystemUserStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := st.DeleteSystemUser(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "system_user.delete", "system_user", id, nil)
		c.JSON(http.StatusOK, gin.H{"message": "system user deleted"})
	}
}
