package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"access_review/internal/models"
	"access_review/internal/review"
	"access_review/internal/store"
)

// dashboardRow is the application manager's view of one access record.
type dashboardRow struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Email       string                 `json:"email"`
	Application string                 `json:"application"`
	Role        string                 `json:"role"`
	LastLogin   *time.Time             `json:"lastLogin"`
	Status      models.LifecycleStatus `json:"status"`
	AvatarURL   string                 `json:"avatarUrl"`
}

// AvatarURL falls back to a generated avatar when the record carries none.
func AvatarURL(base, avatar, name string) string {
	if avatar != "" {
		return avatar
	}
	return base + "?background=random&name=" + url.QueryEscape(name)
}

// ListDashboardUsers serves GET /dashboard/app-manager/users as a bare array.
func ListDashboardUsers(svc *review.Service, avatarBase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := svc.Records(c.Request.Context(), review.Filter{})
		if err != nil {
			writeError(c, err)
			return
		}

		rows := make([]dashboardRow, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, dashboardRow{
				ID:          r.ID,
				Name:        r.UserName,
				Email:       r.UserEmail,
				Application: r.Application,
				Role:        r.Role,
				LastLogin:   r.LastLogin,
				Status:      r.Status,
				AvatarURL:   AvatarURL(avatarBase, r.UserAvatar, r.UserName),
			})
		}
		c.JSON(http.StatusOK, rows)
	}
}

type onboardRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Email          string                 `json:"email" binding:"required,email"`
	BusinessUserID string                 `json:"businessUserId"`
	LegacyBUID     string                 `json:"business_user_id"`
	Application    string                 `json:"application" binding:"required"`
	Role           string                 `json:"role" binding:"required"`
	Status         models.LifecycleStatus `json:"status"`
}

// OnboardUser serves POST /dashboard/app-manager/users.
func OnboardUser(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in onboardRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		buid := strings.TrimSpace(in.BusinessUserID)
		if buid == "" {
			buid = strings.TrimSpace(in.LegacyBUID)
		}

		rec, err := svc.Onboard(c.Request.Context(), review.OnboardInput{
			Name:           in.Name,
			Email:          in.Email,
			BusinessUserID: buid,
			Application:    in.Application,
			Role:           in.Role,
			Status:         in.Status,
		})
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "access_record.onboard", "access_record", rec.ID, map[string]any{
			"application": rec.Application,
			"user_email":  rec.UserEmail,
			"role":        rec.Role,
		})
		c.JSON(http.StatusOK, gin.H{"message": "User onboarded successfully", "id": rec.ID, "user_id": rec.ID})
	}
}

// DeleteDashboardUser serves DELETE /users/:id. The id is an access record id.
func DeleteDashboardUser(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.RemoveRecord(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "access_record.delete", "access_record", id, nil)
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
