package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"access_review/internal/models"
	"access_review/internal/store"
)

type applicationInput struct {
	Name        string                 `json:"name" binding:"required"`
	Owner       string                 `json:"owner"`
	Description string                 `json:"description"`
	UserCount   int                    `json:"userCount" binding:"min=0"`
	Status      models.LifecycleStatus `json:"status"`
}

func (in applicationInput) model() (models.Application, error) {
	if in.Status == "" {
		in.Status = models.StatusActive
	}
	if !models.ValidApplicationStatus(in.Status) {
		return models.Application{}, fmt.Errorf("invalid application status %q", in.Status)
	}
	return models.Application{
		Name:        strings.TrimSpace(in.Name),
		Owner:       strings.TrimSpace(in.Owner),
		Description: in.Description,
		UserCount:   in.UserCount,
		Status:      in.Status,
	}, nil
}

func ListApplications(st store.ApplicationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := st.ListApplications(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"applications": apps})
	}
}

// ListApplicationsPlain serves GET /applications/ as a bare array.
func ListApplicationsPlain(st store.ApplicationStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		apps, err := st.ListApplications(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, apps)
	}
}

// CreateApplication registers an application. With plain set the created
// entity is returned unwrapped.
func CreateApplication(st store.ApplicationStore, audit store.AuditStore, plain bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in applicationInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		app, err := in.model()
		if err != nil {
			badRequest(c, err)
			return
		}

		app, err = st.CreateApplication(c.Request.Context(), app)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "application.create", "application", app.ID, map[string]any{"name": app.Name})
		if plain {
			c.JSON(http.StatusOK, app)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"application": app})
	}
}

func UpdateApplication(st store.ApplicationStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in applicationInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		app, err := in.model()
		if err != nil {
			badRequest(c, err)
			return
		}
		app.ID = c.Param("id")

		app, err = st.UpdateApplication(c.Request.Context(), app)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "application.update", "application", app.ID, map[string]any{"name": app.Name})
		c.JSON(http.StatusOK, gin.H{"application": app})
	}
}

// DeleteApplication removes the registry entry only. Access records naming
// the application are kept.
func DeleteApplication(st store.ApplicationStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := st.DeleteApplication(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "application.delete", "application", id, nil)
		c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
	}
}
