package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"access_review/internal/models"
	"access_review/internal/store"
)

type roleView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListRoles serves GET /roles/ as a bare array of {id, name}.
func ListRoles(st store.RoleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := st.ListRoles(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		out := make([]roleView, 0, len(roles))
		for _, r := range roles {
			out = append(out, roleView{ID: r.ID, Name: r.Name})
		}
		c.JSON(http.StatusOK, out)
	}
}

func CreateRole(st store.RoleStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		role, err := st.CreateRole(c.Request.Context(), models.Role{Name: strings.TrimSpace(input.Name)})
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "role.create", "role", role.ID, map[string]any{"name": role.Name})
		c.JSON(http.StatusOK, roleView{ID: role.ID, Name: role.Name})
	}
}
