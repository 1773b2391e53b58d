package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"access_review/internal/auth"
	"access_review/internal/models"
	"access_review/internal/store"
)

// recordAudit appends an audit entry for a successful mutation. Failures are
// logged and never fail the request.
func recordAudit(c *gin.Context, st store.AuditStore, action, resourceType, resourceID string, meta map[string]any) {
	recordAuditAs(c, st, "", action, resourceType, resourceID, meta)
}

// recordAuditAs is recordAudit with an explicit initiator, used when the
// request body names the actor.
func recordAuditAs(c *gin.Context, st store.AuditStore, actor, action, resourceType, resourceID string, meta map[string]any) {
	initiator := auth.ActorFrom(c, actor)
	if initiator == "" {
		initiator = "anonymous"
	}

	entry := models.AuditLog{
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		IP:            c.ClientIP(),
		InitiatorName: initiator,
		UserAgent:     c.Request.UserAgent(),
		CreatedAt:     time.Now(),
	}
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			entry.Metadata = datatypes.JSON(b)
		}
	}

	if err := st.AppendAudit(c.Request.Context(), &entry); err != nil {
		slog.Warn("audit append failed", "action", action, "resource_id", resourceID, "error", err)
	}
}
