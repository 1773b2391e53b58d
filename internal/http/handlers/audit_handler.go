package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"access_review/internal/store"
)

func ListAudit(st store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		var afterID int64
		if cursorStr := c.Query("after_id"); cursorStr != "" {
			if parsed, err := strconv.ParseInt(cursorStr, 10, 64); err == nil && parsed > 0 {
				afterID = parsed
			}
		}

		// One extra row tells us whether another page exists.
		logs, err := st.ListAudit(c.Request.Context(), store.AuditQuery{
			Limit:   limit + 1,
			AfterID: afterID,
			Search:  strings.TrimSpace(c.Query("q")),
		})
		if err != nil {
			writeError(c, err)
			return
		}

		var nextCursor *int64
		if len(logs) > limit {
			next := logs[limit-1].ID
			logs = logs[:limit]
			nextCursor = &next
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":        logs,
			"next_cursor": nextCursor,
		})
	}
}
