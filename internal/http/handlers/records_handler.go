package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"access_review/internal/auth"
	"access_review/internal/review"
	"access_review/internal/store"
)

// ListRecords returns access records, optionally narrowed to one review
// stage, one application and a free-text query.
func ListRecords(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stage := c.Query("stage")
		if stage == "" {
			stage = c.Query("queue")
		}
		queue, err := review.ParseQueue(stage)
		if err != nil {
			badRequest(c, err)
			return
		}

		recs, err := svc.Records(c.Request.Context(), review.Filter{
			Queue:       queue,
			Application: strings.TrimSpace(c.Query("application")),
			Query:       c.Query("q"),
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": recs})
	}
}

func GetRecord(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := svc.Record(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"record": rec})
	}
}

func CreateRecord(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in review.GrantInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		rec, err := svc.GrantAccess(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "access_record.grant", "access_record", rec.ID, map[string]any{
			"application": rec.Application,
			"user_email":  rec.UserEmail,
			"role":        rec.Role,
		})
		c.JSON(http.StatusCreated, gin.H{"record": rec})
	}
}

func UpdateRecord(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in review.RecordDetails
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		rec, err := svc.UpdateRecord(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAudit(c, audit, "access_record.update", "access_record", rec.ID, nil)
		c.JSON(http.StatusOK, gin.H{"record": rec})
	}
}

func DeleteRecord(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.RemoveRecord(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "access_record.delete", "access_record", id, nil)
		c.JSON(http.StatusOK, gin.H{"message": "access record deleted"})
	}
}

// ReviewActionKey holds the requested review action in the gin context so
// request middleware can flag destructive decisions.
const ReviewActionKey = "review_action"

type actionRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
	Actor   string `json:"actor"`
}

// ReviewAction applies one reviewer decision to a record.
func ReviewAction(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in actionRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		c.Set(ReviewActionKey, in.Action)
		actor := auth.ActorFrom(c, in.Actor)
		rec, err := svc.PerformReviewAction(c.Request.Context(), c.Param("id"), in.Action, in.Comment, actor)
		if err != nil {
			writeError(c, err)
			return
		}

		recordAuditAs(c, audit, actor, "access_record.review", "access_record", rec.ID, map[string]any{
			"action":        in.Action,
			"comment":       in.Comment,
			"review_status": rec.ReviewStatus,
			"actor":         actor,
		})
		c.JSON(http.StatusOK, gin.H{"record": rec})
	}
}

type bulkActionRequest struct {
	IDs     []string `json:"ids" binding:"required,min=1"`
	Action  string   `json:"action" binding:"required"`
	Comment string   `json:"comment"`
	Actor   string   `json:"actor"`
}

// BulkReviewAction applies one decision to many records. Each id succeeds
// or fails on its own; the response lists every outcome.
func BulkReviewAction(svc *review.Service, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in bulkActionRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		if _, err := review.ParseDecision(in.Action); err != nil {
			badRequest(c, err)
			return
		}

		c.Set(ReviewActionKey, in.Action)
		actor := auth.ActorFrom(c, in.Actor)
		results := svc.PerformBulkReviewAction(c.Request.Context(), in.IDs, in.Action, in.Comment, actor)

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		recordAuditAs(c, audit, actor, "access_record.bulk_review", "access_record", "", map[string]any{
			"action": in.Action,
			"ids":    in.IDs,
			"failed": failed,
			"actor":  actor,
		})
		c.JSON(http.StatusOK, gin.H{"results": results, "failed": failed})
	}
}

func RecordSummary(svc *review.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := svc.Summary(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"summary": summary})
	}
}
