package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"access_review/internal/models"
	"access_review/internal/store"
)

type cycleInput struct {
	Name      string             `json:"name" binding:"required"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Status    models.CycleStatus `json:"status"`
	Progress  int                `json:"progress" binding:"min=0,max=100"`
}

func (in cycleInput) model() (models.ReviewCycle, error) {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return models.ReviewCycle{}, fmt.Errorf("startDate and endDate are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return models.ReviewCycle{}, fmt.Errorf("endDate must not be before startDate")
	}
	if in.Status == "" {
		in.Status = models.CycleUpcoming
	}
	switch in.Status {
	case models.CycleActive, models.CycleCompleted, models.CycleUpcoming:
	default:
		return models.ReviewCycle{}, fmt.Errorf("invalid cycle status %q", in.Status)
	}
	return models.ReviewCycle{
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    in.Status,
		Progress:  in.Progress,
	}, nil
}

func ListCycles(st store.CycleStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		cycles, err := st.ListCycles(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cycles": cycles})
	}
}

func CreateCycle(st store.CycleStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cycleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		cycle, err := in.model()
		if err != nil {
			badRequest(c, err)
			return
		}

		cycle, err = st.CreateCycle(c.Request.Context(), cycle)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "review_cycle.create", "review_cycle", cycle.ID, map[string]any{"name": cycle.Name})
		c.JSON(http.StatusCreated, gin.H{"cycle": cycle})
	}
}

func UpdateCycle(st store.CycleStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cycleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		cycle, err := in.model()
		if err != nil {
			badRequest(c, err)
			return
		}
		cycle.ID = c.Param("id")

		cycle, err = st.UpdateCycle(c.Request.Context(), cycle)
		if err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "review_cycle.update", "review_cycle", cycle.ID, nil)
		c.JSON(http.StatusOK, gin.H{"cycle": cycle})
	}
}

func DeleteCycle(st store.CycleStore, audit store.AuditStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := st.DeleteCycle(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		recordAudit(c, audit, "review_cycle.delete", "review_cycle", id, nil)
		c.JSON(http.StatusOK, gin.H{"message": "review cycle deleted"})
	}
}
