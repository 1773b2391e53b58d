// Package review implements the two-stage access review workflow.
//
// A record starts Pending. A first-stage reviewer (application manager or
// owner) retains, revokes or modifies it, which records a recommendation.
// A business owner then approves or rejects that recommendation. Approved and
// Rejected are terminal.
package review

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"access_review/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid review transition")
	ErrUnknownAction     = errors.New("unknown review action")
	ErrCommentRequired   = errors.New("comment is required")
	ErrInvalidRecord     = errors.New("invalid access record")
)

// HistoryDateLayout is the display format of history entry dates.
const HistoryDateLayout = "Jan 2, 2006"

// DefaultActor is recorded when a caller does not identify itself.
const DefaultActor = "User"

type Stage int

const (
	StageFirst Stage = iota
	StageSecond
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageFirst:
		return "first"
	case StageSecond:
		return "second"
	default:
		return "done"
	}
}

// StageOf maps a review status to the stage that may act on it next.
func StageOf(status models.ReviewStatus) Stage {
	switch status {
	case models.ReviewPending:
		return StageFirst
	case models.ReviewRetained, models.ReviewRevoked, models.ReviewModified:
		return StageSecond
	default:
		return StageDone
	}
}

// Decision is either a FirstStageDecision or a SecondStageDecision.
type Decision interface {
	Stage() Stage
	String() string
}

type FirstStageDecision models.Recommendation

const (
	Retain = FirstStageDecision(models.RecommendRetain)
	Revoke = FirstStageDecision(models.RecommendRevoke)
	Modify = FirstStageDecision(models.RecommendModify)
)

func (d FirstStageDecision) Stage() Stage   { return StageFirst }
func (d FirstStageDecision) String() string { return string(d) }

type SecondStageDecision string

const (
	Approve SecondStageDecision = "Approve"
	Reject  SecondStageDecision = "Reject"
)

func (d SecondStageDecision) Stage() Stage   { return StageSecond }
func (d SecondStageDecision) String() string { return string(d) }

var firstStageOutcome = map[FirstStageDecision]models.ReviewStatus{
	Retain: models.ReviewRetained,
	Revoke: models.ReviewRevoked,
	Modify: models.ReviewModified,
}

var secondStageOutcome = map[SecondStageDecision]models.ReviewStatus{
	Approve: models.ReviewApproved,
	Reject:  models.ReviewRejected,
}

// ParseDecision resolves an action name, case-insensitively.
func ParseDecision(action string) (Decision, error) {
	a := strings.TrimSpace(action)
	for d := range firstStageOutcome {
		if strings.EqualFold(a, string(d)) {
			return d, nil
		}
	}
	for d := range secondStageOutcome {
		if strings.EqualFold(a, string(d)) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
}

// Apply returns rec after decision d. The input is never modified; on error
// the returned record equals rec.
func Apply(rec models.AccessRecord, d Decision, comment, actor string, now time.Time) (models.AccessRecord, error) {
	comment = strings.TrimSpace(comment)
	if strings.TrimSpace(actor) == "" {
		actor = DefaultActor
	}
	if got := StageOf(rec.ReviewStatus); got != d.Stage() {
		return rec, fmt.Errorf("%w: %s on %s record %s", ErrInvalidTransition, d, rec.ReviewStatus, rec.ID)
	}

	next := rec.Clone()
	switch d := d.(type) {
	case FirstStageDecision:
		if d == Modify && comment == "" {
			return rec, fmt.Errorf("%w for %s", ErrCommentRequired, d)
		}
		submitted := now
		next.ReviewStatus = firstStageOutcome[d]
		next.Recommendation = models.Recommendation(d)
		next.ReviewComment = comment
		next.DateSubmitted = &submitted
	case SecondStageDecision:
		next.ReviewStatus = secondStageOutcome[d]
	default:
		return rec, fmt.Errorf("%w: %v", ErrUnknownAction, d)
	}

	entry := models.HistoryEntry{
		Action: historyLabel(d.String(), comment),
		Date:   now.Format(HistoryDateLayout),
		Actor:  actor,
	}
	next.History = append([]models.HistoryEntry{entry}, rec.History...)
	return next, nil
}

func historyLabel(action, comment string) string {
	if comment == "" {
		return action
	}
	return action + ": " + comment
}

// Validate checks the invariants every stored record must satisfy.
func Validate(rec models.AccessRecord) error {
	switch {
	case strings.TrimSpace(rec.UserName) == "" && strings.TrimSpace(rec.UserEmail) == "":
		return fmt.Errorf("%w: user identity is required", ErrInvalidRecord)
	case strings.TrimSpace(rec.Application) == "":
		return fmt.Errorf("%w: application is required", ErrInvalidRecord)
	case !models.ValidAccessStatus(rec.Status):
		return fmt.Errorf("%w: status %q", ErrInvalidRecord, rec.Status)
	}

	stage := StageOf(rec.ReviewStatus)
	if stage == StageDone && rec.ReviewStatus != models.ReviewApproved && rec.ReviewStatus != models.ReviewRejected {
		return fmt.Errorf("%w: review status %q", ErrInvalidRecord, rec.ReviewStatus)
	}
	if stage == StageFirst && rec.Recommendation != "" {
		return fmt.Errorf("%w: pending record carries recommendation %q", ErrInvalidRecord, rec.Recommendation)
	}
	if stage == StageSecond && firstStageOutcome[FirstStageDecision(rec.Recommendation)] != rec.ReviewStatus {
		return fmt.Errorf("%w: recommendation %q does not match %s", ErrInvalidRecord, rec.Recommendation, rec.ReviewStatus)
	}
	return nil
}
