package review

import (
	"fmt"
	"sort"
	"strings"

	"access_review/internal/models"
)

// Queue names a derived view of the record collection.
type Queue string

const (
	QueueAll         Queue = ""
	QueueFirstStage  Queue = "first"
	QueueSecondStage Queue = "second"
	QueueCompleted   Queue = "completed"
)

// ParseQueue accepts the queue names used in query strings.
func ParseQueue(s string) (Queue, error) {
	switch q := Queue(strings.ToLower(strings.TrimSpace(s))); q {
	case QueueAll, QueueFirstStage, QueueSecondStage, QueueCompleted:
		return q, nil
	case "pending":
		return QueueFirstStage, nil
	case "business-owner", "approval":
		return QueueSecondStage, nil
	}
	return "", fmt.Errorf("unknown queue %q", s)
}

func (q Queue) matches(rec models.AccessRecord) bool {
	switch q {
	case QueueFirstStage:
		return StageOf(rec.ReviewStatus) == StageFirst
	case QueueSecondStage:
		return StageOf(rec.ReviewStatus) == StageSecond
	case QueueCompleted:
		return rec.ReviewStatus == models.ReviewApproved || rec.ReviewStatus == models.ReviewRejected
	}
	return true
}

func PendingFirstStage(recs []models.AccessRecord) []models.AccessRecord {
	return Filter{Queue: QueueFirstStage}.Apply(recs)
}

func PendingSecondStage(recs []models.AccessRecord) []models.AccessRecord {
	return Filter{Queue: QueueSecondStage}.Apply(recs)
}

func Completed(recs []models.AccessRecord) []models.AccessRecord {
	return Filter{Queue: QueueCompleted}.Apply(recs)
}

// Search keeps records whose user name, email or application contains q,
// ignoring case. An empty q keeps everything.
func Search(recs []models.AccessRecord, q string) []models.AccessRecord {
	return Filter{Query: q}.Apply(recs)
}

// Filter narrows a record list by queue, then application, then free text.
type Filter struct {
	Queue       Queue
	Application string
	Query       string
}

func (f Filter) Apply(recs []models.AccessRecord) []models.AccessRecord {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.AccessRecord, 0, len(recs))
	for _, r := range recs {
		if !f.Queue.matches(r) {
			continue
		}
		if f.Application != "" && r.Application != f.Application {
			continue
		}
		if q != "" && !matchesText(r, q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesText(r models.AccessRecord, lowered string) bool {
	return strings.Contains(strings.ToLower(r.UserName), lowered) ||
		strings.Contains(strings.ToLower(r.UserEmail), lowered) ||
		strings.Contains(strings.ToLower(r.Application), lowered)
}

const (
	SummaryCompleted  = "Completed"
	SummaryInProgress = "In Progress"
)

// AppSummary is the per-application progress shown on the manager dashboard.
type AppSummary struct {
	Application string `json:"application"`
	Total       int    `json:"total"`
	Pending     int    `json:"pending"`
	Status      string `json:"status"`
}

// SummarizeByApplication groups records by application name, sorted by name.
func SummarizeByApplication(recs []models.AccessRecord) []AppSummary {
	byName := map[string]*AppSummary{}
	for _, r := range recs {
		s, ok := byName[r.Application]
		if !ok {
			s = &AppSummary{Application: r.Application}
			byName[r.Application] = s
		}
		s.Total++
		if r.ReviewStatus == models.ReviewPending {
			s.Pending++
		}
	}
	out := make([]AppSummary, 0, len(byName))
	for _, s := range byName {
		s.Status = SummaryCompleted
		if s.Pending > 0 {
			s.Status = SummaryInProgress
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Application < out[j].Application })
	return out
}
