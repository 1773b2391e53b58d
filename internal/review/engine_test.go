package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access_review/internal/models"
)

var fixedNow = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

func pending(id string) models.AccessRecord {
	return models.AccessRecord{
		ID:           id,
		UserName:     "Olivia Martin",
		UserEmail:    "olivia.martin@example.com",
		Application:  "Salesforce",
		Role:         "Admin",
		Manager:      "John Doe",
		Status:       models.StatusActive,
		ReviewStatus: models.ReviewPending,
		History:      []models.HistoryEntry{},
	}
}

func mustApply(t *testing.T, rec models.AccessRecord, action, comment, actor string) models.AccessRecord {
	t.Helper()
	d, err := ParseDecision(action)
	require.NoError(t, err)
	out, err := Apply(rec, d, comment, actor, fixedNow)
	require.NoError(t, err)
	return out
}

func TestParseDecision(t *testing.T) {
	for in, want := range map[string]Decision{
		"Retain":   Retain,
		"revoke":   Revoke,
		" MODIFY ": Modify,
		"Approve":  Approve,
		"reject":   Reject,
	} {
		got, err := ParseDecision(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseDecision("Escalate")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestApply_FirstStageTransitions(t *testing.T) {
	tests := []struct {
		action  string
		comment string
		status  models.ReviewStatus
		rec     models.Recommendation
		label   string
	}{
		{"Retain", "", models.ReviewRetained, models.RecommendRetain, "Retain"},
		{"Retain", "still needed", models.ReviewRetained, models.RecommendRetain, "Retain: still needed"},
		{"Revoke", "left team", models.ReviewRevoked, models.RecommendRevoke, "Revoke: left team"},
		{"Modify", "downgrade to Viewer", models.ReviewModified, models.RecommendModify, "Modify: downgrade to Viewer"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			out := mustApply(t, pending("1"), tt.action, tt.comment, "Mgr A")

			assert.Equal(t, tt.status, out.ReviewStatus)
			assert.Equal(t, tt.rec, out.Recommendation)
			assert.Equal(t, tt.comment, out.ReviewComment)
			require.NotNil(t, out.DateSubmitted)
			assert.True(t, out.DateSubmitted.Equal(fixedNow))
			require.Len(t, out.History, 1)
			assert.Equal(t, tt.label, out.History[0].Action)
			assert.Equal(t, "Oct 16, 2026", out.History[0].Date)
			assert.Equal(t, "Mgr A", out.History[0].Actor)
			assert.NoError(t, Validate(out))
		})
	}
}

func TestApply_SecondStageTransitions(t *testing.T) {
	for _, from := range []string{"Retain", "Revoke", "Modify"} {
		staged := mustApply(t, pending("1"), from, "because", "Mgr A")

		approved := mustApply(t, staged, "Approve", "", "Owner B")
		assert.Equal(t, models.ReviewApproved, approved.ReviewStatus)
		assert.Equal(t, staged.Recommendation, approved.Recommendation)
		assert.Equal(t, "Approve", approved.History[0].Action)

		rejected := mustApply(t, staged, "Reject", "not justified", "Owner B")
		assert.Equal(t, models.ReviewRejected, rejected.ReviewStatus)
		assert.Equal(t, "Reject: not justified", rejected.History[0].Action)
	}
}

func TestApply_InvalidPairingsLeaveRecordUnchanged(t *testing.T) {
	staged := mustApply(t, pending("1"), "Retain", "", "Mgr A")
	done := mustApply(t, staged, "Approve", "", "Owner B")

	tests := []struct {
		name   string
		rec    models.AccessRecord
		action Decision
	}{
		{"approve pending", pending("1"), Approve},
		{"reject pending", pending("1"), Reject},
		{"retain staged", staged, Retain},
		{"modify staged", staged, Modify},
		{"approve approved", done, Approve},
		{"revoke approved", done, Revoke},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.rec, tt.action, "comment", "X", fixedNow)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.rec, out)
		})
	}
}

func TestApply_TerminalStatesAreStable(t *testing.T) {
	staged := mustApply(t, pending("1"), "Revoke", "", "Mgr A")
	for _, terminal := range []models.AccessRecord{
		mustApply(t, staged, "Approve", "", "Owner B"),
		mustApply(t, staged, "Reject", "", "Owner B"),
	} {
		for _, d := range []Decision{Retain, Revoke, Modify, Approve, Reject} {
			out, err := Apply(terminal, d, "", "Someone", fixedNow)
			assert.Error(t, err)
			assert.Equal(t, terminal.ReviewStatus, out.ReviewStatus)
			assert.Len(t, out.History, len(terminal.History))
		}
	}
}

func TestApply_ModifyRequiresComment(t *testing.T) {
	rec := pending("1")
	out, err := Apply(rec, Modify, "  ", "Mgr A", fixedNow)
	assert.ErrorIs(t, err, ErrCommentRequired)
	assert.Equal(t, rec, out)
}

func TestApply_HistoryIsNewestFirst(t *testing.T) {
	rec := pending("1")
	first := mustApply(t, rec, "Retain", "ok", "Mgr A")
	second := mustApply(t, first, "Reject", "", "Owner B")

	require.Len(t, first.History, 1)
	require.Len(t, second.History, 2)
	assert.Equal(t, "Reject", second.History[0].Action)
	assert.Equal(t, "Owner B", second.History[0].Actor)
	assert.Equal(t, "Retain: ok", second.History[1].Action)
	assert.Equal(t, "Mgr A", second.History[1].Actor)

	// the input record is never modified
	assert.Empty(t, rec.History)
	assert.Len(t, first.History, 1)
}

func TestApply_DefaultActor(t *testing.T) {
	out := mustApply(t, pending("1"), "Retain", "", "")
	assert.Equal(t, DefaultActor, out.History[0].Actor)
}

func TestApply_EndToEndModifyThenApprove(t *testing.T) {
	rec := mustApply(t, pending("1"), "Modify", "change role", "Mgr A")
	assert.Equal(t, models.ReviewModified, rec.ReviewStatus)
	assert.Equal(t, models.RecommendModify, rec.Recommendation)
	assert.Equal(t, "change role", rec.ReviewComment)
	require.Len(t, rec.History, 1)
	assert.Equal(t, models.HistoryEntry{Action: "Modify: change role", Date: "Oct 16, 2026", Actor: "Mgr A"}, rec.History[0])

	rec = mustApply(t, rec, "Approve", "", "Owner B")
	assert.Equal(t, models.ReviewApproved, rec.ReviewStatus)
	require.Len(t, rec.History, 2)
	assert.Equal(t, "Owner B", rec.History[0].Actor)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(pending("1")))

	noApp := pending("1")
	noApp.Application = ""
	assert.ErrorIs(t, Validate(noApp), ErrInvalidRecord)

	noUser := pending("1")
	noUser.UserName, noUser.UserEmail = "", ""
	assert.ErrorIs(t, Validate(noUser), ErrInvalidRecord)

	badStatus := pending("1")
	badStatus.Status = models.StatusMaintenance
	assert.ErrorIs(t, Validate(badStatus), ErrInvalidRecord)

	early := pending("1")
	early.Recommendation = models.RecommendRetain
	assert.ErrorIs(t, Validate(early), ErrInvalidRecord)

	mismatched := pending("1")
	mismatched.ReviewStatus = models.ReviewRevoked
	mismatched.Recommendation = models.RecommendRetain
	assert.ErrorIs(t, Validate(mismatched), ErrInvalidRecord)
}
