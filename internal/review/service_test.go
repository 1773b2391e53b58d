package review

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"access_review/internal/events"
	"access_review/internal/models"
	"access_review/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemStore, *events.Hub) {
	t.Helper()
	st := store.NewMemStore()
	hub := events.NewHub(16)
	svc := NewService(st,
		WithPublisher(hub),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, st, hub
}

func grant(t *testing.T, svc *Service, user, app string) models.AccessRecord {
	t.Helper()
	rec, err := svc.GrantAccess(context.Background(), GrantInput{
		UserName:    user,
		UserEmail:   user + "@example.com",
		Application: app,
		Role:        "Viewer",
	})
	require.NoError(t, err)
	return rec
}

func TestGrantAccess(t *testing.T) {
	svc, _, hub := newTestService(t)
	sub, cancel := hub.Subscribe()
	defer cancel()

	rec := grant(t, svc, "olivia", "Salesforce")
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, models.ReviewPending, rec.ReviewStatus)
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.NotNil(t, rec.History)
	assert.Empty(t, rec.History)
	assert.Empty(t, rec.Recommendation)

	e := <-sub
	assert.Equal(t, events.RecordCreated, e.Type)
	assert.Equal(t, rec.ID, e.RecordID)

	_, err := svc.GrantAccess(context.Background(), GrantInput{UserName: "x"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = svc.GrantAccess(context.Background(), GrantInput{UserName: "x", Application: "Jira", BusinessUserID: "ABC1"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestPerformReviewAction_RetainFromPending(t *testing.T) {
	svc, st, hub := newTestService(t)
	rec := grant(t, svc, "olivia", "Salesforce")
	sub, cancel := hub.Subscribe()
	defer cancel()

	out, err := svc.PerformReviewAction(context.Background(), rec.ID, "Retain", "needed", "Mgr A")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRetained, out.ReviewStatus)
	assert.Equal(t, models.RecommendRetain, out.Recommendation)
	assert.Contains(t, out.History[0].Action, "Retain")
	assert.Equal(t, "Mgr A", out.History[0].Actor)

	stored, err := st.GetRecord(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, out.ReviewStatus, stored.ReviewStatus)
	assert.Equal(t, out.History, stored.History)

	e := <-sub
	assert.Equal(t, events.RecordReviewed, e.Type)
	require.NotNil(t, e.Record)
	assert.Equal(t, models.ReviewRetained, e.Record.ReviewStatus)
}

func TestPerformReviewAction_Errors(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	rec := grant(t, svc, "olivia", "Salesforce")

	_, err := svc.PerformReviewAction(ctx, rec.ID, "Approve", "", "Owner B")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.PerformReviewAction(ctx, rec.ID, "Escalate", "", "Owner B")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = svc.PerformReviewAction(ctx, "missing", "Retain", "", "Mgr A")
	assert.ErrorIs(t, err, store.ErrNotFound)

	stored, err := st.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, stored.ReviewStatus)
	assert.Empty(t, stored.History)
}

func TestPerformReviewAction_EndToEnd(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	rec := grant(t, svc, "olivia", "Salesforce")

	out, err := svc.PerformReviewAction(ctx, rec.ID, "Modify", "change role", "Mgr A")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewModified, out.ReviewStatus)
	assert.Equal(t, models.RecommendModify, out.Recommendation)
	assert.Equal(t, "change role", out.ReviewComment)
	require.Len(t, out.History, 1)
	assert.Equal(t, "Modify: change role", out.History[0].Action)
	assert.Equal(t, "Mgr A", out.History[0].Actor)

	out, err = svc.PerformReviewAction(ctx, rec.ID, "Approve", "", "Owner B")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, out.ReviewStatus)
	require.Len(t, out.History, 2)
	assert.Equal(t, "Owner B", out.History[0].Actor)

	out, err = svc.PerformReviewAction(ctx, rec.ID, "Reject", "", "Owner C")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.ReviewApproved, out.ReviewStatus)
	assert.Len(t, out.History, 2)
}

func TestPerformBulkReviewAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := grant(t, svc, "olivia", "Salesforce")
	b := grant(t, svc, "jackson", "Jira")
	_, err := svc.PerformReviewAction(ctx, a.ID, "Retain", "", "Mgr")
	require.NoError(t, err)

	results := svc.PerformBulkReviewAction(ctx, []string{a.ID, b.ID, "missing"}, "Approve", "", "Owner")
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Record)
	assert.Equal(t, models.ReviewApproved, results[0].Record.ReviewStatus)

	assert.ErrorIs(t, results[1].Err, ErrInvalidTransition)
	assert.NotEmpty(t, results[1].Error)
	assert.ErrorIs(t, results[2].Err, store.ErrNotFound)
}

func TestRecordsAndSummary(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := grant(t, svc, "olivia", "Salesforce")
	b := grant(t, svc, "jackson", "Jira")
	c := grant(t, svc, "isabella", "Slack")
	for id, action := range map[string]string{a.ID: "Retain", b.ID: "Revoke"} {
		_, err := svc.PerformReviewAction(ctx, id, action, "", "Mgr")
		require.NoError(t, err)
	}
	_, err := svc.PerformReviewAction(ctx, c.ID, "Modify", "read only", "Mgr")
	require.NoError(t, err)

	second, err := svc.Records(ctx, Filter{Queue: QueueSecondStage})
	require.NoError(t, err)
	assert.Len(t, second, 3)

	done, err := svc.Records(ctx, Filter{Queue: QueueCompleted})
	require.NoError(t, err)
	assert.Empty(t, done)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	for _, s := range summary {
		assert.Equal(t, SummaryCompleted, s.Status)
	}
}

func TestUpdateRecord_KeepsReviewState(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	rec := grant(t, svc, "olivia", "Salesforce")
	_, err := svc.PerformReviewAction(ctx, rec.ID, "Retain", "", "Mgr")
	require.NoError(t, err)

	out, err := svc.UpdateRecord(ctx, rec.ID, RecordDetails{
		UserName:    "Olivia M.",
		UserEmail:   rec.UserEmail,
		Application: rec.Application,
		Role:        "Viewer",
		Status:      models.StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Olivia M.", out.UserName)
	assert.Equal(t, models.StatusInactive, out.Status)
	assert.Equal(t, models.ReviewRetained, out.ReviewStatus)
	assert.Len(t, out.History, 1)

	_, err = svc.UpdateRecord(ctx, rec.ID, RecordDetails{UserName: "x"})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = svc.UpdateRecord(ctx, "missing", RecordDetails{UserName: "x", Application: "y"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveRecord(t *testing.T) {
	svc, _, hub := newTestService(t)
	ctx := context.Background()
	rec := grant(t, svc, "olivia", "Salesforce")
	sub, cancel := hub.Subscribe()
	defer cancel()

	require.NoError(t, svc.RemoveRecord(ctx, rec.ID))
	require.NoError(t, svc.RemoveRecord(ctx, "missing"))

	_, err := svc.Record(ctx, rec.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	e := <-sub
	assert.Equal(t, events.RecordDeleted, e.Type)
}

func TestOnboard(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := st.CreateApplication(ctx, models.Application{Name: "Salesforce", Owner: "John Doe", Status: models.StatusActive})
	require.NoError(t, err)

	in := OnboardInput{
		Name:           "Chen Wei",
		Email:          "chen.wei@example.com",
		BusinessUserID: "IPAMC20",
		Application:    "Salesforce",
		Role:           "Support Agent",
		Status:         models.StatusActive,
	}
	rec, err := svc.Onboard(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPending, rec.ReviewStatus)
	assert.Equal(t, "John Doe", rec.Manager)
	assert.Equal(t, "IPAMC20", rec.BusinessUserID)

	role, err := st.GetRoleByName(ctx, "Support Agent")
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)

	in.Status = models.StatusInactive
	again, err := svc.Onboard(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)
	assert.Equal(t, models.StatusInactive, again.Status)
	all, err := st.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	in.Application = "Unknown"
	_, err = svc.Onboard(ctx, in)
	assert.ErrorIs(t, err, ErrUnknownApplication)

	in.Application = "Salesforce"
	in.BusinessUserID = "EMP1"
	_, err = svc.Onboard(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestOnboard_KeepsExistingAvatar(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	_, err := st.CreateApplication(ctx, models.Application{Name: "Jira", Owner: "John Doe", Status: models.StatusActive})
	require.NoError(t, err)

	granted, err := svc.GrantAccess(ctx, GrantInput{
		UserName:    "Chen Wei",
		UserEmail:   "chen.wei@example.com",
		UserAvatar:  "https://cdn.example.com/chen.png",
		Application: "Jira",
		Role:        "Viewer",
	})
	require.NoError(t, err)

	again, err := svc.Onboard(ctx, OnboardInput{
		Name:           "Chen Wei",
		Email:          "chen.wei@example.com",
		BusinessUserID: "IPAMC20",
		Application:    "Jira",
		Role:           "Developer",
	})
	require.NoError(t, err)
	assert.Equal(t, granted.ID, again.ID)
	assert.Equal(t, "Developer", again.Role)
	assert.Equal(t, "https://cdn.example.com/chen.png", again.UserAvatar)
}
