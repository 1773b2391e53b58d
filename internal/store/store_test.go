package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"access_review/internal/models"
)

func newSQLiteStore(t *testing.T) *GormStore {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "review.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(Models()...))
	return NewGormStore(gdb)
}

// eachStore runs the same contract against every implementation.
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

func pendingRecord(user, app string) models.AccessRecord {
	return models.AccessRecord{
		UserName:     user,
		UserEmail:    user + "@example.com",
		Application:  app,
		Role:         "Viewer",
		Status:       models.StatusActive,
		ReviewStatus: models.ReviewPending,
	}
}

func TestRecords_CreateGetList(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		first, err := s.CreateRecord(ctx, pendingRecord("olivia", "Salesforce"))
		require.NoError(t, err)
		second, err := s.CreateRecord(ctx, pendingRecord("jackson", "Jira"))
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.NotNil(t, first.History)
		assert.Empty(t, first.History)

		got, err := s.GetRecord(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "olivia", got.UserName)
		assert.Equal(t, models.ReviewPending, got.ReviewStatus)

		all, err := s.ListRecords(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID, "newest first")
	})
}

func TestRecords_GetUnknown(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		_, err := s.GetRecord(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecords_MutatePersistsHistory(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.CreateRecord(ctx, pendingRecord("olivia", "Salesforce"))
		require.NoError(t, err)

		updated, err := s.MutateRecord(ctx, rec.ID, func(r models.AccessRecord) (models.AccessRecord, error) {
			r.ReviewStatus = models.ReviewRetained
			r.Recommendation = models.RecommendRetain
			r.History = append([]models.HistoryEntry{{Action: "Retain", Date: "Oct 16, 2026", Actor: "Mgr"}}, r.History...)
			return r, nil
		})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, updated.ID)

		got, err := s.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewRetained, got.ReviewStatus)
		require.Len(t, got.History, 1)
		assert.Equal(t, "Mgr", got.History[0].Actor)
	})
}

func TestRecords_MutateErrorLeavesRecord(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.CreateRecord(ctx, pendingRecord("olivia", "Salesforce"))
		require.NoError(t, err)

		boom := assert.AnError
		_, err = s.MutateRecord(ctx, rec.ID, func(r models.AccessRecord) (models.AccessRecord, error) {
			r.ReviewStatus = models.ReviewApproved
			return r, boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ReviewPending, got.ReviewStatus)

		_, err = s.MutateRecord(ctx, "missing", func(r models.AccessRecord) (models.AccessRecord, error) { return r, nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecords_DeleteIsIdempotent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.CreateRecord(ctx, pendingRecord("olivia", "Salesforce"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteRecord(ctx, rec.ID))
		require.NoError(t, s.DeleteRecord(ctx, rec.ID))
		require.NoError(t, s.DeleteRecord(ctx, "never-existed"))

		all, err := s.ListRecords(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestSystemUsers_CRUD(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u, err := s.CreateSystemUser(ctx, models.SystemUser{Name: "Alex Doe", Email: "alex@xyz.com", Role: models.RoleAppManager, Status: models.StatusActive})
		require.NoError(t, err)

		_, err = s.CreateSystemUser(ctx, models.SystemUser{Name: "Other", Email: "ALEX@xyz.com", Role: models.RoleAdmin})
		assert.ErrorIs(t, err, ErrConflict)

		byEmail, err := s.GetSystemUserByEmail(ctx, "Alex@XYZ.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		u.Department = "IT Security"
		updated, err := s.UpdateSystemUser(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "IT Security", updated.Department)

		_, err = s.UpdateSystemUser(ctx, models.SystemUser{ID: "missing", Email: "x@y.z"})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteSystemUser(ctx, u.ID))
		_, err = s.GetSystemUser(ctx, u.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteSystemUser_DoesNotTouchRecords(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u, err := s.CreateSystemUser(ctx, models.SystemUser{Name: "John Doe", Email: "john@xyz.com", Role: models.RoleAppOwner})
		require.NoError(t, err)
		rec := pendingRecord("olivia", "Salesforce")
		rec.Manager = "John Doe"
		rec, err = s.CreateRecord(ctx, rec)
		require.NoError(t, err)

		require.NoError(t, s.DeleteSystemUser(ctx, u.ID))

		got, err := s.GetRecord(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "John Doe", got.Manager)
		assert.Equal(t, models.ReviewPending, got.ReviewStatus)
	})
}

func TestApplications_CRUD(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		app, err := s.CreateApplication(ctx, models.Application{Name: "Salesforce", Owner: "John Doe", UserCount: 85, Status: models.StatusActive})
		require.NoError(t, err)

		_, err = s.CreateApplication(ctx, models.Application{Name: "Salesforce"})
		assert.ErrorIs(t, err, ErrConflict)

		got, err := s.GetApplicationByName(ctx, "Salesforce")
		require.NoError(t, err)
		assert.Equal(t, app.ID, got.ID)

		_, err = s.GetApplicationByName(ctx, "Unknown")
		assert.ErrorIs(t, err, ErrNotFound)

		app.Status = models.StatusMaintenance
		updated, err := s.UpdateApplication(ctx, app)
		require.NoError(t, err)
		assert.Equal(t, models.StatusMaintenance, updated.Status)

		require.NoError(t, s.DeleteApplication(ctx, app.ID))
		apps, err := s.ListApplications(ctx)
		require.NoError(t, err)
		assert.Empty(t, apps)
	})
}

func TestCyclesAndRoles(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		c, err := s.CreateCycle(ctx, models.ReviewCycle{Name: "Q3 Security Review", Status: models.CycleActive, Progress: 75})
		require.NoError(t, err)
		c.Progress = 100
		c.Status = models.CycleCompleted
		_, err = s.UpdateCycle(ctx, c)
		require.NoError(t, err)
		cycles, err := s.ListCycles(ctx)
		require.NoError(t, err)
		require.Len(t, cycles, 1)
		assert.Equal(t, 100, cycles[0].Progress)
		require.NoError(t, s.DeleteCycle(ctx, c.ID))

		_, err = s.CreateRole(ctx, models.Role{Name: "Admin"})
		require.NoError(t, err)
		_, err = s.CreateRole(ctx, models.Role{Name: "Viewer"})
		require.NoError(t, err)
		_, err = s.CreateRole(ctx, models.Role{Name: "Admin"})
		assert.ErrorIs(t, err, ErrConflict)

		roles, err := s.ListRoles(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, "Admin", roles[0].Name)
	})
}

func TestAudit_CursorAndSearch(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, a := range []string{"access_record.review", "system_user.delete", "access_record.review"} {
			require.NoError(t, s.AppendAudit(ctx, &models.AuditLog{Action: a, ResourceType: "test", InitiatorName: "Mgr A"}))
		}

		page, err := s.ListAudit(ctx, AuditQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Greater(t, page[0].ID, page[1].ID)

		rest, err := s.ListAudit(ctx, AuditQuery{Limit: 10, AfterID: page[1].ID})
		require.NoError(t, err)
		require.Len(t, rest, 1)

		hits, err := s.ListAudit(ctx, AuditQuery{Search: "delete"})
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "system_user.delete", hits[0].Action)
	})
}
