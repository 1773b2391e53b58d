// Package seed loads the initial registry and access data into an empty
// store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"access_review/internal/auth"
	"access_review/internal/models"
	"access_review/internal/review"
	"access_review/internal/store"
)

//go:embed seed.yaml
var defaultSeed []byte

const dateLayout = "2006-01-02"

type Data struct {
	SystemUsers  []SystemUser  `yaml:"system_users"`
	Applications []Application `yaml:"applications"`
	Cycles       []Cycle       `yaml:"cycles"`
	Roles        []string      `yaml:"roles"`
	Records      []Record      `yaml:"records"`
}

type SystemUser struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
	Password   string `yaml:"password"`
}

type Application struct {
	Name        string `yaml:"name"`
	Owner       string `yaml:"owner"`
	Description string `yaml:"description"`
	UserCount   int    `yaml:"user_count"`
	Status      string `yaml:"status"`
}

type Cycle struct {
	Name     string `yaml:"name"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Status   string `yaml:"status"`
	Progress int    `yaml:"progress"`
}

type Record struct {
	UserName       string                `yaml:"user_name"`
	UserEmail      string                `yaml:"user_email"`
	BusinessUserID string                `yaml:"business_user_id"`
	Application    string                `yaml:"application"`
	Role           string                `yaml:"role"`
	Manager        string                `yaml:"manager"`
	Status         string                `yaml:"status"`
	LastLogin      string                `yaml:"last_login"`
	ReviewStatus   string                `yaml:"review_status"`
	Recommendation string                `yaml:"recommendation"`
	ReviewComment  string                `yaml:"review_comment"`
	DateSubmitted  string                `yaml:"date_submitted"`
	History        []models.HistoryEntry `yaml:"history"`
}

// Load parses the seed file at path, or the embedded default when path is
// empty.
func Load(path string) (Data, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse seed: %w", err)
	}
	return d, nil
}

// FirstSetup inserts seed data that is not present yet. Registry entries are
// matched by their unique key; cycles and access records are only loaded
// into an empty collection. Running it twice is a no-op.
func FirstSetup(ctx context.Context, st store.Store, d Data) error {
	users, err := seedSystemUsers(ctx, st, d.SystemUsers)
	if err != nil {
		return err
	}
	apps, err := seedApplications(ctx, st, d.Applications)
	if err != nil {
		return err
	}
	roles, err := seedRoles(ctx, st, d.Roles)
	if err != nil {
		return err
	}
	cycles, err := seedCycles(ctx, st, d.Cycles)
	if err != nil {
		return err
	}
	records, err := seedRecords(ctx, st, d.Records)
	if err != nil {
		return err
	}

	slog.Info("seed complete",
		"system_users", users, "applications", apps, "roles", roles, "cycles", cycles, "records", records)
	return nil
}

func seedSystemUsers(ctx context.Context, st store.Store, in []SystemUser) (int, error) {
	n := 0
	for _, su := range in {
		_, err := st.GetSystemUserByEmail(ctx, su.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return n, err
		}

		u := models.SystemUser{
			Name:       su.Name,
			Email:      su.Email,
			Role:       models.SystemRole(su.Role),
			Department: su.Department,
			Status:     models.StatusActive,
		}
		if !models.ValidSystemRole(u.Role) {
			return n, fmt.Errorf("seed system user %s: invalid role %q", su.Email, su.Role)
		}
		if su.Password != "" {
			if u.PasswordHash, err = auth.HashPassword(su.Password); err != nil {
				return n, err
			}
		}
		if _, err := st.CreateSystemUser(ctx, u); err != nil {
			return n, fmt.Errorf("seed system user %s: %w", su.Email, err)
		}
		n++
	}
	return n, nil
}

func seedApplications(ctx context.Context, st store.Store, in []Application) (int, error) {
	n := 0
	for _, a := range in {
		_, err := st.GetApplicationByName(ctx, a.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return n, err
		}
		status := models.LifecycleStatus(a.Status)
		if status == "" {
			status = models.StatusActive
		}
		if _, err := st.CreateApplication(ctx, models.Application{
			Name:        a.Name,
			Owner:       a.Owner,
			Description: a.Description,
			UserCount:   a.UserCount,
			Status:      status,
		}); err != nil {
			return n, fmt.Errorf("seed application %s: %w", a.Name, err)
		}
		n++
	}
	return n, nil
}

func seedRoles(ctx context.Context, st store.Store, in []string) (int, error) {
	n := 0
	for _, name := range in {
		if _, err := st.CreateRole(ctx, models.Role{Name: name}); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return n, fmt.Errorf("seed role %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

func seedCycles(ctx context.Context, st store.Store, in []Cycle) (int, error) {
	existing, err := st.ListCycles(ctx)
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	// Insert oldest last so list order matches the file.
	for i := len(in) - 1; i >= 0; i-- {
		c := in[i]
		start, err := time.Parse(dateLayout, c.Start)
		if err != nil {
			return 0, fmt.Errorf("seed cycle %s: %w", c.Name, err)
		}
		end, err := time.Parse(dateLayout, c.End)
		if err != nil {
			return 0, fmt.Errorf("seed cycle %s: %w", c.Name, err)
		}
		if _, err := st.CreateCycle(ctx, models.ReviewCycle{
			Name:      c.Name,
			StartDate: start,
			EndDate:   end,
			Status:    models.CycleStatus(c.Status),
			Progress:  c.Progress,
		}); err != nil {
			return 0, fmt.Errorf("seed cycle %s: %w", c.Name, err)
		}
	}
	return len(in), nil
}

func seedRecords(ctx context.Context, st store.Store, in []Record) (int, error) {
	existing, err := st.ListRecords(ctx)
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	for i := len(in) - 1; i >= 0; i-- {
		rec, err := in[i].model()
		if err != nil {
			return 0, err
		}
		if _, err := st.CreateRecord(ctx, rec); err != nil {
			return 0, fmt.Errorf("seed record %s: %w", rec.UserEmail, err)
		}
	}
	return len(in), nil
}

func (r Record) model() (models.AccessRecord, error) {
	rec := models.AccessRecord{
		UserName:       r.UserName,
		UserEmail:      r.UserEmail,
		BusinessUserID: r.BusinessUserID,
		Application:    r.Application,
		Role:           r.Role,
		Manager:        r.Manager,
		Status:         models.LifecycleStatus(r.Status),
		ReviewStatus:   models.ReviewStatus(r.ReviewStatus),
		Recommendation: models.Recommendation(r.Recommendation),
		ReviewComment:  r.ReviewComment,
		History:        r.History,
	}
	if rec.Status == "" {
		rec.Status = models.StatusActive
	}
	if rec.ReviewStatus == "" {
		rec.ReviewStatus = models.ReviewPending
	}
	if rec.History == nil {
		rec.History = []models.HistoryEntry{}
	}

	var err error
	if rec.LastLogin, err = optionalDate(r.LastLogin); err != nil {
		return rec, fmt.Errorf("seed record %s: %w", r.UserEmail, err)
	}
	if rec.DateSubmitted, err = optionalDate(r.DateSubmitted); err != nil {
		return rec, fmt.Errorf("seed record %s: %w", r.UserEmail, err)
	}
	if err := review.Validate(rec); err != nil {
		return rec, fmt.Errorf("seed record %s: %w", r.UserEmail, err)
	}
	return rec, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
