package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"access_review/internal/events"
	"access_review/internal/metrics"
	"access_review/internal/models"
	"access_review/internal/store"
)

var businessUserIDPattern = regexp.MustCompile(`^(IPAMC|EXTA)\d+$`)

// Publisher receives record change notifications.
type Publisher interface {
	Publish(events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// Service runs workflow operations against a store. Each operation is a
// single store transaction.
type Service struct {
	store  store.Store
	events Publisher
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, events: nopPublisher{}, log: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PerformReviewAction applies action to the record with the given id.
// Invalid stage/action pairings return ErrInvalidTransition and leave the
// record unchanged.
func (s *Service) PerformReviewAction(ctx context.Context, id, action, comment, actor string) (models.AccessRecord, error) {
	d, err := ParseDecision(action)
	if err != nil {
		metrics.ReviewActionsTotal.WithLabelValues("unknown", "invalid_action").Inc()
		return models.AccessRecord{}, err
	}

	now := s.now()
	rec, err := s.store.MutateRecord(ctx, id, func(cur models.AccessRecord) (models.AccessRecord, error) {
		return Apply(cur, d, comment, actor, now)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidTransition):
		s.log.Warn("rejected review action",
			"record_id", id, "action", d.String(), "review_status", rec.ReviewStatus, "actor", actor)
		metrics.ReviewActionsTotal.WithLabelValues(d.String(), "invalid_transition").Inc()
		return rec, err
	case errors.Is(err, store.ErrNotFound):
		metrics.ReviewActionsTotal.WithLabelValues(d.String(), "not_found").Inc()
		return models.AccessRecord{}, err
	default:
		metrics.ReviewActionsTotal.WithLabelValues(d.String(), "error").Inc()
		return rec, err
	}

	metrics.ReviewActionsTotal.WithLabelValues(d.String(), "applied").Inc()
	s.log.Info("review action applied",
		"record_id", id, "action", d.String(), "review_status", rec.ReviewStatus, "actor", rec.History[0].Actor)
	s.publish(events.RecordReviewed, rec)
	return rec, nil
}

// BulkResult is the outcome of one id in a bulk review.
type BulkResult struct {
	ID     string               `json:"id"`
	Record *models.AccessRecord `json:"record,omitempty"`
	Error  string               `json:"error,omitempty"`
	Err    error                `json:"-"`
}

// PerformBulkReviewAction applies the same action to every id independently.
// A failure on one id does not undo the others.
func (s *Service) PerformBulkReviewAction(ctx context.Context, ids []string, action, comment, actor string) []BulkResult {
	out := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		rec, err := s.PerformReviewAction(ctx, id, action, comment, actor)
		res := BulkResult{ID: id, Err: err}
		if err != nil {
			res.Error = err.Error()
		} else {
			r := rec
			res.Record = &r
		}
		out = append(out, res)
	}
	return out
}

// GrantInput describes a new access grant made by an application manager.
type GrantInput struct {
	UserName       string                 `json:"userName"`
	UserEmail      string                 `json:"userEmail"`
	UserAvatar     string                 `json:"userAvatar"`
	BusinessUserID string                 `json:"businessUserId"`
	Application    string                 `json:"application"`
	Role           string                 `json:"role"`
	Manager        string                 `json:"manager"`
	Status         models.LifecycleStatus `json:"status"`
	LastLogin      *time.Time             `json:"lastLogin"`
}

func (in GrantInput) record() models.AccessRecord {
	status := in.Status
	if status == "" {
		status = models.StatusActive
	}
	return models.AccessRecord{
		UserName:       strings.TrimSpace(in.UserName),
		UserEmail:      strings.TrimSpace(strings.ToLower(in.UserEmail)),
		UserAvatar:     in.UserAvatar,
		BusinessUserID: strings.TrimSpace(in.BusinessUserID),
		Application:    strings.TrimSpace(in.Application),
		Role:           strings.TrimSpace(in.Role),
		Manager:        strings.TrimSpace(in.Manager),
		Status:         status,
		LastLogin:      in.LastLogin,
		ReviewStatus:   models.ReviewPending,
		History:        []models.HistoryEntry{},
	}
}

func validateBusinessUserID(id string, required bool) error {
	if id == "" && !required {
		return nil
	}
	if !businessUserIDPattern.MatchString(id) {
		return fmt.Errorf("%w: businessUserId must match IPAMC/EXTA followed by digits, e.g. IPAMC20, EXTA341", ErrInvalidRecord)
	}
	return nil
}

// GrantAccess creates a Pending record with an empty history.
func (s *Service) GrantAccess(ctx context.Context, in GrantInput) (models.AccessRecord, error) {
	rec := in.record()
	if err := validateBusinessUserID(rec.BusinessUserID, false); err != nil {
		return models.AccessRecord{}, err
	}
	if err := Validate(rec); err != nil {
		return models.AccessRecord{}, err
	}
	created, err := s.store.CreateRecord(ctx, rec)
	if err != nil {
		return models.AccessRecord{}, fmt.Errorf("grant access: %w", err)
	}
	metrics.RecordsGrantedTotal.Inc()
	s.log.Info("access granted", "record_id", created.ID, "application", created.Application, "user", created.UserEmail)
	s.publish(events.RecordCreated, created)
	return created, nil
}

// OnboardInput is the combined user, access and role payload sent by the
// application manager dashboard.
type OnboardInput struct {
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	BusinessUserID string                 `json:"businessUserId"`
	Application    string                 `json:"application"`
	Role           string                 `json:"role"`
	Status         models.LifecycleStatus `json:"status"`
}

var ErrUnknownApplication = errors.New("application not found")

// Onboard grants access to a registered application, creating the role when
// it is new. A repeat onboarding for the same email and application updates
// the existing record's role and status instead of adding a second one.
func (s *Service) Onboard(ctx context.Context, in OnboardInput) (models.AccessRecord, error) {
	in.BusinessUserID = strings.TrimSpace(in.BusinessUserID)
	if err := validateBusinessUserID(in.BusinessUserID, true); err != nil {
		return models.AccessRecord{}, err
	}
	if strings.TrimSpace(in.Role) == "" {
		return models.AccessRecord{}, fmt.Errorf("%w: role is required", ErrInvalidRecord)
	}
	app, err := s.store.GetApplicationByName(ctx, strings.TrimSpace(in.Application))
	if errors.Is(err, store.ErrNotFound) {
		return models.AccessRecord{}, fmt.Errorf("%w: application '%s' not found", ErrUnknownApplication, in.Application)
	}
	if err != nil {
		return models.AccessRecord{}, err
	}
	if err := s.ensureRole(ctx, strings.TrimSpace(in.Role)); err != nil {
		return models.AccessRecord{}, err
	}

	grant := GrantInput{
		UserName:       in.Name,
		UserEmail:      in.Email,
		BusinessUserID: in.BusinessUserID,
		Application:    app.Name,
		Role:           in.Role,
		Manager:        app.Owner,
		Status:         in.Status,
	}

	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return models.AccessRecord{}, err
	}
	for _, r := range recs {
		if r.Application == app.Name && strings.EqualFold(r.UserEmail, strings.TrimSpace(in.Email)) {
			want := grant.record()
			return s.UpdateRecord(ctx, r.ID, RecordDetails{
				UserName:       want.UserName,
				UserEmail:      want.UserEmail,
				BusinessUserID: want.BusinessUserID,
				Application:    want.Application,
				Role:           want.Role,
				Manager:        want.Manager,
				Status:         want.Status,
			})
		}
	}
	return s.GrantAccess(ctx, grant)
}

func (s *Service) ensureRole(ctx context.Context, name string) error {
	_, err := s.store.GetRoleByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := s.store.CreateRole(ctx, models.Role{Name: name}); err != nil && !errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("create role %q: %w", name, err)
	}
	s.log.Info("role created on onboarding", "role", name)
	return nil
}

// RecordDetails are the descriptive fields of a record. Review state and
// history cannot be changed through an update.
type RecordDetails struct {
	UserName       string                 `json:"userName"`
	UserEmail      string                 `json:"userEmail"`
	UserAvatar     string                 `json:"userAvatar"`
	BusinessUserID string                 `json:"businessUserId"`
	Application    string                 `json:"application"`
	Role           string                 `json:"role"`
	Manager        string                 `json:"manager"`
	Status         models.LifecycleStatus `json:"status"`
	LastLogin      *time.Time             `json:"lastLogin"`
}

func (s *Service) UpdateRecord(ctx context.Context, id string, d RecordDetails) (models.AccessRecord, error) {
	if err := validateBusinessUserID(d.BusinessUserID, false); err != nil {
		return models.AccessRecord{}, err
	}
	rec, err := s.store.MutateRecord(ctx, id, func(cur models.AccessRecord) (models.AccessRecord, error) {
		next := cur
		next.UserName = d.UserName
		next.UserEmail = d.UserEmail
		if d.UserAvatar != "" {
			next.UserAvatar = d.UserAvatar
		}
		next.BusinessUserID = d.BusinessUserID
		next.Application = d.Application
		next.Role = d.Role
		next.Manager = d.Manager
		if d.Status != "" {
			next.Status = d.Status
		}
		if d.LastLogin != nil {
			next.LastLogin = d.LastLogin
		}
		if err := Validate(next); err != nil {
			return cur, err
		}
		return next, nil
	})
	if err != nil {
		return models.AccessRecord{}, err
	}
	s.publish(events.RecordUpdated, rec)
	return rec, nil
}

// RemoveRecord deletes a record outside the workflow. Unknown ids are a no-op.
func (s *Service) RemoveRecord(ctx context.Context, id string) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return err
	}
	s.log.Warn("access record removed", "record_id", id)
	s.events.Publish(events.Event{Type: events.RecordDeleted, RecordID: id, At: s.now()})
	return nil
}

func (s *Service) Record(ctx context.Context, id string) (models.AccessRecord, error) {
	return s.store.GetRecord(ctx, id)
}

// Records returns the filtered record list, newest first.
func (s *Service) Records(ctx context.Context, f Filter) ([]models.AccessRecord, error) {
	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(recs), nil
}

func (s *Service) Summary(ctx context.Context) ([]AppSummary, error) {
	recs, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeByApplication(recs), nil
}

func (s *Service) publish(kind string, rec models.AccessRecord) {
	r := rec.Clone()
	s.events.Publish(events.Event{Type: kind, RecordID: rec.ID, Record: &r, At: s.now()})
}
