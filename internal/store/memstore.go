package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"access_review/internal/models"
)

// MemStore keeps every collection in process memory. Each mutation builds a
// new slice and swaps it in under the write lock, so readers holding an older
// slice never see it change.
type MemStore struct {
	mu sync.RWMutex

	records []models.AccessRecord
	users   []models.SystemUser
	apps    []models.Application
	cycles  []models.ReviewCycle
	roles   []models.Role
	audit   []models.AuditLog

	auditSeq int64
	now      func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{now: time.Now}
}

// --- copy-on-write helpers ---

func prepended[T any](items []T, v T) []T {
	next := make([]T, 0, len(items)+1)
	next = append(next, v)
	return append(next, items...)
}

func replacedAt[T any](items []T, i int, v T) []T {
	next := make([]T, len(items))
	copy(next, items)
	next[i] = v
	return next
}

func withoutAt[T any](items []T, i int) []T {
	next := make([]T, 0, len(items)-1)
	next = append(next, items[:i]...)
	return append(next, items[i+1:]...)
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i := range items {
		if match(items[i]) {
			return i
		}
	}
	return -1
}

// --- records ---

func (m *MemStore) ListRecords(ctx context.Context) ([]models.AccessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AccessRecord, len(m.records))
	for i, r := range m.records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *MemStore) GetRecord(ctx context.Context, id string) (models.AccessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.records, func(r models.AccessRecord) bool { return r.ID == id })
	if i < 0 {
		return models.AccessRecord{}, fmt.Errorf("access record %s: %w", id, ErrNotFound)
	}
	return m.records[i].Clone(), nil
}

func (m *MemStore) CreateRecord(ctx context.Context, rec models.AccessRecord) (models.AccessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = NewID()
	} else if indexOf(m.records, func(r models.AccessRecord) bool { return r.ID == rec.ID }) >= 0 {
		return models.AccessRecord{}, fmt.Errorf("access record %s: %w", rec.ID, ErrConflict)
	}
	now := m.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	if rec.History == nil {
		rec.History = []models.HistoryEntry{}
	}
	rec = rec.Clone()
	m.records = prepended(m.records, rec)
	return rec.Clone(), nil
}

func (m *MemStore) MutateRecord(ctx context.Context, id string, fn MutateFunc) (models.AccessRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.records, func(r models.AccessRecord) bool { return r.ID == id })
	if i < 0 {
		return models.AccessRecord{}, fmt.Errorf("access record %s: %w", id, ErrNotFound)
	}
	next, err := fn(m.records[i].Clone())
	if err != nil {
		return m.records[i].Clone(), err
	}
	next.ID = id
	next.CreatedAt = m.records[i].CreatedAt
	next.UpdatedAt = m.now()
	next = next.Clone()
	m.records = replacedAt(m.records, i, next)
	return next.Clone(), nil
}

func (m *MemStore) DeleteRecord(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.records, func(r models.AccessRecord) bool { return r.ID == id }); i >= 0 {
		m.records = withoutAt(m.records, i)
	}
	return nil
}

// --- system users ---

func (m *MemStore) ListSystemUsers(ctx context.Context) ([]models.SystemUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.SystemUser(nil), m.users...), nil
}

func (m *MemStore) GetSystemUser(ctx context.Context, id string) (models.SystemUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.users, func(u models.SystemUser) bool { return u.ID == id })
	if i < 0 {
		return models.SystemUser{}, fmt.Errorf("system user %s: %w", id, ErrNotFound)
	}
	return m.users[i], nil
}

func (m *MemStore) GetSystemUserByEmail(ctx context.Context, email string) (models.SystemUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.users, func(u models.SystemUser) bool { return strings.EqualFold(u.Email, email) })
	if i < 0 {
		return models.SystemUser{}, fmt.Errorf("system user %s: %w", email, ErrNotFound)
	}
	return m.users[i], nil
}

func (m *MemStore) CreateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.users, func(x models.SystemUser) bool { return strings.EqualFold(x.Email, u.Email) }) >= 0 {
		return models.SystemUser{}, fmt.Errorf("system user %s: %w", u.Email, ErrConflict)
	}
	if u.ID == "" {
		u.ID = NewID()
	}
	now := m.now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users = prepended(m.users, u)
	return u, nil
}

func (m *MemStore) UpdateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.users, func(x models.SystemUser) bool { return x.ID == u.ID })
	if i < 0 {
		return models.SystemUser{}, fmt.Errorf("system user %s: %w", u.ID, ErrNotFound)
	}
	if indexOf(m.users, func(x models.SystemUser) bool { return x.ID != u.ID && strings.EqualFold(x.Email, u.Email) }) >= 0 {
		return models.SystemUser{}, fmt.Errorf("system user %s: %w", u.Email, ErrConflict)
	}
	u.CreatedAt = m.users[i].CreatedAt
	u.UpdatedAt = m.now()
	m.users = replacedAt(m.users, i, u)
	return u, nil
}

func (m *MemStore) DeleteSystemUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.users, func(u models.SystemUser) bool { return u.ID == id }); i >= 0 {
		m.users = withoutAt(m.users, i)
	}
	return nil
}

// --- applications ---

func (m *MemStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Application(nil), m.apps...), nil
}

func (m *MemStore) GetApplicationByName(ctx context.Context, name string) (models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.apps, func(a models.Application) bool { return a.Name == name })
	if i < 0 {
		return models.Application{}, fmt.Errorf("application %q: %w", name, ErrNotFound)
	}
	return m.apps[i], nil
}

func (m *MemStore) CreateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.apps, func(a models.Application) bool { return a.Name == app.Name }) >= 0 {
		return models.Application{}, fmt.Errorf("application %q: %w", app.Name, ErrConflict)
	}
	if app.ID == "" {
		app.ID = NewID()
	}
	now := m.now()
	app.CreatedAt, app.LastUpdated = now, now
	m.apps = prepended(m.apps, app)
	return app, nil
}

func (m *MemStore) UpdateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.apps, func(a models.Application) bool { return a.ID == app.ID })
	if i < 0 {
		return models.Application{}, fmt.Errorf("application %s: %w", app.ID, ErrNotFound)
	}
	if indexOf(m.apps, func(a models.Application) bool { return a.ID != app.ID && a.Name == app.Name }) >= 0 {
		return models.Application{}, fmt.Errorf("application %q: %w", app.Name, ErrConflict)
	}
	app.CreatedAt = m.apps[i].CreatedAt
	app.LastUpdated = m.now()
	m.apps = replacedAt(m.apps, i, app)
	return app, nil
}

func (m *MemStore) DeleteApplication(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.apps, func(a models.Application) bool { return a.ID == id }); i >= 0 {
		m.apps = withoutAt(m.apps, i)
	}
	return nil
}

// --- review cycles ---

func (m *MemStore) ListCycles(ctx context.Context) ([]models.ReviewCycle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.ReviewCycle(nil), m.cycles...), nil
}

func (m *MemStore) CreateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = NewID()
	}
	now := m.now()
	c.CreatedAt, c.UpdatedAt = now, now
	m.cycles = prepended(m.cycles, c)
	return c, nil
}

func (m *MemStore) UpdateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.cycles, func(x models.ReviewCycle) bool { return x.ID == c.ID })
	if i < 0 {
		return models.ReviewCycle{}, fmt.Errorf("review cycle %s: %w", c.ID, ErrNotFound)
	}
	c.CreatedAt = m.cycles[i].CreatedAt
	c.UpdatedAt = m.now()
	m.cycles = replacedAt(m.cycles, i, c)
	return c, nil
}

func (m *MemStore) DeleteCycle(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := indexOf(m.cycles, func(c models.ReviewCycle) bool { return c.ID == id }); i >= 0 {
		m.cycles = withoutAt(m.cycles, i)
	}
	return nil
}

// --- roles ---

func (m *MemStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Role(nil), m.roles...), nil
}

func (m *MemStore) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.roles, func(r models.Role) bool { return r.Name == name })
	if i < 0 {
		return models.Role{}, fmt.Errorf("role %q: %w", name, ErrNotFound)
	}
	return m.roles[i], nil
}

func (m *MemStore) CreateRole(ctx context.Context, r models.Role) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.roles, func(x models.Role) bool { return x.Name == r.Name }) >= 0 {
		return models.Role{}, fmt.Errorf("role %q: %w", r.Name, ErrConflict)
	}
	if r.ID == "" {
		r.ID = NewID()
	}
	r.CreatedAt = m.now()
	// roles list in creation order, like GET /roles/ on the old backend
	m.roles = append(append([]models.Role(nil), m.roles...), r)
	return r, nil
}

// --- audit ---

func (m *MemStore) AppendAudit(ctx context.Context, e *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auditSeq++
	e.ID = m.auditSeq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	m.audit = prepended(m.audit, *e)
	return nil
}

func (m *MemStore) ListAudit(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var out []models.AuditLog
	for _, e := range m.audit {
		if q.AfterID > 0 && e.ID >= q.AfterID {
			continue
		}
		if search != "" && !auditMatches(e, search) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func auditMatches(e models.AuditLog, lowered string) bool {
	for _, f := range []string{e.InitiatorName, e.Action, e.ResourceType, e.IP} {
		if strings.Contains(strings.ToLower(f), lowered) {
			return true
		}
	}
	return false
}
