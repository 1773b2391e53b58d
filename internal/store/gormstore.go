package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"access_review/internal/models"
)

// GormStore persists the collections through gorm. Review mutations lock the
// record row for the duration of the transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models lists every table the store needs, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.AccessRecord{},
		&models.SystemUser{},
		&models.Application{},
		&models.ReviewCycle{},
		&models.Role{},
		&models.AuditLog{},
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// exists reports whether any row of model matches the condition.
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// --- records ---

func (s *GormStore) ListRecords(ctx context.Context) ([]models.AccessRecord, error) {
	var out []models.AccessRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) GetRecord(ctx context.Context, id string) (models.AccessRecord, error) {
	var rec models.AccessRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return models.AccessRecord{}, notFound(err, "access record "+id)
	}
	return rec, nil
}

func (s *GormStore) CreateRecord(ctx context.Context, rec models.AccessRecord) (models.AccessRecord, error) {
	if rec.ID == "" {
		rec.ID = NewID()
	}
	if rec.History == nil {
		rec.History = []models.HistoryEntry{}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.AccessRecord{}, "id = ?", rec.ID)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("access record %s: %w", rec.ID, ErrConflict)
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return models.AccessRecord{}, err
	}
	return rec, nil
}

func (s *GormStore) MutateRecord(ctx context.Context, id string, fn MutateFunc) (models.AccessRecord, error) {
	var out models.AccessRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.AccessRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&cur, "id = ?", id).Error; err != nil {
			return notFound(err, "access record "+id)
		}
		out = cur
		next, err := fn(cur.Clone())
		if err != nil {
			return err
		}
		next.ID = cur.ID
		next.CreatedAt = cur.CreatedAt
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

func (s *GormStore) DeleteRecord(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.AccessRecord{}, "id = ?", id).Error
}

// --- system users ---

func (s *GormStore) ListSystemUsers(ctx context.Context) ([]models.SystemUser, error) {
	var out []models.SystemUser
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) GetSystemUser(ctx context.Context, id string) (models.SystemUser, error) {
	var u models.SystemUser
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return models.SystemUser{}, notFound(err, "system user "+id)
	}
	return u, nil
}

func (s *GormStore) GetSystemUserByEmail(ctx context.Context, email string) (models.SystemUser, error) {
	var u models.SystemUser
	if err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return models.SystemUser{}, notFound(err, "system user "+email)
	}
	return u, nil
}

func (s *GormStore) CreateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error) {
	if u.ID == "" {
		u.ID = NewID()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.SystemUser{}, "LOWER(email) = ?", strings.ToLower(u.Email))
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("system user %s: %w", u.Email, ErrConflict)
		}
		return tx.Create(&u).Error
	})
	if err != nil {
		return models.SystemUser{}, err
	}
	return u, nil
}

func (s *GormStore) UpdateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.SystemUser
		if err := tx.First(&cur, "id = ?", u.ID).Error; err != nil {
			return notFound(err, "system user "+u.ID)
		}
		dup, err := exists(tx, &models.SystemUser{}, "id <> ? AND LOWER(email) = ?", u.ID, strings.ToLower(u.Email))
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("system user %s: %w", u.Email, ErrConflict)
		}
		u.CreatedAt = cur.CreatedAt
		return tx.Save(&u).Error
	})
	if err != nil {
		return models.SystemUser{}, err
	}
	return u, nil
}

func (s *GormStore) DeleteSystemUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.SystemUser{}, "id = ?", id).Error
}

// --- applications ---

func (s *GormStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	var out []models.Application
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) GetApplicationByName(ctx context.Context, name string) (models.Application, error) {
	var app models.Application
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&app).Error; err != nil {
		return models.Application{}, notFound(err, fmt.Sprintf("application %q", name))
	}
	return app, nil
}

func (s *GormStore) CreateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	if app.ID == "" {
		app.ID = NewID()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.Application{}, "name = ?", app.Name)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("application %q: %w", app.Name, ErrConflict)
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *GormStore) UpdateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Application
		if err := tx.First(&cur, "id = ?", app.ID).Error; err != nil {
			return notFound(err, "application "+app.ID)
		}
		dup, err := exists(tx, &models.Application{}, "id <> ? AND name = ?", app.ID, app.Name)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("application %q: %w", app.Name, ErrConflict)
		}
		app.CreatedAt = cur.CreatedAt
		return tx.Save(&app).Error
	})
	if err != nil {
		return models.Application{}, err
	}
	return app, nil
}

func (s *GormStore) DeleteApplication(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Application{}, "id = ?", id).Error
}

// --- review cycles ---

func (s *GormStore) ListCycles(ctx context.Context) ([]models.ReviewCycle, error) {
	var out []models.ReviewCycle
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) CreateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error) {
	if c.ID == "" {
		c.ID = NewID()
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.ReviewCycle{}, err
	}
	return c, nil
}

func (s *GormStore) UpdateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.ReviewCycle
		if err := tx.First(&cur, "id = ?", c.ID).Error; err != nil {
			return notFound(err, "review cycle "+c.ID)
		}
		c.CreatedAt = cur.CreatedAt
		return tx.Save(&c).Error
	})
	if err != nil {
		return models.ReviewCycle{}, err
	}
	return c, nil
}

func (s *GormStore) DeleteCycle(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.ReviewCycle{}, "id = ?", id).Error
}

// --- roles ---

func (s *GormStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	var out []models.Role
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) GetRoleByName(ctx context.Context, name string) (models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&r).Error; err != nil {
		return models.Role{}, notFound(err, fmt.Sprintf("role %q", name))
	}
	return r, nil
}

func (s *GormStore) CreateRole(ctx context.Context, r models.Role) (models.Role, error) {
	if r.ID == "" {
		r.ID = NewID()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dup, err := exists(tx, &models.Role{}, "name = ?", r.Name)
		if err != nil {
			return err
		}
		if dup {
			return fmt.Errorf("role %q: %w", r.Name, ErrConflict)
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return models.Role{}, err
	}
	return r, nil
}

// --- audit ---

func (s *GormStore) AppendAudit(ctx context.Context, e *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) ListAudit(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{}).Order("id DESC")
	if q.AfterID > 0 {
		query = query.Where("id < ?", q.AfterID)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(initiator_name LIKE ? OR action LIKE ? OR resource_type LIKE ? OR ip LIKE ?)",
			like, like, like, like)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
