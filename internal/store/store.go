// Package store holds the canonical collections behind the access review
// workflow. Every method is an independent transaction: callers never observe
// a partially applied mutation.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"access_review/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// MutateFunc computes the next version of a record from the current one.
// Returning an error aborts the mutation and leaves the record untouched.
type MutateFunc func(models.AccessRecord) (models.AccessRecord, error)

type RecordStore interface {
	ListRecords(ctx context.Context) ([]models.AccessRecord, error)
	GetRecord(ctx context.Context, id string) (models.AccessRecord, error)
	CreateRecord(ctx context.Context, rec models.AccessRecord) (models.AccessRecord, error)
	// MutateRecord runs fn against the current record and stores the result
	// atomically. It returns ErrNotFound for unknown ids.
	MutateRecord(ctx context.Context, id string, fn MutateFunc) (models.AccessRecord, error)
	// DeleteRecord is a no-op for unknown ids.
	DeleteRecord(ctx context.Context, id string) error
}

type SystemUserStore interface {
	ListSystemUsers(ctx context.Context) ([]models.SystemUser, error)
	GetSystemUser(ctx context.Context, id string) (models.SystemUser, error)
	GetSystemUserByEmail(ctx context.Context, email string) (models.SystemUser, error)
	CreateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error)
	UpdateSystemUser(ctx context.Context, u models.SystemUser) (models.SystemUser, error)
	DeleteSystemUser(ctx context.Context, id string) error
}

type ApplicationStore interface {
	ListApplications(ctx context.Context) ([]models.Application, error)
	GetApplicationByName(ctx context.Context, name string) (models.Application, error)
	CreateApplication(ctx context.Context, app models.Application) (models.Application, error)
	UpdateApplication(ctx context.Context, app models.Application) (models.Application, error)
	DeleteApplication(ctx context.Context, id string) error
}

type CycleStore interface {
	ListCycles(ctx context.Context) ([]models.ReviewCycle, error)
	CreateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error)
	UpdateCycle(ctx context.Context, c models.ReviewCycle) (models.ReviewCycle, error)
	DeleteCycle(ctx context.Context, id string) error
}

type RoleStore interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	GetRoleByName(ctx context.Context, name string) (models.Role, error)
	CreateRole(ctx context.Context, r models.Role) (models.Role, error)
}

// AuditQuery selects audit entries newest first. AfterID is an exclusive
// cursor: only entries with a smaller id are returned.
type AuditQuery struct {
	Limit   int
	AfterID int64
	Search  string
}

type AuditStore interface {
	AppendAudit(ctx context.Context, e *models.AuditLog) error
	ListAudit(ctx context.Context, q AuditQuery) ([]models.AuditLog, error)
}

// Store is the full repository used by the service and HTTP layers.
type Store interface {
	RecordStore
	SystemUserStore
	ApplicationStore
	CycleStore
	RoleStore
	AuditStore
}

// NewID returns a time-ordered identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
