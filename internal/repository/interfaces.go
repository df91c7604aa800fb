package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"societyhub/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// TenantScope restricts queries to a single admin's records unless the
// caller is a superadmin, in which case the scope is global.
type TenantScope struct {
	Email      string
	Superadmin bool
}

func (s TenantScope) Global() bool {
	return s.Superadmin
}

type EntryListFilter struct {
	Name       *string
	FlatNumber *string
	Date       *string
	Scope      *TenantScope
}

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
	Update(ctx context.Context, admin *model.Admin) error
}

type SocietyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Society, error)
	FindByName(ctx context.Context, name string) (*model.Society, error)
	Create(ctx context.Context, society *model.Society) error
	Update(ctx context.Context, society *model.Society) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope TenantScope) ([]*model.Society, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
}

type ResidentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Resident, error)
	FindBySocietyFlat(ctx context.Context, societyID uuid.UUID, flatNumber string) (*model.Resident, error)
	Create(ctx context.Context, resident *model.Resident) error
	Update(ctx context.Context, resident *model.Resident) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySocietyFlat(ctx context.Context, societyID uuid.UUID, flatNumber string) error
	List(ctx context.Context, scope TenantScope) ([]*model.Resident, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
}

type FlatOwnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.FlatOwner, error)
	FindBySocietyFlat(ctx context.Context, societyName, flatNumber string) (*model.FlatOwner, error)
	Create(ctx context.Context, owner *model.FlatOwner) error
	Update(ctx context.Context, owner *model.FlatOwner) error
	UpdateFamily(ctx context.Context, id uuid.UUID, members []model.FamilyMember) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope TenantScope, societyNames []string) ([]*model.FlatOwner, error)
	Count(ctx context.Context, scope TenantScope, societyNames []string) (int64, error)
}

type EventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope TenantScope) ([]*model.Event, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
}

type EntryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.EntryPermission, error)
	Create(ctx context.Context, entry *model.EntryPermission) error
	Update(ctx context.Context, entry *model.EntryPermission) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter EntryListFilter) ([]*model.EntryPermission, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
	// ExpireOverdue flips expired=true on every permission whose
	// expiration is before now, returning the number of rows changed.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	ListExpiringBetween(ctx context.Context, from, until time.Time) ([]*model.EntryPermission, error)
}

type CouponRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.CouponDetail, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	SetScanState(ctx context.Context, id uuid.UUID, used bool, status model.CouponStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope TenantScope) ([]*model.CouponDetail, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
}

type BroadcastRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.BroadcastMessage, error)
	Create(ctx context.Context, msg *model.BroadcastMessage) error
	Update(ctx context.Context, msg *model.BroadcastMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope TenantScope) ([]*model.BroadcastDetail, error)
	Count(ctx context.Context, scope TenantScope) (int64, error)
}
