package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

// In-memory repository fakes shared by the service tests.

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*model.Admin)}
}

func (f *fakeAdminRepo) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	admin, ok := f.admins[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *admin
	return &clone, nil
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(admin.Email)
	if _, exists := f.admins[key]; exists {
		return repository.ErrDuplicate
	}
	clone := *admin
	f.admins[key] = &clone
	return nil
}

func (f *fakeAdminRepo) Update(_ context.Context, admin *model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(admin.Email)
	if _, exists := f.admins[key]; !exists {
		return repository.ErrNotFound
	}
	clone := *admin
	f.admins[key] = &clone
	return nil
}

type fakeSocietyRepo struct {
	mu        sync.Mutex
	societies map[uuid.UUID]*model.Society
}

func newFakeSocietyRepo() *fakeSocietyRepo {
	return &fakeSocietyRepo{societies: make(map[uuid.UUID]*model.Society)}
}

func (f *fakeSocietyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Society, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	society, ok := f.societies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *society
	return &clone, nil
}

func (f *fakeSocietyRepo) FindByName(_ context.Context, name string) (*model.Society, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, society := range f.societies {
		if society.Name == name {
			clone := *society
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSocietyRepo) Create(_ context.Context, society *model.Society) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *society
	f.societies[society.ID] = &clone
	return nil
}

func (f *fakeSocietyRepo) Update(_ context.Context, society *model.Society) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.societies[society.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *society
	f.societies[society.ID] = &clone
	return nil
}

func (f *fakeSocietyRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.societies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.societies, id)
	return nil
}

func (f *fakeSocietyRepo) List(_ context.Context, scope repository.TenantScope) ([]*model.Society, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Society, 0, len(f.societies))
	for _, society := range f.societies {
		if !scope.Global() && society.AdminEmail != scope.Email {
			continue
		}
		clone := *society
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeSocietyRepo) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	societies, _ := f.List(ctx, scope)
	return int64(len(societies)), nil
}

type fakeResidentRepo struct {
	mu        sync.Mutex
	residents map[uuid.UUID]*model.Resident
}

func newFakeResidentRepo() *fakeResidentRepo {
	return &fakeResidentRepo{residents: make(map[uuid.UUID]*model.Resident)}
}

func (f *fakeResidentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resident, ok := f.residents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *resident
	return &clone, nil
}

func (f *fakeResidentRepo) FindBySocietyFlat(_ context.Context, societyID uuid.UUID, flatNumber string) (*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, resident := range f.residents {
		if resident.SocietyID == societyID && resident.FlatNumber == flatNumber {
			clone := *resident
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResidentRepo) Create(_ context.Context, resident *model.Resident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *resident
	f.residents[resident.ID] = &clone
	return nil
}

func (f *fakeResidentRepo) Update(_ context.Context, resident *model.Resident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.residents[resident.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *resident
	f.residents[resident.ID] = &clone
	return nil
}

func (f *fakeResidentRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.residents[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.residents, id)
	return nil
}

func (f *fakeResidentRepo) DeleteBySocietyFlat(_ context.Context, societyID uuid.UUID, flatNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, resident := range f.residents {
		if resident.SocietyID == societyID && resident.FlatNumber == flatNumber {
			delete(f.residents, id)
			return nil
		}
	}
	return nil
}

func (f *fakeResidentRepo) List(_ context.Context, scope repository.TenantScope) ([]*model.Resident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Resident, 0, len(f.residents))
	for _, resident := range f.residents {
		if !scope.Global() && resident.AdminEmail != scope.Email {
			continue
		}
		clone := *resident
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeResidentRepo) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	residents, _ := f.List(ctx, scope)
	return int64(len(residents)), nil
}

type fakeFlatOwnerRepo struct {
	mu     sync.Mutex
	owners map[uuid.UUID]*model.FlatOwner
}

func newFakeFlatOwnerRepo() *fakeFlatOwnerRepo {
	return &fakeFlatOwnerRepo{owners: make(map[uuid.UUID]*model.FlatOwner)}
}

func (f *fakeFlatOwnerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FlatOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *owner
	clone.FamilyMembers = append([]model.FamilyMember(nil), owner.FamilyMembers...)
	return &clone, nil
}

func (f *fakeFlatOwnerRepo) FindBySocietyFlat(_ context.Context, societyName, flatNumber string) (*model.FlatOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, owner := range f.owners {
		if owner.SocietyName == societyName && owner.FlatNumber == flatNumber {
			clone := *owner
			clone.FamilyMembers = append([]model.FamilyMember(nil), owner.FamilyMembers...)
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeFlatOwnerRepo) Create(_ context.Context, owner *model.FlatOwner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *owner
	f.owners[owner.ID] = &clone
	return nil
}

func (f *fakeFlatOwnerRepo) Update(_ context.Context, owner *model.FlatOwner) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.owners[owner.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *owner
	f.owners[owner.ID] = &clone
	return nil
}

func (f *fakeFlatOwnerRepo) UpdateFamily(_ context.Context, id uuid.UUID, members []model.FamilyMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, ok := f.owners[id]
	if !ok {
		return repository.ErrNotFound
	}
	owner.FamilyMembers = append([]model.FamilyMember(nil), members...)
	return nil
}

func (f *fakeFlatOwnerRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.owners[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.owners, id)
	return nil
}

func (f *fakeFlatOwnerRepo) List(_ context.Context, scope repository.TenantScope, societyNames []string) ([]*model.FlatOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed := make(map[string]struct{}, len(societyNames))
	for _, name := range societyNames {
		allowed[name] = struct{}{}
	}
	out := make([]*model.FlatOwner, 0, len(f.owners))
	for _, owner := range f.owners {
		if !scope.Global() && owner.AdminEmail != scope.Email {
			continue
		}
		if _, ok := allowed[owner.SocietyName]; !ok {
			continue
		}
		clone := *owner
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeFlatOwnerRepo) Count(ctx context.Context, scope repository.TenantScope, societyNames []string) (int64, error) {
	owners, _ := f.List(ctx, scope, societyNames)
	return int64(len(owners)), nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*model.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[uuid.UUID]*model.Event)}
}

func (f *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) Create(_ context.Context, event *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventRepo) List(_ context.Context, scope repository.TenantScope) ([]*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Event, 0, len(f.events))
	for _, event := range f.events {
		if !scope.Global() && event.AdminEmail != scope.Email {
			continue
		}
		clone := *event
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeEventRepo) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	events, _ := f.List(ctx, scope)
	return int64(len(events)), nil
}

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*model.EntryPermission
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[uuid.UUID]*model.EntryPermission)}
}

func (f *fakeEntryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.EntryPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}

func (f *fakeEntryRepo) Create(_ context.Context, entry *model.EntryPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeEntryRepo) Update(_ context.Context, entry *model.EntryPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeEntryRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryRepo) List(_ context.Context, filter repository.EntryListFilter) ([]*model.EntryPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.EntryPermission, 0, len(f.entries))
	for _, entry := range f.entries {
		if filter.Scope != nil && !filter.Scope.Global() && entry.AdminEmail != filter.Scope.Email {
			continue
		}
		if filter.Name != nil && !strings.Contains(strings.ToLower(entry.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		if filter.FlatNumber != nil && !strings.Contains(strings.ToLower(entry.FlatNumber), strings.ToLower(*filter.FlatNumber)) {
			continue
		}
		if filter.Date != nil && !strings.Contains(entry.DateTime, *filter.Date) {
			continue
		}
		clone := *entry
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeEntryRepo) Count(_ context.Context, scope repository.TenantScope) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, entry := range f.entries {
		if !scope.Global() && entry.AdminEmail != scope.Email {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeEntryRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var affected int64
	for _, entry := range f.entries {
		if !entry.Expired && entry.ExpirationDateTime.Before(now) {
			entry.Expired = true
			affected++
		}
	}
	return affected, nil
}

func (f *fakeEntryRepo) ListExpiringBetween(_ context.Context, from, until time.Time) ([]*model.EntryPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.EntryPermission, 0)
	for _, entry := range f.entries {
		if entry.Expired {
			continue
		}
		if entry.ExpirationDateTime.After(from) && entry.ExpirationDateTime.Before(until) {
			clone := *entry
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeCouponRepo struct {
	mu      sync.Mutex
	coupons map[uuid.UUID]*model.Coupon
	// societyNames/eventTitles hydrate FindByCode details.
	societyNames map[uuid.UUID]string
	eventTitles  map[uuid.UUID]string
}

func newFakeCouponRepo() *fakeCouponRepo {
	return &fakeCouponRepo{
		coupons:      make(map[uuid.UUID]*model.Coupon),
		societyNames: make(map[uuid.UUID]string),
		eventTitles:  make(map[uuid.UUID]string),
	}
}

func (f *fakeCouponRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Coupon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	coupon, ok := f.coupons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *coupon
	return &clone, nil
}

func (f *fakeCouponRepo) FindByCode(_ context.Context, code string) (*model.CouponDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, coupon := range f.coupons {
		if coupon.Code == code {
			clone := *coupon
			return &model.CouponDetail{
				Coupon:      clone,
				SocietyName: f.societyNames[coupon.SocietyID],
				EventTitle:  f.eventTitles[coupon.EventID],
			}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCouponRepo) CodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, coupon := range f.coupons {
		if coupon.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCouponRepo) Create(_ context.Context, coupon *model.Coupon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.coupons {
		if existing.Code == coupon.Code {
			return repository.ErrDuplicate
		}
	}
	clone := *coupon
	f.coupons[coupon.ID] = &clone
	return nil
}

func (f *fakeCouponRepo) Update(_ context.Context, coupon *model.Coupon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.coupons[coupon.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *coupon
	f.coupons[coupon.ID] = &clone
	return nil
}

func (f *fakeCouponRepo) SetScanState(_ context.Context, id uuid.UUID, used bool, status model.CouponStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	coupon, ok := f.coupons[id]
	if !ok {
		return repository.ErrNotFound
	}
	coupon.Used = used
	coupon.Status = status
	return nil
}

func (f *fakeCouponRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.coupons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.coupons, id)
	return nil
}

func (f *fakeCouponRepo) List(_ context.Context, scope repository.TenantScope) ([]*model.CouponDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.CouponDetail, 0, len(f.coupons))
	for _, coupon := range f.coupons {
		if !scope.Global() && coupon.AdminEmail != scope.Email {
			continue
		}
		clone := *coupon
		out = append(out, &model.CouponDetail{
			Coupon:      clone,
			SocietyName: f.societyNames[coupon.SocietyID],
			EventTitle:  f.eventTitles[coupon.EventID],
		})
	}
	return out, nil
}

func (f *fakeCouponRepo) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	coupons, _ := f.List(ctx, scope)
	return int64(len(coupons)), nil
}

type fakeBroadcastRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*model.BroadcastMessage
}

func newFakeBroadcastRepo() *fakeBroadcastRepo {
	return &fakeBroadcastRepo{messages: make(map[uuid.UUID]*model.BroadcastMessage)}
}

func (f *fakeBroadcastRepo) FindByID(_ context.Context, id uuid.UUID) (*model.BroadcastMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *msg
	return &clone, nil
}

func (f *fakeBroadcastRepo) Create(_ context.Context, msg *model.BroadcastMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := *msg
	f.messages[msg.ID] = &clone
	return nil
}

func (f *fakeBroadcastRepo) Update(_ context.Context, msg *model.BroadcastMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[msg.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *msg
	f.messages[msg.ID] = &clone
	return nil
}

func (f *fakeBroadcastRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeBroadcastRepo) List(_ context.Context, scope repository.TenantScope) ([]*model.BroadcastDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.BroadcastDetail, 0, len(f.messages))
	for _, msg := range f.messages {
		if !scope.Global() && msg.AdminEmail != scope.Email {
			continue
		}
		clone := *msg
		out = append(out, &model.BroadcastDetail{BroadcastMessage: clone})
	}
	return out, nil
}

func (f *fakeBroadcastRepo) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	messages, _ := f.List(ctx, scope)
	return int64(len(messages)), nil
}

var (
	_ repository.AdminRepository     = (*fakeAdminRepo)(nil)
	_ repository.SocietyRepository   = (*fakeSocietyRepo)(nil)
	_ repository.ResidentRepository  = (*fakeResidentRepo)(nil)
	_ repository.FlatOwnerRepository = (*fakeFlatOwnerRepo)(nil)
	_ repository.EventRepository     = (*fakeEventRepo)(nil)
	_ repository.EntryRepository     = (*fakeEntryRepo)(nil)
	_ repository.CouponRepository    = (*fakeCouponRepo)(nil)
	_ repository.BroadcastRepository = (*fakeBroadcastRepo)(nil)
)
