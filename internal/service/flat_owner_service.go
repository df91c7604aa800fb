package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"societyhub/internal/model"
	"societyhub/internal/repository"
)

var (
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrInvalidFamilyIndex = errors.New("invalid family member index")
	ErrInvalidOwnerInput  = errors.New("societyName, flatNumber and ownerName are required")
)

type OwnerInput struct {
	SocietyName string `json:"societyName"`
	FlatNumber  string `json:"flatNumber"`
	OwnerName   string `json:"ownerName"`
	Profession  string `json:"profession"`
	Contact     string `json:"contact"`
	Email       string `json:"email"`
	AdminEmail  string `json:"adminEmail"`
}

// FlatOwnerService keeps flat-owner records loosely in sync with the
// resident sharing the same society and flat: resident writes are
// best-effort, logged on failure, never transactional.
type FlatOwnerService struct {
	ownerRepo    repository.FlatOwnerRepository
	societyRepo  repository.SocietyRepository
	residentRepo repository.ResidentRepository
	logger       *zap.Logger
}

func NewFlatOwnerService(
	ownerRepo repository.FlatOwnerRepository,
	societyRepo repository.SocietyRepository,
	residentRepo repository.ResidentRepository,
	logger *zap.Logger,
) *FlatOwnerService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FlatOwnerService{
		ownerRepo:    ownerRepo,
		societyRepo:  societyRepo,
		residentRepo: residentRepo,
		logger:       logger,
	}
}

// scopedSocietyNames returns the names of societies visible to the
// scope; owner lists are restricted to societies that still exist.
func (s *FlatOwnerService) scopedSocietyNames(ctx context.Context, scope repository.TenantScope) ([]string, error) {
	societies, err := s.societyRepo.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(societies))
	for _, society := range societies {
		names = append(names, society.Name)
	}
	return names, nil
}

func (s *FlatOwnerService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	names, err := s.scopedSocietyNames(ctx, scope)
	if err != nil {
		return 0, err
	}
	return s.ownerRepo.Count(ctx, scope, names)
}

func (s *FlatOwnerService) ListAll(ctx context.Context, scope repository.TenantScope) ([]*model.FlatOwner, error) {
	names, err := s.scopedSocietyNames(ctx, scope)
	if err != nil {
		return nil, err
	}
	return s.ownerRepo.List(ctx, scope, names)
}

func (s *FlatOwnerService) Societies(ctx context.Context, scope repository.TenantScope) ([]*model.Society, error) {
	return s.societyRepo.List(ctx, scope)
}

// FlatsOf returns the flat universe of a society.
func (s *FlatOwnerService) FlatsOf(ctx context.Context, societyName string) ([]string, error) {
	society, err := s.societyRepo.FindByName(ctx, societyName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSocietyNotFound
		}
		return nil, err
	}
	return society.Flats, nil
}

// Lookup returns the owner record for a flat, prepopulating a draft
// from the matching resident when no owner record exists yet.
func (s *FlatOwnerService) Lookup(ctx context.Context, societyName, flatNumber string) (*model.FlatOwner, error) {
	society, err := s.societyRepo.FindByName(ctx, societyName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSocietyNotFound
		}
		return nil, err
	}

	owner, err := s.ownerRepo.FindBySocietyFlat(ctx, societyName, flatNumber)
	if err == nil {
		return owner, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	resident, err := s.residentRepo.FindBySocietyFlat(ctx, society.ID, flatNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	profession := ""
	if resident.Profession != nil {
		profession = *resident.Profession
	}

	// Draft only; the zero ID signals the record is not yet saved.
	return &model.FlatOwner{
		SocietyName:   societyName,
		FlatNumber:    flatNumber,
		OwnerName:     resident.Name,
		Profession:    profession,
		Contact:       resident.Phone,
		Email:         resident.Email,
		AdminEmail:    resident.AdminEmail,
		FamilyMembers: []model.FamilyMember{},
	}, nil
}

// Save creates the owner record for a flat or updates it in place, then
// syncs the matching resident best-effort.
func (s *FlatOwnerService) Save(ctx context.Context, in OwnerInput) (*model.FlatOwner, bool, error) {
	if strings.TrimSpace(in.SocietyName) == "" ||
		strings.TrimSpace(in.FlatNumber) == "" ||
		strings.TrimSpace(in.OwnerName) == "" {
		return nil, false, ErrInvalidOwnerInput
	}

	owner, err := s.ownerRepo.FindBySocietyFlat(ctx, in.SocietyName, in.FlatNumber)
	switch {
	case err == nil:
		owner.OwnerName = in.OwnerName
		owner.Profession = in.Profession
		owner.Contact = in.Contact
		owner.Email = in.Email
		if err := s.ownerRepo.Update(ctx, owner); err != nil {
			return nil, false, err
		}
		s.syncResident(ctx, owner, false)
		return owner, false, nil

	case errors.Is(err, repository.ErrNotFound):
		owner = &model.FlatOwner{
			ID:            uuid.New(),
			SocietyName:   strings.TrimSpace(in.SocietyName),
			FlatNumber:    strings.TrimSpace(in.FlatNumber),
			OwnerName:     in.OwnerName,
			Profession:    in.Profession,
			Contact:       in.Contact,
			Email:         in.Email,
			AdminEmail:    strings.TrimSpace(in.AdminEmail),
			FamilyMembers: []model.FamilyMember{},
		}
		if err := s.ownerRepo.Create(ctx, owner); err != nil {
			return nil, false, err
		}
		s.syncResident(ctx, owner, true)
		return owner, true, nil

	default:
		return nil, false, err
	}
}

// UpdateByID updates owner fields without touching family members and
// syncs the matching resident best-effort.
func (s *FlatOwnerService) UpdateByID(ctx context.Context, id uuid.UUID, in OwnerInput) (*model.FlatOwner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	owner.OwnerName = in.OwnerName
	owner.Profession = in.Profession
	owner.Contact = in.Contact
	owner.Email = in.Email

	if err := s.ownerRepo.Update(ctx, owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	s.syncResident(ctx, owner, false)
	return owner, nil
}

// Delete removes the owner record and the resident sharing its
// society and flat number, if one exists.
func (s *FlatOwnerService) Delete(ctx context.Context, id uuid.UUID) error {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}

	if err := s.ownerRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return err
	}

	society, err := s.societyRepo.FindByName(ctx, owner.SocietyName)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("resident cleanup lookup failed",
				zap.String("society", owner.SocietyName),
				zap.Error(err),
			)
		}
		return nil
	}

	if err := s.residentRepo.DeleteBySocietyFlat(ctx, society.ID, owner.FlatNumber); err != nil {
		s.logger.Warn("resident cleanup failed",
			zap.String("society", owner.SocietyName),
			zap.String("flat", owner.FlatNumber),
			zap.Error(err),
		)
	}
	return nil
}

func (s *FlatOwnerService) AddFamilyMember(ctx context.Context, id uuid.UUID, member model.FamilyMember) (*model.FlatOwner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	owner.FamilyMembers = append(owner.FamilyMembers, member)
	if err := s.ownerRepo.UpdateFamily(ctx, id, owner.FamilyMembers); err != nil {
		return nil, err
	}
	return owner, nil
}

func (s *FlatOwnerService) EditFamilyMember(ctx context.Context, id uuid.UUID, index int, member model.FamilyMember) (*model.FlatOwner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	if index < 0 || index >= len(owner.FamilyMembers) {
		return nil, ErrInvalidFamilyIndex
	}
	owner.FamilyMembers[index] = member

	if err := s.ownerRepo.UpdateFamily(ctx, id, owner.FamilyMembers); err != nil {
		return nil, err
	}
	return owner, nil
}

func (s *FlatOwnerService) RemoveFamilyMember(ctx context.Context, id uuid.UUID, index int) (*model.FlatOwner, error) {
	owner, err := s.ownerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	if index < 0 || index >= len(owner.FamilyMembers) {
		return nil, ErrInvalidFamilyIndex
	}
	owner.FamilyMembers = append(owner.FamilyMembers[:index], owner.FamilyMembers[index+1:]...)

	if err := s.ownerRepo.UpdateFamily(ctx, id, owner.FamilyMembers); err != nil {
		return nil, err
	}
	return owner, nil
}

// syncResident mirrors owner details onto the resident sharing the
// flat, creating the resident on first save when none exists.
func (s *FlatOwnerService) syncResident(ctx context.Context, owner *model.FlatOwner, createIfMissing bool) {
	society, err := s.societyRepo.FindByName(ctx, owner.SocietyName)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("resident sync society lookup failed",
				zap.String("society", owner.SocietyName),
				zap.Error(err),
			)
		}
		return
	}

	resident, err := s.residentRepo.FindBySocietyFlat(ctx, society.ID, owner.FlatNumber)
	switch {
	case err == nil:
		resident.Name = owner.OwnerName
		resident.Email = owner.Email
		resident.Phone = owner.Contact
		profession := owner.Profession
		resident.Profession = &profession
		if err := s.residentRepo.Update(ctx, resident); err != nil {
			s.logger.Warn("resident sync update failed", zap.String("flat", owner.FlatNumber), zap.Error(err))
		}

	case errors.Is(err, repository.ErrNotFound):
		if !createIfMissing {
			return
		}
		profession := owner.Profession
		resident = &model.Resident{
			ID:         uuid.New(),
			Name:       owner.OwnerName,
			FlatNumber: owner.FlatNumber,
			SocietyID:  society.ID,
			Email:      owner.Email,
			Phone:      owner.Contact,
			Profession: &profession,
			AdminEmail: owner.AdminEmail,
		}
		if err := s.residentRepo.Create(ctx, resident); err != nil {
			s.logger.Warn("resident sync create failed", zap.String("flat", owner.FlatNumber), zap.Error(err))
		}

	default:
		s.logger.Warn("resident sync lookup failed", zap.String("flat", owner.FlatNumber), zap.Error(err))
	}
}
