package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inputsanitize "societyhub/internal/api/sanitize"
	"societyhub/internal/model"
	"societyhub/internal/repository"
)

var (
	ErrResidentNotFound     = errors.New("resident not found")
	ErrInvalidResidentInput = errors.New("name, flatNumber, society, email, phone and adminEmail are required")
)

type ResidentInput struct {
	Name       string  `json:"name"`
	FlatNumber string  `json:"flatNumber"`
	SocietyID  string  `json:"society"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Profession *string `json:"profession"`
	AdminEmail string  `json:"adminEmail"`
}

type ResidentService struct {
	residentRepo repository.ResidentRepository
	logger       *zap.Logger
}

func NewResidentService(residentRepo repository.ResidentRepository, logger *zap.Logger) *ResidentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResidentService{residentRepo: residentRepo, logger: logger}
}

func (s *ResidentService) Create(ctx context.Context, in ResidentInput) (*model.Resident, error) {
	societyID, err := uuid.Parse(strings.TrimSpace(in.SocietyID))
	if err != nil {
		return nil, ErrInvalidResidentInput
	}
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.FlatNumber) == "" ||
		strings.TrimSpace(in.Email) == "" ||
		strings.TrimSpace(in.Phone) == "" ||
		strings.TrimSpace(in.AdminEmail) == "" {
		return nil, ErrInvalidResidentInput
	}

	resident := &model.Resident{
		ID:         uuid.New(),
		Name:       inputsanitize.Text(in.Name),
		FlatNumber: strings.TrimSpace(in.FlatNumber),
		SocietyID:  societyID,
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Profession: inputsanitize.TextPtr(in.Profession),
		AdminEmail: strings.TrimSpace(in.AdminEmail),
	}

	if err := s.residentRepo.Create(ctx, resident); err != nil {
		return nil, err
	}
	return resident, nil
}

func (s *ResidentService) List(ctx context.Context, scope repository.TenantScope) ([]*model.Resident, error) {
	return s.residentRepo.List(ctx, scope)
}

func (s *ResidentService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.residentRepo.Count(ctx, scope)
}

func (s *ResidentService) Update(ctx context.Context, id uuid.UUID, in ResidentInput) (*model.Resident, error) {
	resident, err := s.residentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}

	if name := inputsanitize.Text(in.Name); name != "" {
		resident.Name = name
	}
	if strings.TrimSpace(in.FlatNumber) != "" {
		resident.FlatNumber = strings.TrimSpace(in.FlatNumber)
	}
	if raw := strings.TrimSpace(in.SocietyID); raw != "" {
		societyID, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrInvalidResidentInput
		}
		resident.SocietyID = societyID
	}
	if strings.TrimSpace(in.Email) != "" {
		resident.Email = strings.TrimSpace(in.Email)
	}
	if strings.TrimSpace(in.Phone) != "" {
		resident.Phone = strings.TrimSpace(in.Phone)
	}
	if in.Profession != nil {
		resident.Profession = inputsanitize.TextPtr(in.Profession)
	}

	if err := s.residentRepo.Update(ctx, resident); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return resident, nil
}

func (s *ResidentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.residentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResidentNotFound
		}
		return err
	}
	return nil
}
