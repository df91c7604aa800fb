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
	ErrSocietyNotFound     = errors.New("society not found")
	ErrInvalidSocietyInput = errors.New("name, location and adminEmail are required")
)

type SocietyInput struct {
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	Flats      []string `json:"flats"`
	AdminEmail string   `json:"adminEmail"`
}

type SocietyService struct {
	societyRepo repository.SocietyRepository
	logger      *zap.Logger
}

func NewSocietyService(societyRepo repository.SocietyRepository, logger *zap.Logger) *SocietyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocietyService{societyRepo: societyRepo, logger: logger}
}

func (s *SocietyService) Create(ctx context.Context, in SocietyInput) (*model.Society, error) {
	name := inputsanitize.Text(in.Name)
	location := inputsanitize.Text(in.Location)
	if name == "" || location == "" || strings.TrimSpace(in.AdminEmail) == "" {
		return nil, ErrInvalidSocietyInput
	}

	society := &model.Society{
		ID:         uuid.New(),
		Name:       name,
		Location:   location,
		Flats:      inputsanitize.StringSlice(in.Flats),
		AdminEmail: strings.TrimSpace(in.AdminEmail),
	}
	if society.Flats == nil {
		society.Flats = []string{}
	}

	if err := s.societyRepo.Create(ctx, society); err != nil {
		return nil, err
	}
	return society, nil
}

func (s *SocietyService) List(ctx context.Context, scope repository.TenantScope) ([]*model.Society, error) {
	return s.societyRepo.List(ctx, scope)
}

func (s *SocietyService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.societyRepo.Count(ctx, scope)
}

func (s *SocietyService) Update(ctx context.Context, id uuid.UUID, in SocietyInput) (*model.Society, error) {
	society, err := s.societyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSocietyNotFound
		}
		return nil, err
	}

	if name := inputsanitize.Text(in.Name); name != "" {
		society.Name = name
	}
	if location := inputsanitize.Text(in.Location); location != "" {
		society.Location = location
	}
	if in.Flats != nil {
		society.Flats = inputsanitize.StringSlice(in.Flats)
		if society.Flats == nil {
			society.Flats = []string{}
		}
	}

	if err := s.societyRepo.Update(ctx, society); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSocietyNotFound
		}
		return nil, err
	}
	return society, nil
}

func (s *SocietyService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.societyRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSocietyNotFound
		}
		return err
	}
	return nil
}
