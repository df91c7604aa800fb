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
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidEventInput = errors.New("title, description, date, location and adminEmail are required")
)

type EventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	AdminEmail  string `json:"adminEmail"`
}

type EventService struct {
	eventRepo repository.EventRepository
	logger    *zap.Logger
}

func NewEventService(eventRepo repository.EventRepository, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{eventRepo: eventRepo, logger: logger}
}

func (s *EventService) Create(ctx context.Context, in EventInput) (*model.Event, error) {
	description := inputsanitize.RichText(in.Description)
	if strings.TrimSpace(in.Title) == "" ||
		description == "" ||
		strings.TrimSpace(in.Date) == "" ||
		strings.TrimSpace(in.Location) == "" ||
		strings.TrimSpace(in.AdminEmail) == "" {
		return nil, ErrInvalidEventInput
	}

	event := &model.Event{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Description: description,
		Date:        strings.TrimSpace(in.Date),
		Location:    strings.TrimSpace(in.Location),
		AdminEmail:  strings.TrimSpace(in.AdminEmail),
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, scope repository.TenantScope) ([]*model.Event, error) {
	return s.eventRepo.List(ctx, scope)
}

func (s *EventService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.eventRepo.Count(ctx, scope)
}

func (s *EventService) Update(ctx context.Context, id uuid.UUID, in EventInput) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(in.Title) != "" {
		event.Title = strings.TrimSpace(in.Title)
	}
	if description := inputsanitize.RichText(in.Description); description != "" {
		event.Description = description
	}
	if strings.TrimSpace(in.Date) != "" {
		event.Date = strings.TrimSpace(in.Date)
	}
	if strings.TrimSpace(in.Location) != "" {
		event.Location = strings.TrimSpace(in.Location)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}
