package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"societyhub/internal/metrics"
	"societyhub/internal/model"
	"societyhub/internal/repository"
)

const (
	entryValidityDays  = 7
	expiringSoonWindow = 3 * 24 * time.Hour
)

var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrInvalidEntryInput = errors.New("name, flatNumber, dateTime, description, additionalDateTime and adminEmail are required")
	ErrInvalidDateTime   = errors.New("dateTime is not a recognized date")
)

// entryDateLayouts are tried in order when parsing the visitor date.
var entryDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

type EntryInput struct {
	Name               string `json:"name"`
	FlatNumber         string `json:"flatNumber"`
	DateTime           string `json:"dateTime"`
	Description        string `json:"description"`
	AdditionalDateTime string `json:"additionalDateTime"`
	AdminEmail         string `json:"adminEmail"`
}

type EntryListQuery struct {
	Name       string
	FlatNumber string
	Date       string
}

type EntryService struct {
	entryRepo repository.EntryRepository
	logger    *zap.Logger
}

func NewEntryService(entryRepo repository.EntryRepository, logger *zap.Logger) *EntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{entryRepo: entryRepo, logger: logger}
}

// Create derives the expiration exactly 7 days after the visitor date.
// The expiration is fixed at creation and never re-derived on update.
func (s *EntryService) Create(ctx context.Context, in EntryInput) (*model.EntryPermission, error) {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.FlatNumber) == "" ||
		strings.TrimSpace(in.DateTime) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.AdditionalDateTime) == "" ||
		strings.TrimSpace(in.AdminEmail) == "" {
		return nil, ErrInvalidEntryInput
	}

	start, err := parseEntryDateTime(in.DateTime)
	if err != nil {
		return nil, err
	}

	entry := &model.EntryPermission{
		ID:                 uuid.New(),
		Name:               strings.TrimSpace(in.Name),
		FlatNumber:         strings.TrimSpace(in.FlatNumber),
		DateTime:           strings.TrimSpace(in.DateTime),
		Description:        in.Description,
		AdditionalDateTime: strings.TrimSpace(in.AdditionalDateTime),
		ExpirationDateTime: start.AddDate(0, 0, entryValidityDays),
		Expired:            false,
		AdminEmail:         strings.TrimSpace(in.AdminEmail),
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) List(ctx context.Context, query EntryListQuery, scope *repository.TenantScope) ([]*model.EntryPermission, error) {
	filter := repository.EntryListFilter{Scope: scope}
	if v := strings.TrimSpace(query.Name); v != "" {
		filter.Name = &v
	}
	if v := strings.TrimSpace(query.FlatNumber); v != "" {
		filter.FlatNumber = &v
	}
	if v := strings.TrimSpace(query.Date); v != "" {
		filter.Date = &v
	}

	return s.entryRepo.List(ctx, filter)
}

func (s *EntryService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.entryRepo.Count(ctx, scope)
}

func (s *EntryService) Update(ctx context.Context, id uuid.UUID, in EntryInput) (*model.EntryPermission, error) {
	entry, err := s.entryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(in.Name) != "" {
		entry.Name = strings.TrimSpace(in.Name)
	}
	if strings.TrimSpace(in.FlatNumber) != "" {
		entry.FlatNumber = strings.TrimSpace(in.FlatNumber)
	}
	if strings.TrimSpace(in.DateTime) != "" {
		entry.DateTime = strings.TrimSpace(in.DateTime)
	}
	if strings.TrimSpace(in.Description) != "" {
		entry.Description = in.Description
	}
	if strings.TrimSpace(in.AdditionalDateTime) != "" {
		entry.AdditionalDateTime = strings.TrimSpace(in.AdditionalDateTime)
	}

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *EntryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.entryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}

// ExpireOverdue is the sweep body: one batch update flagging every
// permission past its expiration. Safe to run concurrently with request
// traffic since it only ever moves expired forward.
func (s *EntryService) ExpireOverdue(ctx context.Context) (int64, error) {
	affected, err := s.entryRepo.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	metrics.ObserveEntrySweep(affected)
	if affected > 0 {
		s.logger.Info("expired entry permissions flagged", zap.Int64("count", affected))
	}
	return affected, nil
}

func (s *EntryService) ExpiringSoon(ctx context.Context) ([]*model.EntryPermission, error) {
	now := time.Now().UTC()
	return s.entryRepo.ListExpiringBetween(ctx, now, now.Add(expiringSoonWindow))
}

func parseEntryDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range entryDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}
