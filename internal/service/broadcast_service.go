package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inputsanitize "societyhub/internal/api/sanitize"
	"societyhub/internal/metrics"
	"societyhub/internal/model"
	"societyhub/internal/repository"
)

var (
	ErrBroadcastNotFound      = errors.New("broadcast message not found")
	ErrInvalidBroadcastInput  = errors.New("message, broadcastType and adminEmail are required")
	ErrBroadcastSocietyNeeded = errors.New("society is required for society-wide broadcast")
	ErrBroadcastTargetNeeded  = errors.New("society and flat number are required for specific broadcast")
)

type BroadcastInput struct {
	Message       string  `json:"message"`
	BroadcastType string  `json:"broadcastType"`
	SocietyID     *string `json:"society"`
	FlatNo        *string `json:"flatNo"`
	AdminEmail    string  `json:"adminEmail"`
}

type BroadcastService struct {
	broadcastRepo repository.BroadcastRepository
	logger        *zap.Logger
}

func NewBroadcastService(broadcastRepo repository.BroadcastRepository, logger *zap.Logger) *BroadcastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BroadcastService{broadcastRepo: broadcastRepo, logger: logger}
}

func (s *BroadcastService) Create(ctx context.Context, in BroadcastInput) (*model.BroadcastMessage, error) {
	msg, err := buildBroadcast(in)
	if err != nil {
		return nil, err
	}
	msg.ID = uuid.New()

	if err := s.broadcastRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	metrics.IncBroadcastSent(string(msg.BroadcastType))
	return msg, nil
}

func (s *BroadcastService) List(ctx context.Context, scope repository.TenantScope) ([]*model.BroadcastDetail, error) {
	return s.broadcastRepo.List(ctx, scope)
}

func (s *BroadcastService) Count(ctx context.Context, scope repository.TenantScope) (int64, error) {
	return s.broadcastRepo.Count(ctx, scope)
}

func (s *BroadcastService) Update(ctx context.Context, id uuid.UUID, in BroadcastInput) (*model.BroadcastMessage, error) {
	existing, err := s.broadcastRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBroadcastNotFound
		}
		return nil, err
	}

	in.AdminEmail = existing.AdminEmail
	msg, err := buildBroadcast(in)
	if err != nil {
		return nil, err
	}
	msg.ID = existing.ID
	msg.CreatedAt = existing.CreatedAt

	if err := s.broadcastRepo.Update(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBroadcastNotFound
		}
		return nil, err
	}
	return msg, nil
}

func (s *BroadcastService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.broadcastRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBroadcastNotFound
		}
		return err
	}
	return nil
}

func buildBroadcast(in BroadcastInput) (*model.BroadcastMessage, error) {
	// Bodies are authored in the console with light formatting; keep
	// the allowed subset, drop everything else.
	message := inputsanitize.RichText(in.Message)
	broadcastType := model.BroadcastType(strings.TrimSpace(in.BroadcastType))
	adminEmail := strings.TrimSpace(in.AdminEmail)

	if message == "" || broadcastType == "" || adminEmail == "" {
		return nil, ErrInvalidBroadcastInput
	}

	var (
		societyID *uuid.UUID
		flatNo    *string
	)
	if in.SocietyID != nil && strings.TrimSpace(*in.SocietyID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*in.SocietyID))
		if err != nil {
			return nil, ErrInvalidBroadcastInput
		}
		societyID = &id
	}
	if in.FlatNo != nil && strings.TrimSpace(*in.FlatNo) != "" {
		value := strings.TrimSpace(*in.FlatNo)
		flatNo = &value
	}

	switch broadcastType {
	case model.BroadcastTypeSpecific:
		if societyID == nil || flatNo == nil {
			return nil, ErrBroadcastTargetNeeded
		}
	case model.BroadcastTypeSociety:
		if societyID == nil {
			return nil, ErrBroadcastSocietyNeeded
		}
	case model.BroadcastTypeAll:
	default:
		return nil, ErrInvalidBroadcastInput
	}

	return &model.BroadcastMessage{
		Message:       message,
		BroadcastType: broadcastType,
		SocietyID:     societyID,
		FlatNo:        flatNo,
		AdminEmail:    adminEmail,
	}, nil
}
