package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"societyhub/internal/service"
)

type EntryExpiryJob struct {
	entryService *service.EntryService
	logger       *zap.Logger
}

func NewEntryExpiryJob(entryService *service.EntryService, logger *zap.Logger) *EntryExpiryJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EntryExpiryJob{
		entryService: entryService,
		logger:       logger,
	}
}

// SweepExpired flips every overdue entry permission to expired.
func (j *EntryExpiryJob) SweepExpired() {
	if j == nil || j.entryService == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	affected, err := j.entryService.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Warn("entry expiry sweep failed", zap.Error(err))
		return
	}
	if affected > 0 {
		j.logger.Info("entry permissions expired", zap.Int64("count", affected))
	}
}
