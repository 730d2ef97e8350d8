package scheduling

import (
	"context"
	"time"

	blockRepo "floreria/database/repository/block"
	"floreria/models"
	"floreria/services/realtime"
	"floreria/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BlockService manages admin-declared closures: full-day blocks and partial
// time-range blocks per date.
type BlockService interface {
	// AddBlock declares a closure. Empty startClock/endClock means full-day.
	// Declaring a full-day block twice for the same date is idempotent: the
	// existing block is returned.
	AddBlock(ctx context.Context, date, startClock, endClock, reason string) (*models.Block, error)
	// RemoveBlock hard-deletes the block. Returns ErrBlockNotFound if absent.
	RemoveBlock(ctx context.Context, blockID string) error
	// ListRange returns blocks with from <= date <= to for the admin calendar.
	ListRange(ctx context.Context, from, to string) ([]models.Block, error)
}

// DefaultBlockService implements BlockService.
type DefaultBlockService struct {
	Repo        blockRepo.BlockRepository
	Schedule    ScheduleService
	Invalidator realtime.Invalidator
}

func (svc *DefaultBlockService) AddBlock(ctx context.Context, date, startClock, endClock, reason string) (*models.Block, error) {
	if _, err := time.ParseInLocation(models.DateLayout, date, svc.Schedule.Location()); err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	if (startClock == "") != (endClock == "") {
		return nil, &ValidationError{Field: "range", Message: "start and end times must be given together"}
	}

	start, end := models.FullDayMinute, models.FullDayMinute
	if startClock != "" {
		var err error
		if start, err = models.ParseClock(startClock); err != nil {
			return nil, &ValidationError{Field: "startTime", Message: err.Error()}
		}
		if end, err = models.ParseClock(endClock); err != nil {
			return nil, &ValidationError{Field: "endTime", Message: err.Error()}
		}
		if start >= end {
			return nil, &ValidationError{Field: "range", Message: "start time must be before end time"}
		}
	}

	// Duplicate full-day blocks collapse onto the existing one.
	if start == models.FullDayMinute {
		existing, err := svc.Repo.FindFullDay(date)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	block := &models.Block{
		BlockID:   uuid.New().String(),
		Date:      date,
		Start:     start,
		End:       end,
		Reason:    reason,
		CreatedAt: svc.Schedule.Now(),
	}
	if err := svc.Repo.Create(block); err != nil {
		return nil, err
	}

	utils.GetLogger().Info("block added",
		zap.String("blockId", block.BlockID),
		zap.String("date", date),
		zap.Bool("fullDay", block.FullDay()))
	svc.Invalidator.Publish(ctx, realtime.TopicBlocks)
	return block, nil
}

func (svc *DefaultBlockService) RemoveBlock(ctx context.Context, blockID string) error {
	deleted, err := svc.Repo.Delete(blockID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBlockNotFound
	}
	utils.GetLogger().Info("block removed", zap.String("blockId", blockID))
	svc.Invalidator.Publish(ctx, realtime.TopicBlocks)
	return nil
}

func (svc *DefaultBlockService) ListRange(ctx context.Context, from, to string) ([]models.Block, error) {
	return svc.Repo.GetRange(from, to)
}
