package scheduling

import (
	"context"
	"sync"
	"time"

	scheduleRepo "floreria/database/repository/schedule"
	"floreria/models"
	"floreria/services/realtime"
	"floreria/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ScheduleService owns the process-wide schedule configuration: loaded at
// startup, hot-reloaded on admin update, read by every booking request.
type ScheduleService interface {
	// Current returns the cached configuration. Cheap; safe for every request.
	Current() models.ScheduleConfig
	// Update validates and persists an admin edit, refreshes the cache and
	// signals the config invalidation topic.
	Update(ctx context.Context, upd models.ScheduleConfigUpdate) (models.ScheduleConfig, error)
	// Location is the fixed shop time zone.
	Location() *time.Location
	// Now is the current wall-clock time in the shop time zone.
	Now() time.Time
}

// DefaultScheduleService implements ScheduleService with a Mongo-backed
// singleton document and an RWMutex-guarded in-memory copy.
type DefaultScheduleService struct {
	Repo        scheduleRepo.ScheduleRepository
	Invalidator realtime.Invalidator

	loc   *time.Location
	nowFn func() time.Time

	mu  sync.RWMutex
	cfg models.ScheduleConfig
}

// Bootstrap defaults used only when the shop was never configured.
var defaultConfig = models.ScheduleConfig{
	OpenMinute:          9 * 60,
	CloseMinute:         21 * 60,
	SlotIntervalMinutes: 30,
	PrepBufferMinutes:   30,
	CapacityPerSlot:     2,
}

// NewDefaultScheduleService loads (or seeds) the configuration and returns the
// ready-to-use service.
func NewDefaultScheduleService(repo scheduleRepo.ScheduleRepository, inv realtime.Invalidator, loc *time.Location) (*DefaultScheduleService, error) {
	svc := &DefaultScheduleService{
		Repo:        repo,
		Invalidator: inv,
		loc:         loc,
		nowFn:       time.Now,
	}

	cfg, err := repo.Get()
	if err == mongo.ErrNoDocuments {
		seeded := defaultConfig
		seeded.UpdatedAt = svc.Now()
		if err := repo.Upsert(&seeded); err != nil {
			return nil, err
		}
		utils.GetLogger().Info("seeded default schedule config")
		cfg = &seeded
	} else if err != nil {
		return nil, err
	}

	svc.cfg = *cfg
	return svc, nil
}

func (svc *DefaultScheduleService) Current() models.ScheduleConfig {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.cfg
}

func (svc *DefaultScheduleService) Location() *time.Location {
	return svc.loc
}

func (svc *DefaultScheduleService) Now() time.Time {
	return svc.nowFn().In(svc.loc)
}

func (svc *DefaultScheduleService) Update(ctx context.Context, upd models.ScheduleConfigUpdate) (models.ScheduleConfig, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	next := svc.cfg
	if upd.OpenTime != nil {
		m, err := models.ParseClock(*upd.OpenTime)
		if err != nil {
			return models.ScheduleConfig{}, &ConfigError{Field: "openTime", Message: err.Error()}
		}
		next.OpenMinute = m
	}
	if upd.CloseTime != nil {
		m, err := models.ParseClock(*upd.CloseTime)
		if err != nil {
			return models.ScheduleConfig{}, &ConfigError{Field: "closeTime", Message: err.Error()}
		}
		next.CloseMinute = m
	}
	if upd.SlotIntervalMinutes != nil {
		next.SlotIntervalMinutes = *upd.SlotIntervalMinutes
	}
	if upd.PrepBufferMinutes != nil {
		next.PrepBufferMinutes = *upd.PrepBufferMinutes
	}
	if upd.CapacityPerSlot != nil {
		next.CapacityPerSlot = *upd.CapacityPerSlot
	}

	if err := validateConfig(next); err != nil {
		return models.ScheduleConfig{}, err
	}

	next.UpdatedAt = svc.Now()
	if err := svc.Repo.Upsert(&next); err != nil {
		return models.ScheduleConfig{}, err
	}
	svc.cfg = next

	utils.GetLogger().Info("schedule config updated",
		zap.Int("openMinute", next.OpenMinute),
		zap.Int("closeMinute", next.CloseMinute),
		zap.Int("interval", next.SlotIntervalMinutes),
		zap.Int("capacityPerSlot", next.CapacityPerSlot))
	svc.Invalidator.Publish(ctx, realtime.TopicConfig)
	return next, nil
}

// validateConfig rejects invariant violations before persistence.
func validateConfig(cfg models.ScheduleConfig) error {
	if cfg.OpenMinute >= cfg.CloseMinute {
		return &ConfigError{Field: "openTime", Message: "opening time must be before closing time"}
	}
	if cfg.SlotIntervalMinutes <= 0 {
		return &ConfigError{Field: "slotIntervalMinutes", Message: "slot interval must be positive"}
	}
	if cfg.PrepBufferMinutes < 0 {
		return &ConfigError{Field: "prepBufferMinutes", Message: "preparation buffer cannot be negative"}
	}
	if cfg.CapacityPerSlot < 1 {
		return &ConfigError{Field: "capacityPerSlot", Message: "capacity per slot must be at least 1"}
	}
	return nil
}
