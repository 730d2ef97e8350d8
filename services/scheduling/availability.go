package scheduling

import (
	"context"
	"time"

	blockRepo "floreria/database/repository/block"
	orderRepo "floreria/database/repository/order"
	"floreria/models"
)

// AvailabilityService answers "is (date, time) bookable right now?" by
// composing the slot generator, the block calendar and the capacity count.
// Results are point-in-time admission decisions; they are recomputed on every
// call, never cached, so invalidation signals only need to trigger a re-query.
type AvailabilityService interface {
	// IsBookable returns nil to admit, or an *AdmissionError naming the first
	// failed check: slotNotOffered, dateBlocked, slotBlocked, slotFull.
	IsBookable(ctx context.Context, date string, minute int) error
	// ListBookableSlots applies the same checks to every candidate slot and
	// returns the surviving subset for the customer-facing picker.
	ListBookableSlots(ctx context.Context, date string) (models.DaySlots, error)
	// Bucket maps a pickup slot to its capacity-count window.
	Bucket(date string, minute int) (start, end time.Time, err error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Schedule ScheduleService
	Blocks   blockRepo.BlockRepository
	Orders   orderRepo.OrderRepository
}

func (svc *DefaultAvailabilityService) IsBookable(ctx context.Context, date string, minute int) error {
	cfg := svc.Schedule.Current()

	times, _, err := GenerateSlots(date, svc.Schedule.Now(), cfg)
	if err != nil {
		return err
	}
	if !containsSlot(times, minute) {
		return NewSlotNotOffered(date, models.FormatMinute(minute))
	}

	blocks, err := svc.Blocks.GetByDate(date)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		if b.FullDay() {
			return NewDateBlocked(date)
		}
	}
	for _, b := range blocks {
		if b.Covers(minute) {
			return NewSlotBlocked(date, models.FormatMinute(minute))
		}
	}

	start, end, err := svc.Bucket(date, minute)
	if err != nil {
		return err
	}
	count, err := svc.Orders.CountActiveInWindow(ctx, start, end)
	if err != nil {
		return err
	}
	if count >= cfg.CapacityPerSlot {
		return NewSlotFull(date, models.FormatMinute(minute))
	}
	return nil
}

func (svc *DefaultAvailabilityService) ListBookableSlots(ctx context.Context, date string) (models.DaySlots, error) {
	cfg := svc.Schedule.Current()
	result := models.DaySlots{Date: date, Times: []string{}}

	times, closedForToday, err := GenerateSlots(date, svc.Schedule.Now(), cfg)
	if err != nil {
		return models.DaySlots{}, err
	}
	if closedForToday {
		result.ClosedForToday = true
		return result, nil
	}
	if len(times) == 0 {
		return result, nil
	}

	blocks, err := svc.Blocks.GetByDate(date)
	if err != nil {
		return models.DaySlots{}, err
	}
	for _, b := range blocks {
		if b.FullDay() {
			return result, nil
		}
	}

	for _, minute := range times {
		if minuteBlocked(blocks, minute) {
			continue
		}
		start, end, err := svc.Bucket(date, minute)
		if err != nil {
			return models.DaySlots{}, err
		}
		count, err := svc.Orders.CountActiveInWindow(ctx, start, end)
		if err != nil {
			return models.DaySlots{}, err
		}
		if count >= cfg.CapacityPerSlot {
			continue
		}
		result.Times = append(result.Times, models.FormatMinute(minute))
	}
	return result, nil
}

// Bucket is [slotTime, slotTime + interval) in the shop time zone.
func (svc *DefaultAvailabilityService) Bucket(date string, minute int) (time.Time, time.Time, error) {
	cfg := svc.Schedule.Current()
	start, err := models.CombineDateMinute(date, minute, svc.Schedule.Location())
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Field: "date", Message: err.Error()}
	}
	return start, start.Add(time.Duration(cfg.SlotIntervalMinutes) * time.Minute), nil
}

func minuteBlocked(blocks []models.Block, minute int) bool {
	for _, b := range blocks {
		if b.Covers(minute) {
			return true
		}
	}
	return false
}
