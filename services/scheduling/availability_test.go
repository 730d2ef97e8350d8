package scheduling

import (
	"context"
	"testing"
	"time"

	orderRepo "floreria/database/repository/order"
	"floreria/models"

	"github.com/stretchr/testify/require"
)

// fakeSchedule pins the clock and the configuration.
type fakeSchedule struct {
	cfg models.ScheduleConfig
	now time.Time
}

func (f *fakeSchedule) Current() models.ScheduleConfig { return f.cfg }
func (f *fakeSchedule) Location() *time.Location       { return f.now.Location() }
func (f *fakeSchedule) Now() time.Time                 { return f.now }
func (f *fakeSchedule) Update(ctx context.Context, upd models.ScheduleConfigUpdate) (models.ScheduleConfig, error) {
	return f.cfg, nil
}

// fakeBlocks is an in-memory BlockRepository.
type fakeBlocks struct {
	blocks []models.Block
}

func (f *fakeBlocks) Create(b *models.Block) error {
	f.blocks = append(f.blocks, *b)
	return nil
}

func (f *fakeBlocks) Delete(blockID string) (bool, error) {
	for i, b := range f.blocks {
		if b.BlockID == blockID {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlocks) GetByDate(date string) ([]models.Block, error) {
	var out []models.Block
	for _, b := range f.blocks {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlocks) GetRange(from, to string) ([]models.Block, error) {
	var out []models.Block
	for _, b := range f.blocks {
		if b.Date >= from && b.Date <= to {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlocks) FindFullDay(date string) (*models.Block, error) {
	for _, b := range f.blocks {
		if b.Date == date && b.FullDay() {
			copied := b
			return &copied, nil
		}
	}
	return nil, nil
}

// fakeOrderCounts implements only the capacity-count side of OrderRepository.
type fakeOrderCounts struct {
	pickups []struct {
		at     time.Time
		status models.OrderStatus
	}
}

func (f *fakeOrderCounts) add(at time.Time, status models.OrderStatus) {
	f.pickups = append(f.pickups, struct {
		at     time.Time
		status models.OrderStatus
	}{at, status})
}

func (f *fakeOrderCounts) CountActiveInWindow(ctx context.Context, start, end time.Time) (int, error) {
	n := 0
	for _, p := range f.pickups {
		if !p.at.Before(start) && p.at.Before(end) && p.status.Active() {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderCounts) GetByID(string) (*models.Order, error)               { panic("not used") }
func (f *fakeOrderCounts) List(orderRepo.ListFilter) ([]models.Order, error)   { panic("not used") }
func (f *fakeOrderCounts) EnsureIndexes() error                                { return nil }
func (f *fakeOrderCounts) ApplyTransition(context.Context, *models.Order, models.OrderStatus, *models.HistoryEntry) error {
	panic("not used")
}
func (f *fakeOrderCounts) CreateWithAdmission(context.Context, *models.Order, *models.HistoryEntry, time.Time, time.Time, int) error {
	panic("not used")
}

func newAvailability(t *testing.T) (*DefaultAvailabilityService, *fakeBlocks, *fakeOrderCounts) {
	t.Helper()
	sched := &fakeSchedule{cfg: testConfig(), now: at(t, "2026-09-10", "08:00")}
	blocks := &fakeBlocks{}
	orders := &fakeOrderCounts{}
	svc := &DefaultAvailabilityService{Schedule: sched, Blocks: blocks, Orders: orders}
	return svc, blocks, orders
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	ae, ok := AsAdmissionError(err)
	require.True(t, ok, "expected an admission error, got %v", err)
	require.Equal(t, code, ae.Code)
}

func TestIsBookableRejectsOffGridTime(t *testing.T) {
	svc, _, _ := newAvailability(t)

	err := svc.IsBookable(context.Background(), "2026-09-12", 14*60+5)
	requireCode(t, err, CodeSlotNotOffered)
}

func TestIsBookableFullDayBlock(t *testing.T) {
	svc, blocks, _ := newAvailability(t)
	blocks.blocks = append(blocks.blocks, models.Block{
		BlockID: "b1", Date: "2026-09-12",
		Start: models.FullDayMinute, End: models.FullDayMinute,
		Reason: "inventory day",
	})

	for _, minute := range []int{9 * 60, 12 * 60, 21 * 60} {
		err := svc.IsBookable(context.Background(), "2026-09-12", minute)
		requireCode(t, err, CodeDateBlocked)
	}

	// Removing the block restores availability.
	blocks.blocks = nil
	require.NoError(t, svc.IsBookable(context.Background(), "2026-09-12", 12*60))
}

func TestIsBookablePartialBlock(t *testing.T) {
	svc, blocks, _ := newAvailability(t)
	blocks.blocks = append(blocks.blocks, models.Block{
		BlockID: "b1", Date: "2026-09-12",
		Start: 10 * 60, End: 12 * 60,
		Reason: "private event",
	})

	err := svc.IsBookable(context.Background(), "2026-09-12", 11*60)
	requireCode(t, err, CodeSlotBlocked)
	require.NoError(t, svc.IsBookable(context.Background(), "2026-09-12", 9*60))
	require.NoError(t, svc.IsBookable(context.Background(), "2026-09-12", 12*60),
		"block end is exclusive")
}

func TestIsBookableSlotFull(t *testing.T) {
	svc, _, orders := newAvailability(t)
	pickup := at(t, "2026-09-12", "14:20")
	orders.add(pickup, models.StatusPending)
	orders.add(pickup, models.StatusAccepted)

	err := svc.IsBookable(context.Background(), "2026-09-12", 14*60+20)
	requireCode(t, err, CodeSlotFull)
}

func TestCancelledAndRejectedOrdersFreeTheirSlot(t *testing.T) {
	svc, _, orders := newAvailability(t)
	pickup := at(t, "2026-09-12", "14:20")
	orders.add(pickup, models.StatusPending)
	orders.add(pickup, models.StatusCancelled)
	orders.add(pickup, models.StatusRejected)

	require.NoError(t, svc.IsBookable(context.Background(), "2026-09-12", 14*60+20))
}

func TestListBookableSlotsFiltersBlockedAndFull(t *testing.T) {
	svc, blocks, orders := newAvailability(t)
	blocks.blocks = append(blocks.blocks, models.Block{
		BlockID: "b1", Date: "2026-09-12", Start: 10 * 60, End: 12 * 60,
	})
	orders.add(at(t, "2026-09-12", "14:20"), models.StatusPending)
	orders.add(at(t, "2026-09-12", "14:20"), models.StatusAccepted)

	slots, err := svc.ListBookableSlots(context.Background(), "2026-09-12")
	require.NoError(t, err)
	require.False(t, slots.ClosedForToday)
	require.NotContains(t, slots.Times, "10:30")
	require.NotContains(t, slots.Times, "11:50")
	require.NotContains(t, slots.Times, "14:20")
	require.Contains(t, slots.Times, "09:00")
	require.Contains(t, slots.Times, "12:00")
	require.Contains(t, slots.Times, "21:00")
}

func TestListBookableSlotsClosedForToday(t *testing.T) {
	sched := &fakeSchedule{cfg: testConfig(), now: at(t, "2026-09-10", "20:58")}
	svc := &DefaultAvailabilityService{Schedule: sched, Blocks: &fakeBlocks{}, Orders: &fakeOrderCounts{}}

	slots, err := svc.ListBookableSlots(context.Background(), "2026-09-10")
	require.NoError(t, err)
	require.True(t, slots.ClosedForToday)
	require.Empty(t, slots.Times)
}

func TestListBookableSlotsFullDayBlockYieldsEmpty(t *testing.T) {
	svc, blocks, _ := newAvailability(t)
	blocks.blocks = append(blocks.blocks, models.Block{
		BlockID: "b1", Date: "2026-09-12",
		Start: models.FullDayMinute, End: models.FullDayMinute,
	})

	slots, err := svc.ListBookableSlots(context.Background(), "2026-09-12")
	require.NoError(t, err)
	require.False(t, slots.ClosedForToday)
	require.Empty(t, slots.Times)
}
