package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	orderRepo "floreria/database/repository/order"
	"floreria/models"
	"floreria/services/realtime"
	"floreria/services/scheduling"

	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory stand-in for the Mongo repository, mirroring its
// admission mechanics: a per-slot counter gates creation and is given back
// when an order leaves the slot-holding states. The mutex plays the role of
// the storage transaction.
type memRepo struct {
	mu      sync.Mutex
	orders  map[string]models.Order
	buckets map[string]int
	history []models.HistoryEntry
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders:  make(map[string]models.Order),
		buckets: make(map[string]int),
	}
}

func slotKey(o *models.Order) string {
	return fmt.Sprintf("%s#%d", o.PickupDate, o.PickupMinute)
}

func (r *memRepo) GetByID(orderID string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, orderRepo.ErrNotFound
	}
	copied := o
	return &copied, nil
}

func (r *memRepo) List(filter orderRepo.ListFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PickupDate != "" && o.PickupDate != filter.PickupDate {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *memRepo) CountActiveInWindow(ctx context.Context, start, end time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(start, end), nil
}

func (r *memRepo) countLocked(start, end time.Time) int {
	n := 0
	for _, o := range r.orders {
		if !o.PickupAt.Before(start) && o.PickupAt.Before(end) && o.Status.Active() {
			n++
		}
	}
	return n
}

func (r *memRepo) CreateWithAdmission(ctx context.Context, o *models.Order, entry *models.HistoryEntry, bucketStart, bucketEnd time.Time, capacity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := slotKey(o)
	if r.buckets[key] >= capacity {
		return orderRepo.ErrCapacityExhausted
	}
	r.buckets[key]++
	r.orders[o.ID] = *o
	r.history = append(r.history, *entry)
	return nil
}

func (r *memRepo) ApplyTransition(ctx context.Context, o *models.Order, prev models.OrderStatus, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return orderRepo.ErrNotFound
	}
	if cur.Status != prev {
		return orderRepo.ErrStaleStatus
	}
	if prev.Active() && !o.Status.Active() {
		if key := slotKey(o); r.buckets[key] > 0 {
			r.buckets[key]--
		}
	}
	r.orders[o.ID] = *o
	r.history = append(r.history, *entry)
	return nil
}

func (r *memRepo) EnsureIndexes() error { return nil }

// ListFor makes memRepo double as the history repository. Entries are appended
// in commit order, which is occurred_at ascending.
func (r *memRepo) ListFor(orderID string) ([]models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HistoryEntry
	for _, e := range r.history {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fixedSchedule struct {
	cfg models.ScheduleConfig
	now time.Time
}

func (f *fixedSchedule) Current() models.ScheduleConfig { return f.cfg }
func (f *fixedSchedule) Location() *time.Location       { return f.now.Location() }
func (f *fixedSchedule) Now() time.Time                 { return f.now }
func (f *fixedSchedule) Update(ctx context.Context, upd models.ScheduleConfigUpdate) (models.ScheduleConfig, error) {
	return f.cfg, nil
}

// openAvailability admits everything except full buckets; block and grid
// checks have their own tests in the scheduling package.
type openAvailability struct {
	sched *fixedSchedule
	repo  *memRepo
}

func (a *openAvailability) Bucket(date string, minute int) (time.Time, time.Time, error) {
	start, err := models.CombineDateMinute(date, minute, a.sched.Location())
	if err != nil {
		return time.Time{}, time.Time{}, &scheduling.ValidationError{Field: "date", Message: err.Error()}
	}
	return start, start.Add(time.Duration(a.sched.cfg.SlotIntervalMinutes) * time.Minute), nil
}

func (a *openAvailability) IsBookable(ctx context.Context, date string, minute int) error {
	start, end, err := a.Bucket(date, minute)
	if err != nil {
		return err
	}
	count, err := a.repo.CountActiveInWindow(ctx, start, end)
	if err != nil {
		return err
	}
	if count >= a.sched.cfg.CapacityPerSlot {
		return scheduling.NewSlotFull(date, models.FormatMinute(minute))
	}
	return nil
}

func (a *openAvailability) ListBookableSlots(ctx context.Context, date string) (models.DaySlots, error) {
	return models.DaySlots{Date: date, Times: []string{}}, nil
}

func newTestService(t *testing.T) (*DefaultOrderService, *memRepo) {
	t.Helper()
	now, err := time.ParseInLocation("2006-01-02 15:04", "2026-09-10 08:00", time.UTC)
	require.NoError(t, err)
	sched := &fixedSchedule{
		cfg: models.ScheduleConfig{
			OpenMinute:          9 * 60,
			CloseMinute:         21 * 60,
			SlotIntervalMinutes: 10,
			PrepBufferMinutes:   6,
			CapacityPerSlot:     2,
		},
		now: now,
	}
	repo := newMemRepo()
	svc := &DefaultOrderService{
		Repo:         repo,
		History:      repo,
		Availability: &openAvailability{sched: sched, repo: repo},
		Schedule:     sched,
		Invalidator:  realtime.NewMemoryInvalidator(),
	}
	return svc, repo
}

func testInput(clock string) models.OrderInput {
	return models.OrderInput{
		ContactName:  "María Torres",
		ContactPhone: "+51 999 111 222",
		ReceiverName: "Lucía Torres",
		TotalAmount:  85.50,
		PickupDate:   "2026-09-12",
		PickupTime:   clock,
	}
}

var (
	ana  = models.ActorRef{ID: "staff-ana", Name: "Ana", Role: "staff"}
	luis = models.ActorRef{ID: "staff-luis", Name: "Luis", Role: "staff"}
)

func requireTransitionCode(t *testing.T, err error, code string) {
	t.Helper()
	te, ok := AsTransitionError(err)
	require.True(t, ok, "expected a transition error, got %v", err)
	require.Equal(t, code, te.Code)
}

func TestOrderLifecycleHappyPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, o.Status)
	require.Equal(t, 14*60+30, o.PickupMinute)

	o, err = svc.Transition(ctx, o.ID, ana, models.StatusAccepted, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, o.Status)
	require.NotNil(t, o.AcceptedBy)
	require.Equal(t, ana.ID, o.AcceptedBy.Actor.ID)

	o, err = svc.Transition(ctx, o.ID, ana, models.StatusFinished, "")
	require.NoError(t, err)
	require.NotNil(t, o.FinishedBy)

	o, err = svc.Transition(ctx, o.ID, ana, models.StatusDelivered, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredBy)
	require.True(t, o.Status.Terminal())

	entries, err := svc.GetHistory(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4, "creation plus three transitions")
	require.Equal(t, models.OrderStatus(""), entries[0].PreviousStatus, "creation entry has no previous status")
	require.Equal(t, models.StatusPending, entries[0].NewStatus)
	require.Equal(t, models.StatusDelivered, entries[3].NewStatus)
	for i := 1; i < len(entries); i++ {
		require.Equal(t, entries[i-1].NewStatus, entries[i].PreviousStatus,
			"history must chain without gaps")
	}
}

func TestTransitionSkippingStatesRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, ana, models.StatusDelivered, "")
	requireTransitionCode(t, err, CodeInvalidTransition)
}

func TestTransitionUnknownStatusRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, ana, models.OrderStatus("enviado"), "")
	requireTransitionCode(t, err, CodeUnknownStatus)
}

func TestTransitionToCancelledGoesThroughCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, ana, models.StatusCancelled, "")
	requireTransitionCode(t, err, CodeInvalidTransition)
}

func TestEmergencyTakeover(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)
	_, err = svc.Transition(ctx, o.ID, ana, models.StatusAccepted, "")
	require.NoError(t, err)

	// A different actor may take over; the order stays aceptado with the
	// new owner and the audit note records the handover.
	o, err = svc.Transition(ctx, o.ID, luis, models.StatusAccepted, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, o.Status)
	require.Equal(t, luis.ID, o.AcceptedBy.Actor.ID)

	entries, err := svc.GetHistory(ctx, o.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	require.Equal(t, models.StatusAccepted, last.PreviousStatus)
	require.Equal(t, models.StatusAccepted, last.NewStatus)
	require.Contains(t, last.Note, "took over")
	require.Contains(t, last.Note, ana.Name)

	// Re-acceptance by the current owner is not a takeover.
	_, err = svc.Transition(ctx, o.ID, luis, models.StatusAccepted, "")
	requireTransitionCode(t, err, CodeInvalidTransition)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	_, err = svc.Transition(ctx, o.ID, ana, models.StatusRejected, "")
	requireTransitionCode(t, err, CodeReasonRequired)

	o, err = svc.Transition(ctx, o.ID, ana, models.StatusRejected, "out of roses")
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, o.Status)
	require.Equal(t, "out of roses", o.RejectionReason)
	require.NotNil(t, o.RejectedBy)
}

func TestCancelOnlyWhilePending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := models.ActorRef{ID: "customer", Name: "María Torres", Role: "customer"}

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, o.ID, customer)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, cancelled.Status)

	o2, err := svc.CreateOrder(ctx, testInput("15:00"))
	require.NoError(t, err)
	_, err = svc.Transition(ctx, o2.ID, ana, models.StatusAccepted, "")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, o2.ID, customer)
	requireTransitionCode(t, err, CodeInvalidTransition)
}

func TestCapacityExhaustionAndRelease(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	customer := models.ActorRef{ID: "customer", Name: "María Torres", Role: "customer"}

	first, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, testInput("14:30"))
	ae, ok := scheduling.AsAdmissionError(err)
	require.True(t, ok, "expected an admission error, got %v", err)
	require.Equal(t, scheduling.CodeSlotFull, ae.Code)
	require.False(t, ae.Retryable())

	// Cancelling an admitted order frees its slot for the next customer.
	_, err = svc.Cancel(ctx, first.ID, customer)
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)
}

func TestConcurrentAdmissionNeverOverbooks(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(ctx, testInput("14:30"))
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		ae, ok := scheduling.AsAdmissionError(err)
		require.True(t, ok, "unexpected error kind: %v", err)
		require.Equal(t, scheduling.CodeSlotFull, ae.Code)
	}
	require.Equal(t, 2, admitted, "exactly capacityPerSlot orders may win the slot")

	orders, err := repo.List(orderRepo.ListFilter{PickupDate: "2026-09-12"})
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestConcurrentTransitionOnlyOneWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, testInput("14:30"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	actors := []models.ActorRef{ana, luis}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transition(ctx, o.ID, actors[i], models.StatusAccepted, "")
		}(i)
	}
	wg.Wait()

	// Both may win (the second lands as a takeover), but a loser must get a
	// clean invalid-transition result, never a corrupted order.
	for _, err := range errs {
		if err != nil {
			requireTransitionCode(t, err, CodeInvalidTransition)
		}
	}
	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.AcceptedBy)
}
