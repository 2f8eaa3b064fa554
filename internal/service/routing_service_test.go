package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/doctrack-api/internal/dto"
	"github.com/noah-isme/doctrack-api/internal/models"
	"github.com/noah-isme/doctrack-api/internal/repository"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

// memoryStore emulates the user, document and movement repositories, including
// the version check and the single-current-movement rule of the recorder.
type memoryStore struct {
	mu        sync.Mutex
	users     map[string]models.User
	sections  []models.Section
	docs      map[string]models.Document
	movements map[string][]models.Movement
	seq       int

	activeChecks int

	// readGate, when set, holds GetByID until every expected reader has arrived.
	readGate *sync.WaitGroup
}

func newMemoryStore(users []models.User) *memoryStore {
	store := &memoryStore{
		users:     make(map[string]models.User, len(users)),
		docs:      make(map[string]models.Document),
		movements: make(map[string][]models.Movement),
		sections: []models.Section{
			{ID: "sec-acc", Name: "Accounts", Code: "ACC"},
			{ID: "sec-legal", Name: "Legal", Code: "LGL"},
			{ID: "sec-rcv", Name: "Receipt", Code: "RCV"},
		},
	}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *memoryStore) ListActiveDirectory(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		if u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) ActiveIDs(_ context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeChecks++
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok && u.Active {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *memoryStore) setActive(id string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[id]
	u.Active = active
	m.users[id] = u
}

func (m *memoryStore) ListSections(context.Context) ([]models.Section, error) {
	return m.sections, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	doc, ok := m.docs[id]
	gate := m.readGate
	m.mu.Unlock()
	if gate != nil {
		gate.Done()
		gate.Wait()
	}
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &doc, nil
}

func (m *memoryStore) List(_ context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Document
	for _, d := range m.docs {
		if filter.HolderID != "" && d.HolderID() != filter.HolderID {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *memoryStore) SaveState(_ context.Context, doc *models.Document, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.docs[doc.ID]
	if !ok || stored.Version != expected {
		return repository.ErrStaleVersion
	}
	next := *doc
	next.Version = expected + 1
	next.CurrentHolderID = stored.CurrentHolderID
	next.CurrentSectionID = stored.CurrentSectionID
	m.docs[doc.ID] = next
	doc.Version = next.Version
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.docs, id)
	delete(m.movements, id)
	return nil
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) Receive(_ context.Context, doc *models.Document, initial *models.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.DocumentNumber == doc.DocumentNumber {
			return &pq.Error{Code: "23505"}
		}
	}
	doc.ID = m.nextID("doc")
	doc.Version = 1
	doc.CurrentHolderID = &initial.ToUserID
	doc.CurrentSectionID = initial.ToSectionID
	initial.ID = m.nextID("mov")
	initial.DocumentID = doc.ID
	initial.IsCurrent = true
	m.docs[doc.ID] = *doc
	m.movements[doc.ID] = []models.Movement{*initial}
	return nil
}

func (m *memoryStore) Record(_ context.Context, params repository.RecordParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[params.DocumentID]
	if !ok || doc.Version != params.ExpectedVersion {
		return repository.ErrStaleVersion
	}
	mv := params.Movement
	trail := m.movements[params.DocumentID]
	for i := range trail {
		if trail[i].IsCurrent {
			trail[i].IsCurrent = false
			held := models.HeldDays(trail[i].ForwardedAt, mv.ForwardedAt)
			trail[i].TimeHeldDays = &held
		}
	}
	mv.ID = m.nextID("mov")
	mv.DocumentID = params.DocumentID
	mv.IsCurrent = true
	m.movements[params.DocumentID] = append(trail, *mv)

	doc.CurrentHolderID = &mv.ToUserID
	doc.CurrentSectionID = mv.ToSectionID
	doc.Status = params.Status
	doc.Version++
	m.docs[params.DocumentID] = doc
	return nil
}

func (m *memoryStore) ListByDocument(_ context.Context, documentID string) ([]models.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trail := append([]models.Movement(nil), m.movements[documentID]...)
	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}
	return trail, nil
}

func (m *memoryStore) GetCurrent(_ context.Context, documentID string) (*models.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mv := range m.movements[documentID] {
		if mv.IsCurrent {
			mv := mv
			return &mv, nil
		}
	}
	return nil, sql.ErrNoRows
}

// assertCurrentMatchesHolder checks the one-current-movement invariant.
func (m *memoryStore) assertCurrentMatchesHolder(t *testing.T, documentID string) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.docs[documentID]
	current := 0
	for _, mv := range m.movements[documentID] {
		if mv.IsCurrent {
			current++
			assert.Equal(t, doc.HolderID(), mv.ToUserID)
			assert.Equal(t, doc.CurrentSectionID, mv.ToSectionID)
		}
	}
	assert.Equal(t, 1, current)
}

type activityRecorder struct {
	mu      sync.Mutex
	entries []models.ActivityLog
}

func (a *activityRecorder) Record(_ context.Context, entry models.ActivityLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *activityRecorder) types() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.ActivityType
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type routingFixture struct {
	svc      *RoutingService
	store    *memoryStore
	clock    *clock
	activity *activityRecorder
}

func newRoutingFixture(t *testing.T) *routingFixture {
	t.Helper()
	store := newMemoryStore(directoryFixture())
	clk := &clock{now: time.Date(2024, 6, 10, 10, 30, 0, 0, time.UTC)}
	activity := &activityRecorder{}
	svc := NewRoutingService(store, store, store, nil, nil,
		WithClock(clk.Now),
		WithActivityLog(activity),
		WithRoutingMetrics(NewMetricsService()),
	)
	return &routingFixture{svc: svc, store: store, clock: clk, activity: activity}
}

func (f *routingFixture) receive(t *testing.T, actor, number string, kind models.DocumentKind) *models.Document {
	t.Helper()
	req := dto.ReceiveDocumentRequest{
		Kind:           kind,
		DocumentNumber: number,
		Subject:        "Annual budget",
		SenderName:     "Finance Ministry",
		ReceivedDate:   f.clock.Now().Format(dto.DateLayout),
	}
	if kind == models.DocumentKindBill {
		req.Bill = &dto.BillDetails{InvoiceNumber: "INV-1", BillAmount: 1200}
	}
	doc, err := f.svc.Receive(context.Background(), actor, req)
	require.NoError(t, err)
	return doc
}

func TestRoutingReceiveCreatesInitialMovement(t *testing.T) {
	f := newRoutingFixture(t)
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	assert.Equal(t, "R", doc.HolderID())
	assert.Equal(t, models.StatusReceived, doc.Status)
	assert.Equal(t, models.PriorityNormal, doc.Priority)

	history, err := f.svc.MovementHistory(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromUserID)
	assert.Equal(t, models.ActionReceived, history[0].Action)
	assert.True(t, history[0].IsCurrent)
	f.store.assertCurrentMatchesHolder(t, doc.ID)
	assert.Equal(t, []string{models.ActivityDocumentReceived}, f.activity.types())
}

func TestRoutingReceiveRules(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	base := dto.ReceiveDocumentRequest{
		Kind:           models.DocumentKindNotesheet,
		DocumentNumber: "NS-9",
		Subject:        "Subject",
		SenderName:     "Sender",
		ReceivedDate:   "2024-06-10",
	}

	_, err := f.svc.Receive(ctx, "M", base)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	future := base
	future.ReceivedDate = "2024-06-11"
	_, err = f.svc.Receive(ctx, "R", future)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	bill := base
	bill.Kind = models.DocumentKindBill
	_, err = f.svc.Receive(ctx, "R", bill)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Receive(ctx, "R", base)
	require.NoError(t, err)
	_, err = f.svc.Receive(ctx, "R2", base)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestRoutingForwardMovesHolder(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	recipients, err := f.svc.ListForwardableRecipients(ctx, "R", doc.ID)
	require.NoError(t, err)
	_, ok := IsAllowedRecipient(recipients, "H")
	require.True(t, ok)

	f.clock.advance(2 * 24 * time.Hour)
	movement, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H", Comments: "please review"})
	require.NoError(t, err)
	assert.Equal(t, "H", movement.ToUserID)
	assert.Equal(t, "sec-acc", *movement.ToSectionID)
	assert.Equal(t, "R", *movement.FromUserID)
	assert.Equal(t, models.ActionForwarded, movement.Action)

	stored, err := f.store.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "H", stored.HolderID())
	assert.Equal(t, "sec-acc", *stored.CurrentSectionID)
	assert.Equal(t, models.StatusForwarded, stored.Status)

	history, err := f.svc.MovementHistory(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsCurrent)
	assert.False(t, history[1].IsCurrent)
	require.NotNil(t, history[1].TimeHeldDays)
	assert.Equal(t, 2, *history[1].TimeHeldDays)
	f.store.assertCurrentMatchesHolder(t, doc.ID)
}

func TestRoutingForwardStatusFollowsAction(t *testing.T) {
	cases := map[models.MovementAction]models.DocumentStatus{
		models.ActionApproved: models.StatusApproved,
		models.ActionRejected: models.StatusRejected,
		models.ActionReviewed: models.StatusInProgress,
		models.ActionReturned: models.StatusForwarded,
	}
	for action, want := range cases {
		f := newRoutingFixture(t)
		doc := f.receive(t, "R", "NS-"+string(action), models.DocumentKindNotesheet)
		_, err := f.svc.Forward(context.Background(), "R", doc.ID, dto.ForwardRequest{ToUserID: "H", Action: action})
		require.NoError(t, err, action)
		stored, _ := f.store.GetByID(context.Background(), doc.ID)
		assert.Equal(t, want, stored.Status, action)
	}
}

func TestRoutingForwardRoleMismatch(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)
	_, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "M2"})
	require.NoError(t, err)

	_, err = f.svc.Forward(ctx, "M", doc.ID, dto.ForwardRequest{ToUserID: "H"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrForwardNotPermitted)
	assert.Equal(t, string(models.ReasonRoleMismatch), appErrors.ReasonOf(err))
	assert.Contains(t, f.activity.types(), models.ActivityForwardDenied)

	decision, err := f.svc.CanForward(ctx, "M", doc.ID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, models.ReasonRoleMismatch, decision.Reason)
}

func TestRoutingForwardRejectsTargetOutsideRecipientSet(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)
	_, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "M"})
	require.NoError(t, err)

	// M may only reach its own head.
	_, err = f.svc.Forward(ctx, "M", doc.ID, dto.ForwardRequest{ToUserID: "L"})
	require.Error(t, err)
	assert.Equal(t, string(models.ReasonRecipientNotAllowed), appErrors.ReasonOf(err))

	for _, target := range []string{"admin", "gone", "M", "missing"} {
		_, err = f.svc.Forward(ctx, "M", doc.ID, dto.ForwardRequest{ToUserID: target})
		assert.ErrorIs(t, err, appErrors.ErrForwardNotPermitted, target)
	}

	_, err = f.svc.Forward(ctx, "M", doc.ID, dto.ForwardRequest{ToUserID: "H", ToSectionID: "sec-legal"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.Forward(ctx, "M", doc.ID, dto.ForwardRequest{ToUserID: "H", ToSectionID: "sec-acc"})
	require.NoError(t, err)
}

func TestRoutingForwardDates(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	_, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H", ForwardDate: "2024-06-11"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidForwardDate)
	assert.Equal(t, string(models.ReasonFutureDate), appErrors.ReasonOf(err))

	_, err = f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H", ForwardDate: "2024-06-01"})
	require.Error(t, err)
	assert.Equal(t, string(models.ReasonBeforeLastMovement), appErrors.ReasonOf(err))

	f.clock.advance(5 * 24 * time.Hour)
	movement, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H", ForwardDate: "2024-06-12"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 12, 10, 30, 0, 0, time.UTC), movement.ForwardedAt)

	held, err := f.svc.DaysHeld(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, held.Days)
	assert.Equal(t, models.UrgencyLow, held.Urgency)
}

func TestRoutingPaidBillLocksForwarding(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	bill := f.receive(t, "R", "BILL-1", models.DocumentKindBill)
	_, err := f.svc.Forward(ctx, "R", bill.ID, dto.ForwardRequest{ToUserID: "H"})
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, "H", bill.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid())

	_, err = f.svc.MarkPaid(ctx, "H", bill.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	for _, actor := range []string{"H", "R", "L"} {
		decision, err := f.svc.CanForward(ctx, actor, bill.ID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed, actor)
		assert.Equal(t, models.ReasonPaymentPaid, decision.Reason, actor)
	}
	_, err = f.svc.Forward(ctx, "H", bill.ID, dto.ForwardRequest{ToUserID: "M"})
	assert.ErrorIs(t, err, appErrors.ErrDocumentLocked)

	decision, err := f.svc.CanForward(ctx, "admin", bill.ID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	_, err = f.svc.Forward(ctx, "admin", bill.ID, dto.ForwardRequest{ToUserID: "R"})
	require.NoError(t, err)
}

func TestRoutingRepliedLetterLocksForwarding(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	letter := f.receive(t, "R", "LTR-1", models.DocumentKindLetter)
	assert.Equal(t, models.LetterIncoming, *letter.LetterType)

	replied, err := f.svc.MarkReplied(ctx, "R", letter.ID, dto.MarkRepliedRequest{ReplyReference: "OUT/12"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReplied, replied.Status)

	_, err = f.svc.Forward(ctx, "R", letter.ID, dto.ForwardRequest{ToUserID: "H"})
	assert.Equal(t, string(models.ReasonLetterReplied), appErrors.ReasonOf(err))

	notesheet := f.receive(t, "R", "NS-2", models.DocumentKindNotesheet)
	_, err = f.svc.MarkReplied(ctx, "R", notesheet.ID, dto.MarkRepliedRequest{ReplyReference: "X"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestRoutingParkUnparkKeepsTimeHeld(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)
	_, err := f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H", Action: models.ActionReviewed})
	require.NoError(t, err)

	parked, err := f.svc.Park(ctx, "H", doc.ID, dto.ParkRequest{Reason: "awaiting funds"})
	require.NoError(t, err)
	assert.True(t, parked.IsParked)
	assert.Equal(t, models.StatusParked, parked.Status)
	assert.Equal(t, "H", *parked.ParkedBy)

	_, err = f.svc.Park(ctx, "H", doc.ID, dto.ParkRequest{Reason: "again"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	decision, err := f.svc.CanForward(ctx, "admin", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonDocumentParked, decision.Reason)
	recipients, err := f.svc.ListForwardableRecipients(ctx, "H", doc.ID)
	require.NoError(t, err)
	assert.Empty(t, recipients)

	f.clock.advance(5 * 24 * time.Hour)
	unparked, err := f.svc.Unpark(ctx, "H", doc.ID)
	require.NoError(t, err)
	assert.False(t, unparked.IsParked)
	assert.Equal(t, models.StatusInProgress, unparked.Status)
	assert.Equal(t, 1, unparked.ReturnCount)
	assert.Nil(t, unparked.StatusBeforePark)

	held, err := f.svc.DaysHeld(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, held.Days)
	assert.Equal(t, models.UrgencyMedium, held.Urgency)

	history, err := f.svc.MovementHistory(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = f.svc.Unpark(ctx, "H", doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = f.svc.Park(ctx, "M", doc.ID, dto.ParkRequest{Reason: "not mine"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRoutingCloseAndArchive(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	_, err := f.svc.Archive(ctx, "R", doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	closed, err := f.svc.Close(ctx, "R", doc.ID, dto.CloseRequest{Remarks: "done"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.Equal(t, "done", *closed.Remarks)

	for _, actor := range []string{"R", "H", "admin"} {
		decision, err := f.svc.CanForward(ctx, actor, doc.ID)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, models.ReasonStatusClosed, decision.Reason)
	}
	_, err = f.svc.Park(ctx, "R", doc.ID, dto.ParkRequest{Reason: "late"})
	assert.ErrorIs(t, err, appErrors.ErrDocumentLocked)

	_, err = f.svc.Archive(ctx, "M", doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	archived, err := f.svc.Archive(ctx, "R", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, archived.Status)

	_, err = f.svc.Forward(ctx, "admin", doc.ID, dto.ForwardRequest{ToUserID: "H"})
	assert.ErrorIs(t, err, appErrors.ErrDocumentLocked)
}

func TestRoutingConcurrentForwardOneWins(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	gate := &sync.WaitGroup{}
	gate.Add(2)
	f.store.mu.Lock()
	f.store.readGate = gate
	f.store.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, target := range []string{"H", "L"} {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			_, errs[i] = f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: target})
		}(i, target)
	}
	wg.Wait()

	f.store.mu.Lock()
	f.store.readGate = nil
	f.store.mu.Unlock()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, appErrors.ErrConcurrentModification):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	history, err := f.svc.MovementHistory(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	f.store.assertCurrentMatchesHolder(t, doc.ID)
}

func TestRoutingNotFoundAndInactiveActor(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CanForward(ctx, "R", "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = f.svc.DaysHeld(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = f.svc.MovementHistory(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)
	_, err = f.svc.CanForward(ctx, "gone", doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = f.svc.CanForward(ctx, "", doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestRoutingDeleteRequiresSuperuser(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)

	assert.ErrorIs(t, f.svc.Delete(ctx, "R", doc.ID), appErrors.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, "admin", doc.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, "admin", doc.ID), appErrors.ErrNotFound)
}

func TestRoutingDetailAndListing(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS-1", models.DocumentKindNotesheet)
	f.receive(t, "R2", "NS-2", models.DocumentKindNotesheet)

	f.clock.advance(9 * 24 * time.Hour)
	detail, err := f.svc.GetDetail(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.TimeHeld)
	assert.Equal(t, 9, detail.TimeHeld.Days)
	assert.Equal(t, models.UrgencyHigh, detail.TimeHeld.Urgency)

	docs, page, err := f.svc.ListDocuments(ctx, dto.DocumentQuery{HolderID: "R"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 20, page.PageSize)

	sections, err := f.svc.ListSections(ctx)
	require.NoError(t, err)
	assert.Len(t, sections, 3)
}

type slipStub struct {
	held []int
}

func (s *slipStub) RoutingSlip(_ *models.Document, _ []models.Movement, held []int, _ time.Time) ([]byte, error) {
	s.held = held
	return []byte("%PDF"), nil
}

func TestRoutingSlip(t *testing.T) {
	f := newRoutingFixture(t)
	ctx := context.Background()
	doc := f.receive(t, "R", "NS/1", models.DocumentKindNotesheet)

	_, _, err := f.svc.RoutingSlip(ctx, doc.ID)
	assert.ErrorIs(t, err, appErrors.ErrPreconditionFailed)

	stub := &slipStub{}
	WithRoutingSlipRenderer(stub)(f.svc)
	f.clock.advance(24 * time.Hour)
	_, err = f.svc.Forward(ctx, "R", doc.ID, dto.ForwardRequest{ToUserID: "H"})
	require.NoError(t, err)
	f.clock.advance(48 * time.Hour)

	body, name, err := f.svc.RoutingSlip(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body))
	assert.Equal(t, "routing-slip-NS-1.pdf", name)
	assert.Equal(t, []int{2, 1}, stub.held)
}
