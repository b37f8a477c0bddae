package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/jackc/pgx/v5"

	dom "github.com/wl39/todo-sync/internal/domain"
	"github.com/wl39/todo-sync/internal/dto"
	"github.com/wl39/todo-sync/internal/repo"
)

// memTodoRepo mirrors the PG repo's contract in memory: uniform ErrNoRows
// for absent/foreign/deleted todos, version checks, one audit row per
// mutation.
type memTodoRepo struct {
	nextID int64
	todos  map[int64]*dom.Todo
	order  []int64
	audits []dom.TodoAudit
	now    time.Time
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{todos: map[int64]*dom.Todo{}, now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memTodoRepo) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *memTodoRepo) owned(userID, id int64) (*dom.Todo, error) {
	t, ok := m.todos[id]
	if !ok || t.UserID != userID || t.IsDeleted {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memTodoRepo) audit(todoID int64, action dom.AuditAction, from, to *dom.Status, editorID *int64) {
	m.audits = append(m.audits, dom.TodoAudit{
		ID: int64(len(m.audits) + 1), TodoID: todoID, Action: action,
		FromStatus: from, ToStatus: to, EditorUserID: editorID, CreatedAt: m.now,
	})
}

func (m *memTodoRepo) Create(_ context.Context, t dom.Todo, editorID *int64) (dom.Todo, error) {
	m.nextID++
	now := m.tick()
	stored := t
	stored.ID = m.nextID
	stored.Status = dom.StatusPending
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.todos[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	m.audit(stored.ID, dom.AuditCreate, nil, nil, editorID)
	return stored, nil
}

func (m *memTodoRepo) GetByID(_ context.Context, userID, id int64) (dom.Todo, error) {
	t, err := m.owned(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	return *t, nil
}

func (m *memTodoRepo) UpdateVersioned(_ context.Context, userID, id int64, patch dom.TodoPatch, expectedVersion int, editorID *int64) (dom.Todo, error) {
	t, err := m.owned(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	if t.Version != expectedVersion {
		return dom.Todo{}, repo.ErrVersionConflict
	}
	prior := t.Status
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.SetDescription {
		t.Description = patch.Description
	}
	if patch.TodoDate != nil {
		t.TodoDate = *patch.TodoDate
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.Version++
	t.UpdatedAt = m.tick()
	var from, to *dom.Status
	if prior != t.Status {
		from, to = &prior, &t.Status
	}
	m.audit(t.ID, dom.AuditUpdate, from, to, editorID)
	return *t, nil
}

func (m *memTodoRepo) Toggle(_ context.Context, userID, id int64, editorID *int64) (dom.Todo, error) {
	t, err := m.owned(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	from := t.Status
	t.Status = from.Next()
	t.Version++
	t.UpdatedAt = m.tick()
	to := t.Status
	m.audit(t.ID, dom.AuditToggle, &from, &to, editorID)
	return *t, nil
}

func (m *memTodoRepo) SoftDelete(_ context.Context, userID, id int64, editorID *int64) error {
	t, err := m.owned(userID, id)
	if err != nil {
		return err
	}
	from := t.Status
	t.IsDeleted = true
	t.Version++
	t.UpdatedAt = m.tick()
	m.audit(t.ID, dom.AuditDelete, &from, nil, editorID)
	return nil
}

func (m *memTodoRepo) ListForDate(_ context.Context, userID int64, date time.Time) ([]dom.Todo, error) {
	var out []dom.Todo
	for _, id := range m.order {
		t := m.todos[id]
		if t.UserID == userID && t.TodoDate.Equal(date) && !t.IsDeleted {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTodoRepo) MonthlySummary(_ context.Context, userID int64, firstDay, lastDay time.Time) ([]dom.DaySummary, error) {
	counts := map[time.Time]int{}
	for _, t := range m.todos {
		if t.UserID != userID || t.IsDeleted {
			continue
		}
		if t.TodoDate.Before(firstDay) || t.TodoDate.After(lastDay) {
			continue
		}
		if t.Status != dom.StatusPending && t.Status != dom.StatusPartial {
			continue
		}
		counts[t.TodoDate]++
	}
	var out []dom.DaySummary
	for d, n := range counts {
		out = append(out, dom.DaySummary{TodoDate: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TodoDate.Before(out[j].TodoDate) })
	return out, nil
}

func (m *memTodoRepo) ListAudit(_ context.Context, userID, todoID int64) ([]dom.TodoAudit, error) {
	t, ok := m.todos[todoID]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	var out []dom.TodoAudit
	for _, a := range m.audits {
		if a.TodoID == todoID {
			out = append(out, a)
		}
	}
	return out, nil
}

type pubCall struct {
	channel string
	evt     dto.Event
}

type capturePub struct {
	calls []pubCall
}

func (p *capturePub) Publish(channel string, evt dto.Event) {
	p.calls = append(p.calls, pubCall{channel: channel, evt: evt})
}

func newTestService() (*TodoService, *memTodoRepo, *capturePub) {
	r := newMemTodoRepo()
	pub := &capturePub{}
	return NewTodoService(r, nil, pub), r, pub
}

var testDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func TestCreateStartsAtVersionOnePending(t *testing.T) {
	svc, r, pub := newTestService()
	ctx := context.Background()

	todo, err := svc.Create(ctx, 1, "Buy milk", nil, testDate)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, todo.Version)
	assert.Equal(t, dom.StatusPending, todo.Status)

	assert.Equal(t, 1, len(r.audits))
	assert.Equal(t, dom.AuditCreate, r.audits[0].Action)

	assert.Equal(t, 1, len(pub.calls))
	assert.Equal(t, "user:1", pub.calls[0].channel)
	assert.Equal(t, dto.EventTodoCreated, pub.calls[0].evt.Type)
}

func TestCreateValidatesTitle(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, "   ", nil, testDate)
	assert.Equal(t, true, errors.Is(err, ErrValidation))

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Create(ctx, 1, string(long), nil, testDate)
	assert.Equal(t, true, errors.Is(err, ErrValidation))

	// Nothing published for failed mutations.
	assert.Equal(t, 0, len(pub.calls))
}

func TestVersionEqualsOnePlusMutationCount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	todo, _ := svc.Create(ctx, owner, "task", nil, testDate)

	todo, err := svc.Toggle(ctx, owner, todo.ID, &owner, "")
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, todo.Version)

	title := "renamed"
	todo, err = svc.Update(ctx, owner, todo.ID, dom.TodoPatch{Title: &title}, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, todo.Version)

	todo, err = svc.Toggle(ctx, owner, todo.ID, &owner, "")
	assert.Equal(t, nil, err)
	assert.Equal(t, 4, todo.Version)
}

func TestToggleCyclesAndAudits(t *testing.T) {
	svc, r, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	todo, _ := svc.Create(ctx, owner, "task", nil, testDate)

	expected := []dom.Status{dom.StatusDone, dom.StatusPartial, dom.StatusPending}
	for i, want := range expected {
		var err error
		todo, err = svc.Toggle(ctx, owner, todo.ID, &owner, "")
		assert.Equal(t, nil, err)
		assert.Equal(t, want, todo.Status)
		assert.Equal(t, i+2, todo.Version)
	}

	// create + 3 toggles = 4 audit rows; toggle rows carry from/to.
	assert.Equal(t, 4, len(r.audits))
	toggle := r.audits[1]
	assert.Equal(t, dom.AuditToggle, toggle.Action)
	assert.Equal(t, dom.StatusPending, *toggle.FromStatus)
	assert.Equal(t, dom.StatusDone, *toggle.ToStatus)
}

func TestUpdateStaleVersionConflict(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	owner := int64(1)

	todo, _ := svc.Create(ctx, owner, "Buy milk", nil, testDate)
	todo, _ = svc.Toggle(ctx, owner, todo.ID, &owner, "")
	assert.Equal(t, 2, todo.Version)
	assert.Equal(t, dom.StatusDone, todo.Status)

	published := len(pub.calls)
	title := "Buy oat milk"
	_, err := svc.Update(ctx, owner, todo.ID, dom.TodoPatch{Title: &title}, 1)
	assert.Equal(t, true, errors.Is(err, ErrVersionConflict))

	// The stored todo is untouched and nothing was published.
	stored, _ := svc.repo.GetByID(ctx, owner, todo.ID)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, dom.StatusDone, stored.Status)
	assert.Equal(t, "Buy milk", stored.Title)
	assert.Equal(t, published, len(pub.calls))
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	desc := "2 liters"
	todo, _ := svc.Create(ctx, owner, "Buy milk", &desc, testDate)

	title := "Buy oat milk"
	todo, err := svc.Update(ctx, owner, todo.ID, dom.TodoPatch{Title: &title}, 1)
	assert.Equal(t, nil, err)
	assert.Equal(t, "Buy oat milk", todo.Title)
	assert.Equal(t, "2 liters", *todo.Description)

	// Explicit null clears the description; that is not "field absent".
	todo, err = svc.Update(ctx, owner, todo.ID, dom.TodoPatch{SetDescription: true, Description: nil}, 2)
	assert.Equal(t, nil, err)
	assert.Equal(t, (*string)(nil), todo.Description)
	assert.Equal(t, 3, todo.Version)
}

func TestOwnershipAndDeletionLookLikeNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	todo, _ := svc.Create(ctx, 1, "mine", nil, testDate)

	// Foreign owner.
	owner2 := int64(2)
	_, errForeign := svc.Toggle(ctx, 2, todo.ID, &owner2, "")
	assert.Equal(t, true, errors.Is(errForeign, ErrNotFound))

	// Truly absent.
	owner1 := int64(1)
	_, errAbsent := svc.Toggle(ctx, 1, 9999, &owner1, "")
	assert.Equal(t, true, errors.Is(errAbsent, ErrNotFound))

	// Soft-deleted.
	_ = svc.Delete(ctx, 1, todo.ID)
	_, errDeleted := svc.Toggle(ctx, 1, todo.ID, &owner1, "")
	assert.Equal(t, true, errors.Is(errDeleted, ErrNotFound))

	// All three cases are externally identical.
	assert.Equal(t, errForeign.Error(), errAbsent.Error())
	assert.Equal(t, errForeign.Error(), errDeleted.Error())
}

func TestMonthlySummaryCountsOnlyOpenWork(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	// Statuses pending, done, partial, pending on one date.
	a, _ := svc.Create(ctx, owner, "a", nil, testDate)
	b, _ := svc.Create(ctx, owner, "b", nil, testDate)
	c, _ := svc.Create(ctx, owner, "c", nil, testDate)
	_, _ = svc.Create(ctx, owner, "d", nil, testDate)

	_, _ = svc.Toggle(ctx, owner, b.ID, &owner, "") // done
	_, _ = svc.Toggle(ctx, owner, c.ID, &owner, "") // done
	_, _ = svc.Toggle(ctx, owner, c.ID, &owner, "") // partial

	first := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	rows, err := svc.MonthlySummary(ctx, owner, first, last)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(rows))
	assert.Equal(t, 3, rows[0].Count)

	// Soft-deleted todos leave the count too.
	_ = svc.Delete(ctx, owner, a.ID)
	rows, _ = svc.MonthlySummary(ctx, owner, first, last)
	assert.Equal(t, 2, rows[0].Count)
}

func TestListForDateOrderedByCreation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, 1, "first", nil, testDate)
	second, _ := svc.Create(ctx, 1, "second", nil, testDate)
	_, _ = svc.Create(ctx, 1, "other day", nil, testDate.AddDate(0, 0, 1))

	list, err := svc.ListForDate(ctx, 1, testDate)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(list))
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestPublicTogglePublishesBothChannels(t *testing.T) {
	svc, r, pub := newTestService()
	ctx := context.Background()

	todo, _ := svc.Create(ctx, 5, "shared", nil, testDate)
	pub.calls = nil

	// Anonymous edit through a public calendar.
	_, err := svc.Toggle(ctx, 5, todo.ID, nil, "my-cal")
	assert.Equal(t, nil, err)

	assert.Equal(t, 2, len(pub.calls))
	assert.Equal(t, "user:5", pub.calls[0].channel)
	assert.Equal(t, "calendar:my-cal", pub.calls[1].channel)
	assert.Equal(t, dto.EventTodoToggled, pub.calls[0].evt.Type)
	assert.Equal(t, pub.calls[0].evt, pub.calls[1].evt)

	// The audit record has no editor for anonymous edits.
	last := r.audits[len(r.audits)-1]
	assert.Equal(t, (*int64)(nil), last.EditorUserID)
}

func TestDeleteIsAuditedButNotBroadcast(t *testing.T) {
	svc, r, pub := newTestService()
	ctx := context.Background()

	todo, _ := svc.Create(ctx, 1, "task", nil, testDate)
	pub.calls = nil

	assert.Equal(t, nil, svc.Delete(ctx, 1, todo.ID))
	assert.Equal(t, 0, len(pub.calls))

	last := r.audits[len(r.audits)-1]
	assert.Equal(t, dom.AuditDelete, last.Action)
	assert.Equal(t, dom.StatusPending, *last.FromStatus)
}

func TestAuditTrailVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	todo, _ := svc.Create(ctx, owner, "task", nil, testDate)
	_, _ = svc.Toggle(ctx, owner, todo.ID, &owner, "")

	records, err := svc.Audit(ctx, owner, todo.ID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(records))

	// Foreign owners see nothing, indistinguishable from absence.
	_, err = svc.Audit(ctx, 2, todo.ID)
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
	_, err = svc.Audit(ctx, owner, 9999)
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}

// The concrete scenario from the product brief: create, toggle, stale update.
func TestBuyMilkScenario(t *testing.T) {
	svc, r, _ := newTestService()
	ctx := context.Background()
	owner := int64(1)

	todo, err := svc.Create(ctx, owner, "Buy milk", nil, testDate)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, todo.Version)
	assert.Equal(t, dom.StatusPending, todo.Status)

	todo, err = svc.Toggle(ctx, owner, todo.ID, &owner, "")
	assert.Equal(t, nil, err)
	assert.Equal(t, dom.StatusDone, todo.Status)
	assert.Equal(t, 2, todo.Version)

	toggleAudit := r.audits[len(r.audits)-1]
	assert.Equal(t, dom.StatusPending, *toggleAudit.FromStatus)
	assert.Equal(t, dom.StatusDone, *toggleAudit.ToStatus)

	title := "Buy milk and eggs"
	_, err = svc.Update(ctx, owner, todo.ID, dom.TodoPatch{Title: &title}, 1)
	assert.Equal(t, true, errors.Is(err, ErrVersionConflict))

	stored, _ := svc.repo.GetByID(ctx, owner, todo.ID)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, dom.StatusDone, stored.Status)
}
