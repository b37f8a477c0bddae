package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	dom "github.com/wl39/todo-sync/internal/domain"
	"github.com/wl39/todo-sync/internal/dto"
	"github.com/wl39/todo-sync/internal/repo"
	"github.com/wl39/todo-sync/internal/ws"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/wl39/todo-sync/internal/cache"
)

var (
	// ErrNotFound covers absent, soft-deleted and foreign todos alike, so a
	// caller cannot probe what exists under another owner.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict means the caller's expected version is stale; the
	// caller must reload and retry. Never resolved silently.
	ErrVersionConflict = errors.New("version conflict")
	// ErrForbidden means a public viewer attempted a mutation or the edit
	// token did not match.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is wrapped around malformed-input failures.
	ErrValidation = errors.New("invalid input")
)

const maxTitleLen = 200

// Publisher fans a mutation event out to a channel; live delivery and bus
// listeners both hang off it.
type Publisher interface {
	Publish(channel string, evt dto.Event)
}

// TodoService is the write path: version-checked mutations, audit, cache
// invalidation and change notification. If c is nil, caching is disabled; if
// pub is nil, notifications are disabled.
type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	pub   Publisher
	sf    singleflight.Group
}

// NewTodoService creates a TodoService.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache, pub Publisher) *TodoService {
	return &TodoService{repo: r, cache: c, pub: pub}
}

// Create inserts a new todo at version 1, status pending.
func (s *TodoService) Create(ctx context.Context, ownerID int64, title string, desc *string, date time.Time) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return dom.Todo{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if len(title) > maxTitleLen {
		return dom.Todo{}, fmt.Errorf("%w: title too long", ErrValidation)
	}
	if date.IsZero() {
		return dom.Todo{}, fmt.Errorf("%w: todo_date is required", ErrValidation)
	}

	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:      ownerID,
		Title:       title,
		Description: desc,
		TodoDate:    date,
	}, &ownerID)
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, ownerID)
	s.notify(dto.EventTodoCreated, t, "")
	return t, nil
}

// Update applies a partial, version-checked update on behalf of the owner.
func (s *TodoService) Update(ctx context.Context, ownerID, id int64, patch dom.TodoPatch, expectedVersion int) (dom.Todo, error) {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return dom.Todo{}, fmt.Errorf("%w: title is required", ErrValidation)
		}
		if len(trimmed) > maxTitleLen {
			return dom.Todo{}, fmt.Errorf("%w: title too long", ErrValidation)
		}
		patch.Title = &trimmed
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return dom.Todo{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	}

	t, err := s.repo.UpdateVersioned(ctx, ownerID, id, patch, expectedVersion, &ownerID)
	if err != nil {
		return dom.Todo{}, mapRepoErr(err)
	}
	s.invalidateCache(ctx, ownerID)
	s.notify(dto.EventTodoUpdated, t, "")
	return t, nil
}

// Toggle advances the status one step in the fixed cycle. editorID is nil for
// anonymous public edits; viaSlug is non-empty when the mutation came through
// a public calendar, which adds the calendar channel to the notification set.
func (s *TodoService) Toggle(ctx context.Context, ownerID, id int64, editorID *int64, viaSlug string) (dom.Todo, error) {
	t, err := s.repo.Toggle(ctx, ownerID, id, editorID)
	if err != nil {
		return dom.Todo{}, mapRepoErr(err)
	}
	s.invalidateCache(ctx, ownerID)
	s.notify(dto.EventTodoToggled, t, viaSlug)
	return t, nil
}

// Delete soft-deletes a todo. Deletes are audited but not broadcast; the
// event envelope is a closed set.
func (s *TodoService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.SoftDelete(ctx, ownerID, id, &ownerID); err != nil {
		return mapRepoErr(err)
	}
	s.invalidateCache(ctx, ownerID)
	return nil
}

// ListForDate returns the owner's non-deleted todos for one date, oldest first.
func (s *TodoService) ListForDate(ctx context.Context, ownerID int64, date time.Time) ([]dom.Todo, error) {
	if s.cache != nil {
		key := "day:" + strconv.FormatInt(ownerID, 10) + ":" + date.Format("2006-01-02")
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetDay(ctx, ownerID, date); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListForDate(ctx, ownerID, date)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetDay(ctx, ownerID, date, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.ListForDate(ctx, ownerID, date)
}

// MonthlySummary counts still-open (pending or partial) todos per date in the
// range, ascending. Done and soft-deleted todos are excluded: the summary is
// outstanding work, not total work.
func (s *TodoService) MonthlySummary(ctx context.Context, ownerID int64, firstDay, lastDay time.Time) ([]dom.DaySummary, error) {
	if s.cache != nil {
		key := "summary:" + strconv.FormatInt(ownerID, 10) + ":" + firstDay.Format("2006-01-02")
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if rows, err := s.cache.GetSummary(ctx, ownerID, firstDay, lastDay); err == nil && rows != nil {
				return rows, nil
			}
			rows, err := s.repo.MonthlySummary(ctx, ownerID, firstDay, lastDay)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetSummary(ctx, ownerID, firstDay, lastDay, rows)
			return rows, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.DaySummary), nil
	}
	return s.repo.MonthlySummary(ctx, ownerID, firstDay, lastDay)
}

// Audit returns the full audit trail of one of the owner's todos. Every todo
// has at least its create record, so an empty trail means the todo is not
// visible to this owner.
func (s *TodoService) Audit(ctx context.Context, ownerID, todoID int64) ([]dom.TodoAudit, error) {
	records, err := s.repo.ListAudit(ctx, ownerID, todoID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// notify publishes the post-mutation representation to the owner's channel
// and, for public-path mutations, the calendar channel as well.
func (s *TodoService) notify(kind dto.EventType, t dom.Todo, viaSlug string) {
	if s.pub == nil {
		return
	}
	evt := dto.Event{Type: kind, Payload: dto.NewTodoResponse(t)}
	s.pub.Publish(ws.UserChannel(t.UserID), evt)
	if viaSlug != "" {
		s.pub.Publish(ws.CalendarChannel(viaSlug), evt)
	}
}

func (s *TodoService) invalidateCache(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateOwner(ctx, ownerID)
	}
}

func mapRepoErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, repo.ErrVersionConflict) {
		return ErrVersionConflict
	}
	return err
}
