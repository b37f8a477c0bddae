package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dom "github.com/wl39/todo-sync/internal/domain"
	"github.com/wl39/todo-sync/internal/repo"
	"github.com/wl39/todo-sync/internal/utils"

	"github.com/jackc/pgx/v5"
)

// ErrSlugTaken means another user already owns the requested public slug.
var ErrSlugTaken = errors.New("slug already in use")

// ShareService resolves public share slugs to an owner and access level, and
// manages a user's sharing settings.
type ShareService struct {
	repo     repo.UserRepo
	openEdit bool
}

// NewShareService returns a ShareService. openEdit allows public_edit
// calendars without an edit token.
func NewShareService(r repo.UserRepo, openEdit bool) *ShareService {
	return &ShareService{repo: r, openEdit: openEdit}
}

// Resolve maps a share slug to its owner and access level. An unknown slug
// and a private calendar are deliberately indistinguishable: both come back
// as ErrNotFound, so slug existence never leaks.
func (s *ShareService) Resolve(ctx context.Context, slug string) (dom.PublicAccess, error) {
	u, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.PublicAccess{}, ErrNotFound
		}
		return dom.PublicAccess{}, err
	}
	if !u.IsActive || u.ShareMode == dom.SharePrivate {
		return dom.PublicAccess{}, ErrNotFound
	}
	level := dom.AccessView
	if u.ShareMode == dom.SharePublicEdit {
		level = dom.AccessEdit
	}
	return dom.PublicAccess{OwnerID: u.ID, Level: level}, nil
}

// AuthorizeEdit resolves a slug for a mutation attempt. View-only calendars
// refuse every mutation; edit calendars with a configured token require an
// exact match.
func (s *ShareService) AuthorizeEdit(ctx context.Context, slug, editToken string) (dom.PublicAccess, error) {
	u, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.PublicAccess{}, ErrNotFound
		}
		return dom.PublicAccess{}, err
	}
	if !u.IsActive || u.ShareMode == dom.SharePrivate {
		return dom.PublicAccess{}, ErrNotFound
	}
	if u.ShareMode == dom.SharePublicView {
		return dom.PublicAccess{}, fmt.Errorf("%w: editing not allowed", ErrForbidden)
	}
	if u.EditToken != nil && *u.EditToken != editToken {
		return dom.PublicAccess{}, fmt.Errorf("%w: invalid edit token", ErrForbidden)
	}
	return dom.PublicAccess{OwnerID: u.ID, Level: dom.AccessEdit}, nil
}

// UpdateSharing stores the user's sharing settings. Going private clears the
// slug and edit token; enabling sharing requires a slug, and public_edit
// requires an edit token unless the service runs with open edits.
func (s *ShareService) UpdateSharing(ctx context.Context, userID int64, mode dom.ShareMode, slug, editToken *string) (dom.User, error) {
	if !mode.Valid() {
		return dom.User{}, fmt.Errorf("%w: unknown share mode", ErrValidation)
	}

	if mode == dom.SharePrivate {
		slug, editToken = nil, nil
	} else {
		if slug == nil || strings.TrimSpace(*slug) == "" {
			return dom.User{}, fmt.Errorf("%w: public_slug is required", ErrValidation)
		}
		trimmed := strings.TrimSpace(*slug)
		slug = &trimmed
		if mode == dom.SharePublicEdit {
			if (editToken == nil || *editToken == "") && !s.openEdit {
				return dom.User{}, fmt.Errorf("%w: edit_token required", ErrValidation)
			}
		} else {
			editToken = nil
		}
	}

	u, err := s.repo.UpdateSharing(ctx, userID, mode, slug, editToken)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrSlugTaken
		}
		return dom.User{}, err
	}
	return u, nil
}
