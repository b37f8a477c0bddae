package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/jackc/pgx/v5"

	dom "github.com/wl39/todo-sync/internal/domain"
)

type memUserRepo struct {
	users map[int64]*dom.User
}

func newMemUserRepo(users ...dom.User) *memUserRepo {
	m := &memUserRepo{users: map[int64]*dom.User{}}
	for i := range users {
		u := users[i]
		m.users[u.ID] = &u
	}
	return m
}

func (m *memUserRepo) Create(_ context.Context, email, passwordHash string, name *string) (dom.User, error) {
	id := int64(len(m.users) + 1)
	u := dom.User{ID: id, Email: email, PasswordHash: passwordHash, Name: name, ShareMode: dom.SharePrivate, IsActive: true}
	m.users[id] = &u
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	if u, ok := m.users[id]; ok {
		return *u, nil
	}
	return dom.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) GetBySlug(_ context.Context, slug string) (dom.User, error) {
	for _, u := range m.users {
		if u.PublicSlug != nil && *u.PublicSlug == slug {
			return *u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (m *memUserRepo) TouchLastLogin(_ context.Context, _ int64) error { return nil }

func (m *memUserRepo) UpdateSharing(_ context.Context, id int64, mode dom.ShareMode, slug, editToken *string) (dom.User, error) {
	u, ok := m.users[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	u.ShareMode = mode
	u.PublicSlug = slug
	u.EditToken = editToken
	return *u, nil
}

func strptr(s string) *string { return &s }

func sharedUser(id int64, slug string, mode dom.ShareMode, token *string) dom.User {
	return dom.User{ID: id, Email: "u@example.com", ShareMode: mode, PublicSlug: strptr(slug), EditToken: token, IsActive: true}
}

func TestResolvePublicView(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicView, nil)), false)

	access, err := svc.Resolve(context.Background(), "my-cal")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(7), access.OwnerID)
	assert.Equal(t, dom.AccessView, access.Level)
}

func TestResolvePublicEdit(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicEdit, strptr("tok"))), false)

	access, err := svc.Resolve(context.Background(), "my-cal")
	assert.Equal(t, nil, err)
	assert.Equal(t, dom.AccessEdit, access.Level)
}

func TestResolveHidesUnknownPrivateAndInactiveAlike(t *testing.T) {
	inactive := sharedUser(2, "inactive-cal", dom.SharePublicView, nil)
	inactive.IsActive = false
	svc := NewShareService(newMemUserRepo(
		sharedUser(1, "private-cal", dom.SharePrivate, nil),
		inactive,
	), false)
	ctx := context.Background()

	_, errUnknown := svc.Resolve(ctx, "no-such-cal")
	_, errPrivate := svc.Resolve(ctx, "private-cal")
	_, errInactive := svc.Resolve(ctx, "inactive-cal")

	assert.Equal(t, true, errors.Is(errUnknown, ErrNotFound))
	assert.Equal(t, true, errors.Is(errPrivate, ErrNotFound))
	assert.Equal(t, true, errors.Is(errInactive, ErrNotFound))

	// A caller probing slugs cannot tell the three apart.
	assert.Equal(t, errUnknown.Error(), errPrivate.Error())
	assert.Equal(t, errUnknown.Error(), errInactive.Error())
}

func TestAuthorizeEditRefusesViewOnly(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicView, nil)), false)

	_, err := svc.AuthorizeEdit(context.Background(), "my-cal", "")
	assert.Equal(t, true, errors.Is(err, ErrForbidden))
}

func TestAuthorizeEditTokenCheck(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicEdit, strptr("secret"))), false)
	ctx := context.Background()

	_, err := svc.AuthorizeEdit(ctx, "my-cal", "wrong")
	assert.Equal(t, true, errors.Is(err, ErrForbidden))

	_, err = svc.AuthorizeEdit(ctx, "my-cal", "")
	assert.Equal(t, true, errors.Is(err, ErrForbidden))

	access, err := svc.AuthorizeEdit(ctx, "my-cal", "secret")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(7), access.OwnerID)
	assert.Equal(t, dom.AccessEdit, access.Level)
}

func TestAuthorizeEditNoTokenConfigured(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicEdit, nil)), false)

	// No token on the calendar means any caller may edit.
	access, err := svc.AuthorizeEdit(context.Background(), "my-cal", "")
	assert.Equal(t, nil, err)
	assert.Equal(t, dom.AccessEdit, access.Level)
}

func TestAuthorizeEditUnknownSlugIsNotFound(t *testing.T) {
	svc := NewShareService(newMemUserRepo(), false)

	_, err := svc.AuthorizeEdit(context.Background(), "nope", "secret")
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}

func TestUpdateSharingGoingPrivateClearsSlugAndToken(t *testing.T) {
	repo := newMemUserRepo(sharedUser(7, "my-cal", dom.SharePublicEdit, strptr("secret")))
	svc := NewShareService(repo, false)

	u, err := svc.UpdateSharing(context.Background(), 7, dom.SharePrivate, strptr("ignored"), strptr("ignored"))
	assert.Equal(t, nil, err)
	assert.Equal(t, dom.SharePrivate, u.ShareMode)
	assert.Equal(t, (*string)(nil), u.PublicSlug)
	assert.Equal(t, (*string)(nil), u.EditToken)
}

func TestUpdateSharingRequiresSlugWhenPublic(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePrivate, nil)), false)
	ctx := context.Background()

	_, err := svc.UpdateSharing(ctx, 7, dom.SharePublicView, nil, nil)
	assert.Equal(t, true, errors.Is(err, ErrValidation))

	_, err = svc.UpdateSharing(ctx, 7, dom.SharePublicView, strptr("   "), nil)
	assert.Equal(t, true, errors.Is(err, ErrValidation))
}

func TestUpdateSharingEditTokenRules(t *testing.T) {
	repo := newMemUserRepo(sharedUser(7, "my-cal", dom.SharePrivate, nil))
	ctx := context.Background()

	// public_edit without a token is rejected unless edits are open.
	strict := NewShareService(repo, false)
	_, err := strict.UpdateSharing(ctx, 7, dom.SharePublicEdit, strptr("my-cal"), nil)
	assert.Equal(t, true, errors.Is(err, ErrValidation))

	open := NewShareService(repo, true)
	u, err := open.UpdateSharing(ctx, 7, dom.SharePublicEdit, strptr("my-cal"), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, dom.SharePublicEdit, u.ShareMode)

	// View-only calendars never store an edit token.
	u, err = strict.UpdateSharing(ctx, 7, dom.SharePublicView, strptr("my-cal"), strptr("secret"))
	assert.Equal(t, nil, err)
	assert.Equal(t, (*string)(nil), u.EditToken)
}

func TestUpdateSharingRejectsUnknownMode(t *testing.T) {
	svc := NewShareService(newMemUserRepo(sharedUser(7, "my-cal", dom.SharePrivate, nil)), false)

	_, err := svc.UpdateSharing(context.Background(), 7, dom.ShareMode("public"), strptr("my-cal"), nil)
	assert.Equal(t, true, errors.Is(err, ErrValidation))
}
