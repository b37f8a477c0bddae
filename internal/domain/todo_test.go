package domain

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestStatusCycle(t *testing.T) {
	assert.Equal(t, StatusDone, StatusPending.Next())
	assert.Equal(t, StatusPartial, StatusDone.Next())
	assert.Equal(t, StatusPending, StatusPartial.Next())

	// Three toggles from pending land back on pending.
	s := StatusPending
	for i := 0; i < 3; i++ {
		s = s.Next()
	}
	assert.Equal(t, StatusPending, s)
}

func TestStatusValid(t *testing.T) {
	assert.Equal(t, true, StatusPending.Valid())
	assert.Equal(t, true, StatusDone.Valid())
	assert.Equal(t, true, StatusPartial.Valid())
	assert.Equal(t, false, Status("open").Valid())
	assert.Equal(t, false, Status("").Valid())
}

func TestShareModeValid(t *testing.T) {
	assert.Equal(t, true, SharePrivate.Valid())
	assert.Equal(t, true, SharePublicView.Valid())
	assert.Equal(t, true, SharePublicEdit.Valid())
	assert.Equal(t, false, ShareMode("public").Valid())
}

func TestTodoPatchEmpty(t *testing.T) {
	assert.Equal(t, true, TodoPatch{}.Empty())

	title := "x"
	assert.Equal(t, false, TodoPatch{Title: &title}.Empty())
	assert.Equal(t, false, TodoPatch{SetDescription: true}.Empty())
}
