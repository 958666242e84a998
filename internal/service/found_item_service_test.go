package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

func TestFoundItemRegisterValidation(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.foundItems.Register(h.ctx, h.staff.ID, FoundItemInput{CampusID: 1, Description: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	cases, err := h.cases.ListCases(h.ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, cases, "rejected registration must not open a case")
}

func TestFoundItemUpdate(t *testing.T) {
	h := newHarness(t)
	item, _, err := h.foundItems.Register(h.ctx, h.staff.ID, FoundItemInput{
		CampusID: 1, Description: "umbrella", ImageURL: "https://img/a.jpg",
	})
	require.NoError(t, err)

	updated, err := h.foundItems.Update(h.ctx, item.ID, FoundItemInput{Description: "red umbrella", FoundLocation: "library"})
	require.NoError(t, err)
	assert.Equal(t, "red umbrella", updated.Description)
	assert.Equal(t, "library", updated.FoundLocation)
	assert.Equal(t, "https://img/a.jpg", updated.ImageURL, "image kept when none supplied")

	updated, err = h.foundItems.Update(h.ctx, item.ID, FoundItemInput{Description: "red umbrella", ImageURL: "https://img/b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "https://img/b.jpg", updated.ImageURL)

	_, err = h.foundItems.Update(h.ctx, 999, FoundItemInput{Description: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cl := h.claim(t, h.s1, item.ID)
	_, err = h.claims.ApproveByStaff(h.ctx, cl.ID, h.staff.ID)
	require.NoError(t, err)

	_, err = h.foundItems.Update(h.ctx, item.ID, FoundItemInput{Description: "too late"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFoundItemList(t *testing.T) {
	h := newHarness(t)
	returned, _ := h.registerItem(t)
	h.registerItem(t)
	_, _, err := h.foundItems.Register(h.ctx, h.staff.ID, FoundItemInput{CampusID: 2, Description: "keys"})
	require.NoError(t, err)

	cl := h.claim(t, h.s1, returned.ID)
	_, err = h.claims.ApproveByStaff(h.ctx, cl.ID, h.staff.ID)
	require.NoError(t, err)

	campus := int64(1)
	stored := domain.FoundItemStored
	got, err := h.foundItems.List(h.ctx, store.FoundItemFilter{CampusID: &campus, Status: &stored})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	all, err := h.foundItems.List(h.ctx, store.FoundItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = h.foundItems.Get(h.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
