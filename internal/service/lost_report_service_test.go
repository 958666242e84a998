package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestLostReportLifecycle(t *testing.T) {
	h := newHarness(t)

	_, err := h.lostReports.Create(h.ctx, h.s1.ID, LostReportInput{Description: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	r, err := h.lostReports.Create(h.ctx, h.s1.ID, LostReportInput{
		Description:         "blue water bottle",
		ImageURL:            "https://img/bottle.jpg",
		IdentifyingFeatures: "sticker on the lid",
		ClaimPassword:       "otter",
	})
	require.NoError(t, err)
	assert.False(t, r.HasClaims)

	updated, err := h.lostReports.Update(h.ctx, r.ID, h.s1.ID, LostReportInput{Description: "blue bottle", LostLocation: "gym"})
	require.NoError(t, err)
	assert.Equal(t, "blue bottle", updated.Description)
	assert.Equal(t, "gym", updated.LostLocation)
	assert.Equal(t, "https://img/bottle.jpg", updated.ImageURL)

	_, err = h.lostReports.Update(h.ctx, r.ID, h.s2.ID, LostReportInput{Description: "mine now"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "other students see the report as absent")

	assert.ErrorIs(t, h.lostReports.Delete(h.ctx, r.ID, h.s2.ID), domain.ErrNotFound)
	require.NoError(t, h.lostReports.Delete(h.ctx, r.ID, h.s1.ID))

	_, err = h.lostReports.Get(h.ctx, r.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLostReportFrozenOnceClaimed(t *testing.T) {
	h := newHarness(t)
	item, _ := h.registerItem(t)
	r, err := h.lostReports.Create(h.ctx, h.s1.ID, LostReportInput{Description: "backpack"})
	require.NoError(t, err)

	_, err = h.claims.CreateClaim(h.ctx, h.s1.ID, item.ID, &r.ID, "")
	require.NoError(t, err)

	got, err := h.lostReports.Get(h.ctx, r.ID, &h.s1.ID)
	require.NoError(t, err)
	assert.True(t, got.HasClaims)

	_, err = h.lostReports.Update(h.ctx, r.ID, h.s1.ID, LostReportInput{Description: "changed"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, h.lostReports.Delete(h.ctx, r.ID, h.s1.ID), domain.ErrConflict)
}

func TestLostReportHiddenAfterApproval(t *testing.T) {
	h := newHarness(t)
	item, _ := h.registerItem(t)
	r, err := h.lostReports.Create(h.ctx, h.s1.ID, LostReportInput{Description: "backpack"})
	require.NoError(t, err)
	_, err = h.lostReports.Create(h.ctx, h.s2.ID, LostReportInput{Description: "scarf"})
	require.NoError(t, err)

	cl, err := h.claims.CreateClaim(h.ctx, h.s1.ID, item.ID, &r.ID, "")
	require.NoError(t, err)
	_, err = h.claims.ApproveByStaff(h.ctx, cl.ID, h.staff.ID)
	require.NoError(t, err)

	mine, err := h.lostReports.ListMine(h.ctx, h.s1.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	all, err := h.lostReports.ListAll(h.ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "scarf", all[0].Description)
}

func TestGetLostReportScopedToOwner(t *testing.T) {
	h := newHarness(t)
	r, err := h.lostReports.Create(h.ctx, h.s1.ID, LostReportInput{Description: "phone"})
	require.NoError(t, err)

	_, err = h.lostReports.Get(h.ctx, r.ID, &h.s2.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := h.lostReports.Get(h.ctx, r.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}
