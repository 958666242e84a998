package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestSetStatus(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	h.claim(t, h.s1, item.ID)

	tests := []struct {
		status     string
		wantClosed bool
	}{
		{"COMPLETED", true},
		{"OPEN", false},
		{"FAILED", true},
		{"IN_PROGRESS", false},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got, err := h.cases.SetStatus(h.ctx, c.ID, tt.status)
			require.NoError(t, err)
			assert.Equal(t, domain.CaseStatus(tt.status), got.Status)
			assert.Equal(t, tt.wantClosed, got.ClosedAt != nil)
		})
	}

	_, err := h.cases.SetStatus(h.ctx, c.ID, "CLOSED")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.cases.SetStatus(h.ctx, 999, "OPEN")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The override leaves claims and the found item alone.
	assert.Equal(t, domain.FoundItemStored, h.getItem(t, item.ID).Status)
	claims, err := h.claims.ListAll(h.ctx, nil, &c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimPending, claims[0].Status)
}

func TestGetCaseDetail(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	h.claim(t, h.s1, item.ID)
	h.claim(t, h.s2, item.ID)
	_, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	detail, err := h.cases.GetCase(h.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, detail.TotalClaims)
	assert.Len(t, detail.Claims, 2)
	assert.Len(t, detail.VerificationRequests, 1)

	_, err = h.cases.GetCase(h.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListCases(t *testing.T) {
	h := newHarness(t)
	item, _ := h.registerItem(t)
	h.registerItem(t)
	h.claim(t, h.s1, item.ID)

	open := domain.CaseOpen
	got, err := h.cases.ListCases(h.ctx, nil, &open)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	all, err := h.cases.ListCases(h.ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReconcileClaimCounts(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	h.claim(t, h.s1, item.ID)

	// Drift the counter behind the workflow's back.
	require.NoError(t, h.caseStore.IncrementClaimCount(h.ctx, c.ID))

	found, err := h.cases.ReconcileClaimCounts(h.ctx, false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].TotalClaims)
	assert.Equal(t, 1, found[0].ActualRows)
	assert.Equal(t, 2, h.getCase(t, c.ID).TotalClaims, "report-only run must not write")

	_, err = h.cases.ReconcileClaimCounts(h.ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, h.getCase(t, c.ID).TotalClaims)

	found, err = h.cases.ReconcileClaimCounts(h.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, found)
}
