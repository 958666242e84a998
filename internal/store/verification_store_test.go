package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestVerificationStore_PendingUntilDecided(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	staff := seedUser(t, d, "staff@example.edu", domain.RoleStaff)
	officer := seedUser(t, d, "officer@example.edu", domain.RoleSecurityOfficer)
	student := seedUser(t, d, "s1@example.edu", domain.RoleStudent)
	item, c := seedItemWithCase(t, d, staff.ID)
	claim, err := NewClaimStore(d).Create(ctx, student.ID, item.ID, nil, &c.ID, "")
	require.NoError(t, err)
	vs := NewVerificationStore(d)

	req, err := vs.CreateRequest(ctx, c.ID, staff.ID)
	require.NoError(t, err)
	assert.True(t, req.Pending())
	assert.Empty(t, req.Decisions)

	pending, err := vs.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)

	dec, err := vs.CreateDecision(ctx, &domain.VerificationDecision{
		RequestID:         req.ID,
		ClaimID:           claim.ID,
		SecurityOfficerID: officer.ID,
		Decision:          domain.DecisionRejected,
		Note:              "could not describe contents",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DecisionRejected, dec.Decision)
	assert.Equal(t, "could not describe contents", dec.Note)

	pending, err = vs.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := vs.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Len(t, got.Decisions, 1)
	assert.False(t, got.Pending())

	byCase, err := vs.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, byCase, 1)
	require.Len(t, byCase[0].Decisions, 1)
	assert.Equal(t, dec.ID, byCase[0].Decisions[0].ID)
}

func TestVerificationStore_GetRequestNotFound(t *testing.T) {
	d := newTestDB(t)
	got, err := NewVerificationStore(d).GetRequest(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
