package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestCreateRequestNotifiesOfficers(t *testing.T) {
	h := newHarness(t)
	second := h.user(t, "officer2@example.edu", domain.RoleSecurityOfficer)
	item, c := h.registerItem(t)
	h.claim(t, h.s1, item.ID)
	h.claim(t, h.s2, item.ID)

	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, req.CaseID)
	assert.True(t, req.Pending())

	sent := h.notifier.sent(domain.NotifyVerificationRequest)
	require.Len(t, sent, 2)
	assert.ElementsMatch(t, []int64{h.officer.ID, second.ID}, []int64{sent[0].UserID, sent[1].UserID})
	assert.Equal(t, domain.RelatedVerificationRequest, sent[0].RelatedEntityType)

	pending, err := h.verifications.ListPending(h.ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = h.verifications.CreateRequest(h.ctx, h.staff.ID, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOfficerApprovalRejectsSiblings(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	c1 := h.claim(t, h.s1, item.ID)
	c2 := h.claim(t, h.s2, item.ID)

	_, err := h.claims.ApproveByStaff(h.ctx, c1.ID, h.staff.ID)
	require.ErrorIs(t, err, domain.ErrConflict)

	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	decided, err := h.verifications.CreateDecision(h.ctx, DecisionInput{
		RequestID: req.ID,
		OfficerID: h.officer.ID,
		ClaimID:   c1.ID,
		Decision:  "APPROVED",
		Note:      "described the contents",
	})
	require.NoError(t, err)
	require.Len(t, decided.Decisions, 1)
	assert.Equal(t, domain.DecisionApproved, decided.Decisions[0].Decision)
	assert.Equal(t, h.officer.ID, decided.Decisions[0].SecurityOfficerID)

	assert.Equal(t, domain.ClaimApproved, h.getClaim(t, c1.ID).Status)
	assert.Equal(t, domain.ClaimRejected, h.getClaim(t, c2.ID).Status)
	assert.Equal(t, domain.FoundItemReturned, h.getItem(t, item.ID).Status)

	got := h.getCase(t, c.ID)
	require.NotNil(t, got.SuccessfulClaimID)
	assert.Equal(t, c1.ID, *got.SuccessfulClaimID)
	assert.Equal(t, domain.CaseInProgress, got.Status, "officer approval leaves the case status alone")
	assert.Nil(t, got.ClosedAt)

	outcome := h.notifier.sent(domain.NotifyVerificationDecision)
	require.Len(t, outcome, 1)
	assert.Equal(t, h.staff.ID, outcome[0].UserID)

	rejections := h.notifier.sent(domain.NotifyClaimRejected)
	require.Len(t, rejections, 1)
	assert.Equal(t, h.s2.ID, rejections[0].UserID)

	pending, err := h.verifications.ListPending(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	h.assertWorkflowInvariants(t)
}

func TestOfficerRejectionKeepsCaseOpen(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	c1 := h.claim(t, h.s1, item.ID)
	c2 := h.claim(t, h.s2, item.ID)
	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{
		RequestID: req.ID, OfficerID: h.officer.ID, ClaimID: c1.ID, Decision: "REJECTED",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ClaimRejected, h.getClaim(t, c1.ID).Status)
	assert.Equal(t, domain.ClaimPending, h.getClaim(t, c2.ID).Status)
	assert.Equal(t, domain.FoundItemStored, h.getItem(t, item.ID).Status)
	got := h.getCase(t, c.ID)
	assert.Equal(t, domain.CaseInProgress, got.Status)
	assert.Nil(t, got.SuccessfulClaimID)

	// The remaining claimant can still win on the same request.
	detail, err := h.verifications.CreateDecision(h.ctx, DecisionInput{
		RequestID: req.ID, OfficerID: h.officer.ID, ClaimID: c2.ID, Decision: "APPROVED",
	})
	require.NoError(t, err)
	assert.Len(t, detail.Decisions, 2)
	assert.Equal(t, domain.FoundItemReturned, h.getItem(t, item.ID).Status)
	h.assertWorkflowInvariants(t)
}

func TestCreateDecisionPreconditions(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	other, _ := h.registerItem(t)
	c1 := h.claim(t, h.s1, item.ID)
	foreign := h.claim(t, h.s2, other.ID)
	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{RequestID: req.ID, ClaimID: c1.ID, Decision: "MAYBE"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{RequestID: 999, ClaimID: c1.ID, Decision: "APPROVED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{RequestID: req.ID, ClaimID: foreign.ID, Decision: "APPROVED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{RequestID: req.ID, OfficerID: h.officer.ID, ClaimID: c1.ID, Decision: "APPROVED"})
	require.NoError(t, err)

	_, err = h.verifications.CreateDecision(h.ctx, DecisionInput{RequestID: req.ID, OfficerID: h.officer.ID, ClaimID: c1.ID, Decision: "REJECTED"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	detail, err := h.verifications.GetRequest(h.ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Decisions, 1, "a refused decision leaves no audit row")
	assert.Equal(t, domain.ClaimApproved, h.getClaim(t, c1.ID).Status)
}

func TestConcurrentOfficerDecisions(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	c1 := h.claim(t, h.s1, item.ID)
	c2 := h.claim(t, h.s2, item.ID)
	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, claimID := range []int64{c1.ID, c2.ID} {
		wg.Add(1)
		go func(i int, claimID int64) {
			defer wg.Done()
			_, errs[i] = h.verifications.CreateDecision(h.ctx, DecisionInput{
				RequestID: req.ID, OfficerID: h.officer.ID, ClaimID: claimID, Decision: "APPROVED",
			})
		}(i, claimID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	detail, err := h.verifications.GetRequest(h.ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Decisions, 1)
	h.assertWorkflowInvariants(t)
}

func TestGetRequestDetail(t *testing.T) {
	h := newHarness(t)
	item, c := h.registerItem(t)
	h.claim(t, h.s1, item.ID)
	h.claim(t, h.s2, item.ID)
	req, err := h.verifications.CreateRequest(h.ctx, h.staff.ID, c.ID)
	require.NoError(t, err)

	detail, err := h.verifications.GetRequest(h.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CaseInProgress, detail.CaseStatus)
	assert.Len(t, detail.Claims, 2)

	_, err = h.verifications.GetRequest(h.ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
