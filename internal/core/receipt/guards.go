// Package receipt contains the rules for recording a physical return.
package receipt

import (
	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// CreateContext provides context for receipt creation guards.
type CreateContext struct {
	CaseID        int64
	CaseExists    bool
	ClaimID       int64
	ClaimExists   bool
	ClaimInCase   bool
	ClaimStatus   domain.ClaimStatus
	ReceiptExists bool
}

// CanCreate evaluates whether a receipt may be issued.
// Rules:
// - Case and claim must exist, and the claim must belong to the case
// - Claim must be APPROVED; receipts never grant approval
// - At most one receipt per claim
func CanCreate(ctx CreateContext) guard.Result {
	if !ctx.CaseExists {
		return guard.Deny(domain.ErrNotFound, "case %d not found", ctx.CaseID)
	}
	if !ctx.ClaimExists {
		return guard.Deny(domain.ErrNotFound, "claim %d not found", ctx.ClaimID)
	}
	if !ctx.ClaimInCase {
		return guard.Deny(domain.ErrNotFound, "claim %d is not linked to case %d", ctx.ClaimID, ctx.CaseID)
	}
	if ctx.ClaimStatus != domain.ClaimApproved {
		return guard.Deny(domain.ErrConflict, "claim %d is not approved (status: %s)", ctx.ClaimID, ctx.ClaimStatus)
	}
	if ctx.ReceiptExists {
		return guard.Deny(domain.ErrConflict, "a receipt already exists for claim %d", ctx.ClaimID)
	}
	return guard.Allow()
}
