// Package verification contains the rules for security-officer decisions on
// multi-claim cases.
package verification

import (
	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// DecideContext provides context for decision guards.
type DecideContext struct {
	RequestID     int64
	RequestExists bool
	ClaimID       int64
	// ClaimInCase is true when the claim exists and belongs to the request's case.
	ClaimInCase bool
	ClaimStatus domain.ClaimStatus
}

// CanDecide evaluates whether an officer may record a decision.
// Rules:
// - Request must exist
// - Claim must exist within the request's case
// - Claim must still be PENDING
func CanDecide(ctx DecideContext) guard.Result {
	if !ctx.RequestExists {
		return guard.Deny(domain.ErrNotFound, "verification request %d not found", ctx.RequestID)
	}
	if !ctx.ClaimInCase {
		return guard.Deny(domain.ErrNotFound, "claim %d not found in the request's case", ctx.ClaimID)
	}
	if ctx.ClaimStatus != domain.ClaimPending {
		return guard.Deny(domain.ErrConflict, "claim %d has already been decided (status: %s)", ctx.ClaimID, ctx.ClaimStatus)
	}
	return guard.Allow()
}
