// Package claim contains the pure business rules for student claims.
package claim

import (
	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// CreateContext provides context for claim creation guards.
type CreateContext struct {
	FoundItemID        int64
	FoundItemExists    bool
	FoundItemStatus    domain.FoundItemStatus
	LostReportSupplied bool
	// LostReportOwned is true when the supplied report exists and belongs to
	// the claiming student.
	LostReportOwned bool
	AlreadyClaimed  bool
	CaseExists      bool
}

// CanCreate evaluates whether a claim can be filed.
// Rules:
// - Found item must exist
// - A supplied lost report must exist and belong to the student
// - Found item must still be STORED
// - The student must not already hold a claim on the item
// - The item must have a case
func CanCreate(ctx CreateContext) guard.Result {
	if !ctx.FoundItemExists {
		return guard.Deny(domain.ErrNotFound, "found item %d not found", ctx.FoundItemID)
	}
	if ctx.LostReportSupplied && !ctx.LostReportOwned {
		return guard.Deny(domain.ErrNotFound, "lost report not found or not owned by the student")
	}
	if ctx.FoundItemStatus != domain.FoundItemStored {
		return guard.Deny(domain.ErrConflict, "found item %d has already been returned", ctx.FoundItemID)
	}
	if ctx.AlreadyClaimed {
		return guard.Deny(domain.ErrConflict, "student already has a claim on found item %d", ctx.FoundItemID)
	}
	if !ctx.CaseExists {
		return guard.Deny(domain.ErrConflict, "found item %d has no case", ctx.FoundItemID)
	}
	return guard.Allow()
}

// ResolveContext provides context for staff approval and rejection guards.
type ResolveContext struct {
	ClaimID     int64
	ClaimStatus domain.ClaimStatus
	HasCase     bool
	TotalClaims int
}

// CanResolveByStaff evaluates whether staff may decide a claim directly.
// Rules:
// - Claim must still be PENDING
// - Claim must belong to a case
// - The case must hold exactly one claim; competing claims go to a security officer
func CanResolveByStaff(ctx ResolveContext) guard.Result {
	if ctx.ClaimStatus != domain.ClaimPending {
		return guard.Deny(domain.ErrConflict, "claim %d has already been decided (status: %s)", ctx.ClaimID, ctx.ClaimStatus)
	}
	if !ctx.HasCase {
		return guard.Deny(domain.ErrConflict, "claim %d is not attached to a case", ctx.ClaimID)
	}
	if ctx.TotalClaims != 1 {
		return guard.Deny(domain.ErrConflict,
			"staff can only decide a case with exactly one claim (case has %d); open a security verification request instead",
			ctx.TotalClaims)
	}
	return guard.Allow()
}

// CanUpdateEvidence evaluates whether the owner may replace the evidence image.
// Rules:
// - Claim must still be PENDING
func CanUpdateEvidence(claimID int64, status domain.ClaimStatus) guard.Result {
	if status != domain.ClaimPending {
		return guard.Deny(domain.ErrConflict, "evidence can only change while claim %d is PENDING (status: %s)", claimID, status)
	}
	return guard.Allow()
}
