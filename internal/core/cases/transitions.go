// Package cases holds the case state machine: which status a case moves to
// when a claim is filed or resolved, and which side effects come with it.
package cases

import (
	"fmt"

	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// Outcome is a resolution event applied to a case.
type Outcome int

const (
	// StaffApproved is the counter hand-over of a single-claim case.
	StaffApproved Outcome = iota
	// StaffRejected rejects the sole claim of a case.
	StaffRejected
	// OfficerApproved picks the winner among competing claims.
	OfficerApproved
	// OfficerRejected rejects one competing claim; the others stay pending.
	OfficerRejected
	// ReceiptIssued records the physical return of an approved claim.
	ReceiptIssued
)

func (o Outcome) String() string {
	switch o {
	case StaffApproved:
		return "staff_approved"
	case StaffRejected:
		return "staff_rejected"
	case OfficerApproved:
		return "officer_approved"
	case OfficerRejected:
		return "officer_rejected"
	case ReceiptIssued:
		return "receipt_issued"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Plan lists the writes an outcome requires. Callers apply every flagged
// write inside one transaction, in field order.
type Plan struct {
	// Status is the case status after the outcome.
	Status domain.CaseStatus
	// Close stamps closedAt.
	Close bool
	// SetWinner records the claim as the case's successful claim.
	SetWinner bool
	// RejectSiblings moves every other PENDING claim of the case to REJECTED.
	RejectSiblings bool
	// ReturnItem flips the found item to RETURNED.
	ReturnItem bool
	// IssueReceipt creates the return receipt as part of the same step.
	IssueReceipt bool
}

// PlanOutcome returns the writes for applying o to a case currently in status.
func PlanOutcome(status domain.CaseStatus, o Outcome) Plan {
	switch o {
	case StaffApproved:
		return Plan{
			Status:         domain.CaseCompleted,
			Close:          true,
			SetWinner:      true,
			RejectSiblings: true,
			ReturnItem:     true,
			IssueReceipt:   true,
		}
	case StaffRejected:
		return Plan{Status: domain.CaseFailed, Close: true}
	case OfficerApproved:
		return Plan{Status: status, SetWinner: true, RejectSiblings: true, ReturnItem: true}
	case ReceiptIssued:
		return Plan{Status: domain.CaseCompleted, Close: true, SetWinner: true, ReturnItem: true}
	default:
		return Plan{Status: status}
	}
}

// StatusAfterClaim returns the case status once a new claim is attached.
// An OPEN case starts progressing; a FAILED case is reopened because a new
// claimant is an alternative to the rejected one.
func StatusAfterClaim(status domain.CaseStatus) (domain.CaseStatus, bool) {
	switch status {
	case domain.CaseOpen, domain.CaseFailed:
		return domain.CaseInProgress, true
	default:
		return status, false
	}
}

// CanRecordWinner evaluates whether claimID may become the case's winner.
// Rules:
// - A case holds at most one successful claim
func CanRecordWinner(c *domain.Case, claimID int64) guard.Result {
	if c.SuccessfulClaimID != nil && *c.SuccessfulClaimID != claimID {
		return guard.Deny(domain.ErrConflict, "case %d already resolved by claim %d", c.ID, *c.SuccessfulClaimID)
	}
	return guard.Allow()
}
