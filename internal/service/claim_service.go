package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/lostfound/internal/core/cases"
	"github.com/vbonduro/lostfound/internal/core/claim"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
	"github.com/vbonduro/lostfound/internal/store"
)

// outcomeRecorder applies the case side of a claim resolution.
type outcomeRecorder interface {
	RecordClaimOutcome(ctx context.Context, c *domain.Case, claimID int64, outcome cases.Outcome) (*Resolution, error)
}

// ClaimService owns student claims: filing them and the direct staff
// resolution of single-claim cases.
type ClaimService struct {
	claims      claimRepository
	cases       caseRepository
	foundItems  foundItemRepository
	lostReports lostReportRepository
	receipts    receiptRepository
	outcomes    outcomeRecorder
	tx          txRunner
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

func NewClaimService(
	claimStore claimRepository,
	caseStore caseRepository,
	foundItemStore foundItemRepository,
	lostReportStore lostReportRepository,
	receiptStore receiptRepository,
	outcomes outcomeRecorder,
	tx txRunner,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ClaimService {
	return &ClaimService{
		claims:      claimStore,
		cases:       caseStore,
		foundItems:  foundItemStore,
		lostReports: lostReportStore,
		receipts:    receiptStore,
		outcomes:    outcomes,
		tx:          tx,
		notifier:    notifier,
		metrics:     m,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateClaim files a PENDING claim by studentID on the found item.
func (s *ClaimService) CreateClaim(ctx context.Context, studentID, foundItemID int64, lostReportID *int64, evidenceURL string) (*domain.Claim, error) {
	defer s.metrics.ObserveOperation("create_claim", time.Now())

	var out outbox
	var created *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.createClaim(ctx, studentID, foundItemID, lostReportID, evidenceURL)
		if err != nil {
			return err
		}
		out.add(studentID, domain.NotifyClaimCreated, "Claim received",
			fmt.Sprintf("Your claim #%d has been filed. Please come to the lost and found office to verify ownership.", created.ID),
			created.ID, domain.RelatedClaim)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClaimCreated("student")
	s.logger.Info("claim created", "claim_id", created.ID, "student_id", studentID, "found_item_id", foundItemID)
	out.flush(ctx, s.notifier, s.logger)
	return created, nil
}

// CreateClaimForStudent files a claim on behalf of the owner of a lost report
// that staff matched to a found item.
func (s *ClaimService) CreateClaimForStudent(ctx context.Context, staffID, lostReportID, foundItemID int64) (*domain.Claim, error) {
	defer s.metrics.ObserveOperation("create_claim_for_student", time.Now())

	var out outbox
	var created *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		report, err := s.lostReports.GetByID(ctx, lostReportID)
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("%w: lost report %d", domain.ErrNotFound, lostReportID)
		}

		created, err = s.createClaim(ctx, report.StudentID, foundItemID, &lostReportID, "")
		if err != nil {
			return err
		}
		out.add(report.StudentID, domain.NotifyClaimMatched, "Your item may have been found",
			fmt.Sprintf("Staff matched your lost report #%d to a found item. Please come to the lost and found office to verify ownership.", lostReportID),
			created.ID, domain.RelatedClaim)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClaimCreated("staff_match")
	s.logger.Info("claim created for student",
		"claim_id", created.ID, "staff_id", staffID, "lost_report_id", lostReportID, "found_item_id", foundItemID)
	out.flush(ctx, s.notifier, s.logger)
	return created, nil
}

// createClaim checks every precondition before the first write, then inserts
// the claim, bumps the case counter and starts the case if needed.
func (s *ClaimService) createClaim(ctx context.Context, studentID, foundItemID int64, lostReportID *int64, evidenceURL string) (*domain.Claim, error) {
	item, err := s.foundItems.GetByID(ctx, foundItemID)
	if err != nil {
		return nil, err
	}

	gc := claim.CreateContext{FoundItemID: foundItemID, FoundItemExists: item != nil}
	if item != nil {
		gc.FoundItemStatus = item.Status
	}

	if lostReportID != nil {
		gc.LostReportSupplied = true
		report, err := s.lostReports.GetByID(ctx, *lostReportID)
		if err != nil {
			return nil, err
		}
		gc.LostReportOwned = report != nil && report.StudentID == studentID
	}

	gc.AlreadyClaimed, err = s.claims.ExistsForStudentItem(ctx, studentID, foundItemID)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.GetByFoundItemID(ctx, foundItemID)
	if err != nil {
		return nil, err
	}
	gc.CaseExists = c != nil

	if g := claim.CanCreate(gc); !g.Allowed {
		return nil, g.Error()
	}

	created, err := s.claims.Create(ctx, studentID, foundItemID, lostReportID, &c.ID, evidenceURL)
	if err != nil {
		return nil, err
	}

	if err := s.cases.IncrementClaimCount(ctx, c.ID); err != nil {
		return nil, err
	}

	if next, changed := cases.StatusAfterClaim(c.Status); changed {
		if err := s.cases.SetStatus(ctx, c.ID, next, nil); err != nil {
			return nil, err
		}
	}

	return created, nil
}

// ApproveByStaff approves the sole claim of a case, hands the item back and
// issues the return receipt in one step.
func (s *ClaimService) ApproveByStaff(ctx context.Context, claimID, staffID int64) (*domain.Claim, error) {
	defer s.metrics.ObserveOperation("approve_by_staff", time.Now())

	var out outbox
	var updated *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cl, c, err := s.loadForStaffDecision(ctx, claimID)
		if err != nil {
			return err
		}

		if err := s.transition(ctx, claimID, domain.ClaimApproved); err != nil {
			return err
		}

		res, err := s.outcomes.RecordClaimOutcome(ctx, c, claimID, cases.StaffApproved)
		if err != nil {
			return err
		}

		if res.Plan.IssueReceipt {
			if _, err := s.receipts.Create(ctx, c.ID, claimID, staffID, cl.EvidenceImageURL, s.now()); err != nil {
				return err
			}
		}

		out.add(cl.StudentID, domain.NotifyClaimApproved, "Claim approved",
			fmt.Sprintf("Your claim #%d has been confirmed and the item has been returned to you.", claimID),
			claimID, domain.RelatedClaim)

		updated, err = s.claims.GetByID(ctx, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClaimResolution("staff", "approved")
	s.logger.Info("claim approved by staff", "claim_id", claimID, "staff_id", staffID)
	out.flush(ctx, s.notifier, s.logger)
	return updated, nil
}

// RejectByStaff rejects the sole claim of a case, which fails the case.
func (s *ClaimService) RejectByStaff(ctx context.Context, claimID, staffID int64) (*domain.Claim, error) {
	defer s.metrics.ObserveOperation("reject_by_staff", time.Now())

	var out outbox
	var updated *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cl, c, err := s.loadForStaffDecision(ctx, claimID)
		if err != nil {
			return err
		}

		if err := s.transition(ctx, claimID, domain.ClaimRejected); err != nil {
			return err
		}

		if _, err := s.outcomes.RecordClaimOutcome(ctx, c, claimID, cases.StaffRejected); err != nil {
			return err
		}

		out.add(cl.StudentID, domain.NotifyClaimRejected, "Claim rejected",
			fmt.Sprintf("Your claim #%d could not be verified and has been rejected.", claimID),
			claimID, domain.RelatedClaim)

		updated, err = s.claims.GetByID(ctx, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncClaimResolution("staff", "rejected")
	s.logger.Info("claim rejected by staff", "claim_id", claimID, "staff_id", staffID)
	out.flush(ctx, s.notifier, s.logger)
	return updated, nil
}

func (s *ClaimService) loadForStaffDecision(ctx context.Context, claimID int64) (*domain.Claim, *domain.Case, error) {
	cl, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	if cl == nil {
		return nil, nil, fmt.Errorf("%w: claim %d", domain.ErrNotFound, claimID)
	}

	var c *domain.Case
	if cl.CaseID != nil {
		c, err = s.cases.GetByID(ctx, *cl.CaseID)
		if err != nil {
			return nil, nil, err
		}
	}

	rc := claim.ResolveContext{ClaimID: claimID, ClaimStatus: cl.Status, HasCase: c != nil}
	if c != nil {
		rc.TotalClaims = c.TotalClaims
	}
	if g := claim.CanResolveByStaff(rc); !g.Allowed {
		return nil, nil, g.Error()
	}
	return cl, c, nil
}

// transition moves a PENDING claim to status; a claim that left PENDING
// meanwhile is a conflict.
func (s *ClaimService) transition(ctx context.Context, claimID int64, status domain.ClaimStatus) error {
	ok, err := s.claims.UpdateStatusIf(ctx, claimID, domain.ClaimPending, status)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: claim %d has already been decided", domain.ErrConflict, claimID)
	}
	return nil
}

// UpdateEvidence replaces the evidence image of the student's PENDING claim.
func (s *ClaimService) UpdateEvidence(ctx context.Context, claimID, studentID int64, imageURL string) (*domain.Claim, error) {
	var updated *domain.Claim
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		cl, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		if cl == nil || cl.StudentID != studentID {
			return fmt.Errorf("%w: claim %d", domain.ErrNotFound, claimID)
		}
		if g := claim.CanUpdateEvidence(claimID, cl.Status); !g.Allowed {
			return g.Error()
		}

		ok, err := s.claims.UpdateEvidence(ctx, claimID, studentID, imageURL)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: claim %d is no longer pending", domain.ErrConflict, claimID)
		}

		updated, err = s.claims.GetByID(ctx, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim evidence updated", "claim_id", claimID, "student_id", studentID)
	return updated, nil
}

func (s *ClaimService) ListMine(ctx context.Context, studentID int64) ([]*domain.Claim, error) {
	return s.claims.ListByStudent(ctx, studentID)
}

func (s *ClaimService) ListAll(ctx context.Context, status *domain.ClaimStatus, caseID *int64) ([]*domain.Claim, error) {
	return s.claims.List(ctx, store.ClaimFilter{Status: status, CaseID: caseID})
}

// GetByID returns the claim. A non-nil studentID restricts the lookup to that
// student's own claims.
func (s *ClaimService) GetByID(ctx context.Context, claimID int64, studentID *int64) (*domain.Claim, error) {
	cl, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if cl == nil || (studentID != nil && cl.StudentID != *studentID) {
		return nil, fmt.Errorf("%w: claim %d", domain.ErrNotFound, claimID)
	}
	return cl, nil
}
