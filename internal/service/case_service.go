package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/lostfound/internal/core/cases"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
)

// CaseService owns cases: it opens one per found item, applies claim
// outcomes to them and answers case queries.
type CaseService struct {
	cases         caseRepository
	claims        claimRepository
	foundItems    foundItemRepository
	verifications verificationRepository
	tx            txRunner
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func NewCaseService(
	caseStore caseRepository,
	claimStore claimRepository,
	foundItemStore foundItemRepository,
	verificationStore verificationRepository,
	tx txRunner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *CaseService {
	return &CaseService{
		cases:         caseStore,
		claims:        claimStore,
		foundItems:    foundItemStore,
		verifications: verificationStore,
		tx:            tx,
		metrics:       m,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// OpenCaseForFoundItem returns the item's case, creating it OPEN on first call.
func (s *CaseService) OpenCaseForFoundItem(ctx context.Context, foundItemID, campusID int64) (*domain.Case, error) {
	var c *domain.Case
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		item, err := s.foundItems.GetByID(ctx, foundItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: found item %d", domain.ErrNotFound, foundItemID)
		}

		c, err = s.cases.CreateIfAbsent(ctx, foundItemID, campusID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("case opened", "case_id", c.ID, "found_item_id", foundItemID)
	return c, nil
}

// SetStatus overrides a case's status. Terminal statuses stamp closedAt and
// the others clear it. Claims and the found item are left alone.
func (s *CaseService) SetStatus(ctx context.Context, caseID int64, status string) (*domain.Case, error) {
	st, err := domain.ParseCaseStatus(status)
	if err != nil {
		return nil, err
	}

	var closedAt *time.Time
	if st.Closed() {
		now := s.now()
		closedAt = &now
	}

	var c *domain.Case
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.cases.SetStatus(ctx, caseID, st, closedAt); err != nil {
			return err
		}
		c, err = s.cases.GetByID(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("case status overridden", "case_id", caseID, "status", st)
	return c, nil
}

func (s *CaseService) ListCases(ctx context.Context, campusID *int64, status *domain.CaseStatus) ([]*domain.Case, error) {
	return s.cases.List(ctx, campusID, status)
}

// GetCase returns the case with its claims and verification requests.
func (s *CaseService) GetCase(ctx context.Context, caseID int64) (*domain.CaseDetail, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", domain.ErrNotFound, caseID)
	}

	claims, err := s.claims.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims for case %d: %w", caseID, err)
	}

	requests, err := s.verifications.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification requests for case %d: %w", caseID, err)
	}

	return &domain.CaseDetail{Case: c, Claims: claims, VerificationRequests: requests}, nil
}

// ReconcileClaimCounts reports every case whose counter disagrees with its
// claim rows. With fix set, the counters are reset to the row counts.
func (s *CaseService) ReconcileClaimCounts(ctx context.Context, fix bool) ([]*domain.ClaimCountMismatch, error) {
	var mismatches []*domain.ClaimCountMismatch
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		mismatches, err = s.cases.ListClaimCountMismatches(ctx)
		if err != nil || !fix {
			return err
		}
		for _, m := range mismatches {
			if err := s.cases.RecountClaims(ctx, m.CaseID); err != nil {
				return err
			}
			s.logger.Warn("claim count repaired", "case_id", m.CaseID, "was", m.TotalClaims, "now", m.ActualRows)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mismatches, nil
}

// Resolution describes what applying an outcome to a case changed.
type Resolution struct {
	Case     *domain.Case
	Plan     cases.Plan
	Rejected []*domain.Claim
}

// RecordClaimOutcome applies the case side of a claim resolution: winner,
// sibling rejection, found-item return and case status. The caller has
// already moved the claim itself out of PENDING in the same transaction.
func (s *CaseService) RecordClaimOutcome(ctx context.Context, c *domain.Case, claimID int64, outcome cases.Outcome) (*Resolution, error) {
	plan := cases.PlanOutcome(c.Status, outcome)
	res := &Resolution{Plan: plan}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if plan.SetWinner {
			if g := cases.CanRecordWinner(c, claimID); !g.Allowed {
				return g.Error()
			}
			if err := s.cases.SetWinner(ctx, c.ID, claimID); err != nil {
				return err
			}
		}

		if plan.RejectSiblings {
			rejected, err := s.claims.RejectPendingSiblings(ctx, c.ID, claimID)
			if err != nil {
				return err
			}
			res.Rejected = rejected
		}

		if plan.ReturnItem {
			if err := s.foundItems.MarkReturned(ctx, c.FoundItemID); err != nil {
				return err
			}
		}

		if plan.Status != c.Status || plan.Close {
			var closedAt *time.Time
			if plan.Close {
				now := s.now()
				closedAt = &now
			}
			if err := s.cases.SetStatus(ctx, c.ID, plan.Status, closedAt); err != nil {
				return err
			}
		}

		updated, err := s.cases.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		res.Case = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("claim outcome recorded",
		"case_id", c.ID, "claim_id", claimID, "outcome", outcome.String(),
		"case_status", res.Case.Status, "siblings_rejected", len(res.Rejected))
	return res, nil
}
