package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/core/cases"
	"github.com/vbonduro/lostfound/internal/core/verification"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
)

// VerificationService runs officer adjudication of cases with competing claims.
type VerificationService struct {
	verifications verificationRepository
	cases         caseRepository
	claims        claimRepository
	users         userRepository
	outcomes      outcomeRecorder
	tx            txRunner
	notifier      Notifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewVerificationService(
	verificationStore verificationRepository,
	caseStore caseRepository,
	claimStore claimRepository,
	userStore userRepository,
	outcomes outcomeRecorder,
	tx txRunner,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		verifications: verificationStore,
		cases:         caseStore,
		claims:        claimStore,
		users:         userStore,
		outcomes:      outcomes,
		tx:            tx,
		notifier:      notifier,
		metrics:       m,
		logger:        logger,
	}
}

// CreateRequest opens a verification request on the case and alerts every
// security officer. The claim count is not checked here.
func (s *VerificationService) CreateRequest(ctx context.Context, requestedBy, caseID int64) (*domain.VerificationRequest, error) {
	var out outbox
	var req *domain.VerificationRequest
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: case %d", domain.ErrNotFound, caseID)
		}

		req, err = s.verifications.CreateRequest(ctx, caseID, requestedBy)
		if err != nil {
			return err
		}

		officers, err := s.users.ListByRole(ctx, domain.RoleSecurityOfficer)
		if err != nil {
			return err
		}
		for _, o := range officers {
			out.add(o.ID, domain.NotifyVerificationRequest, "Verification requested",
				fmt.Sprintf("Case #%d has %d competing claims and needs an officer decision.", caseID, c.TotalClaims),
				req.ID, domain.RelatedVerificationRequest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVerificationRequest()
	s.logger.Info("verification requested", "request_id", req.ID, "case_id", caseID, "requested_by", requestedBy)
	out.flush(ctx, s.notifier, s.logger)
	return req, nil
}

// ListPending returns requests without any decision.
func (s *VerificationService) ListPending(ctx context.Context) ([]*domain.VerificationRequest, error) {
	return s.verifications.ListPending(ctx)
}

// GetRequest returns the request, its decisions and the claims of its case.
func (s *VerificationService) GetRequest(ctx context.Context, requestID int64) (*domain.VerificationDetail, error) {
	req, err := s.verifications.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: verification request %d", domain.ErrNotFound, requestID)
	}

	c, err := s.cases.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", domain.ErrNotFound, req.CaseID)
	}

	claims, err := s.claims.ListByCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	return &domain.VerificationDetail{VerificationRequest: req, CaseStatus: c.Status, Claims: claims}, nil
}

// DecisionInput carries an officer's decision on one claim.
type DecisionInput struct {
	RequestID        int64
	OfficerID        int64
	ClaimID          int64
	Decision         string
	Note             string
	EvidenceImageURL string
}

// CreateDecision records the officer's decision and applies it. Approval
// rejects every other pending claim and returns the item without changing
// the case status; rejection touches only the decided claim.
func (s *VerificationService) CreateDecision(ctx context.Context, in DecisionInput) (*domain.VerificationRequest, error) {
	defer s.metrics.ObserveOperation("create_decision", time.Now())

	decision, err := domain.ParseDecision(in.Decision)
	if err != nil {
		return nil, err
	}

	var out outbox
	var req *domain.VerificationRequest
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.verifications.GetRequest(ctx, in.RequestID)
		if err != nil {
			return err
		}
		cl, err := s.claims.GetByID(ctx, in.ClaimID)
		if err != nil {
			return err
		}

		dc := verification.DecideContext{RequestID: in.RequestID, RequestExists: req != nil, ClaimID: in.ClaimID}
		if req != nil && cl != nil && cl.CaseID != nil && *cl.CaseID == req.CaseID {
			dc.ClaimInCase = true
			dc.ClaimStatus = cl.Status
		}
		if g := verification.CanDecide(dc); !g.Allowed {
			return g.Error()
		}

		target := domain.ClaimRejected
		if decision == domain.DecisionApproved {
			target = domain.ClaimApproved
		}
		ok, err := s.claims.UpdateStatusIf(ctx, in.ClaimID, domain.ClaimPending, target)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: claim %d has already been decided", domain.ErrConflict, in.ClaimID)
		}

		if _, err := s.verifications.CreateDecision(ctx, &domain.VerificationDecision{
			RequestID:         in.RequestID,
			ClaimID:           in.ClaimID,
			SecurityOfficerID: in.OfficerID,
			Decision:          decision,
			Note:              in.Note,
			EvidenceImageURL:  in.EvidenceImageURL,
		}); err != nil {
			return err
		}

		if decision == domain.DecisionApproved {
			c, err := s.cases.GetByID(ctx, req.CaseID)
			if err != nil {
				return err
			}
			if c == nil {
				return fmt.Errorf("%w: case %d", domain.ErrNotFound, req.CaseID)
			}
			res, err := s.outcomes.RecordClaimOutcome(ctx, c, in.ClaimID, cases.OfficerApproved)
			if err != nil {
				return err
			}
			out.add(cl.StudentID, domain.NotifyClaimApproved, "Claim approved",
				fmt.Sprintf("A security officer approved your claim #%d. Please collect your item.", in.ClaimID),
				in.ClaimID, domain.RelatedClaim)
			for _, r := range res.Rejected {
				out.add(r.StudentID, domain.NotifyClaimRejected, "Claim rejected",
					fmt.Sprintf("Your claim #%d was rejected because another claim on the item was approved.", r.ID),
					r.ID, domain.RelatedClaim)
			}
		} else {
			out.add(cl.StudentID, domain.NotifyClaimRejected, "Claim rejected",
				fmt.Sprintf("A security officer rejected your claim #%d.", in.ClaimID),
				in.ClaimID, domain.RelatedClaim)
		}

		out.add(req.RequestedBy, domain.NotifyVerificationDecision, "Verification decided",
			fmt.Sprintf("Claim #%d on case #%d was %s by a security officer.", in.ClaimID, req.CaseID, decision),
			req.ID, domain.RelatedVerificationRequest)

		req, err = s.verifications.GetRequest(ctx, in.RequestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVerificationDecision(string(decision))
	s.metrics.IncClaimResolution("officer", strings.ToLower(string(decision)))
	s.logger.Info("verification decision recorded",
		"request_id", in.RequestID, "claim_id", in.ClaimID, "officer_id", in.OfficerID, "decision", decision)
	out.flush(ctx, s.notifier, s.logger)
	return req, nil
}
