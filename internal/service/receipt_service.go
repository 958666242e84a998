package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/lostfound/internal/core/cases"
	"github.com/vbonduro/lostfound/internal/core/receipt"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
)

// ReceiptService records the physical return of approved claims.
type ReceiptService struct {
	receipts receiptRepository
	cases    caseRepository
	claims   claimRepository
	outcomes outcomeRecorder
	tx       txRunner
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewReceiptService(
	receiptStore receiptRepository,
	caseStore caseRepository,
	claimStore claimRepository,
	outcomes outcomeRecorder,
	tx txRunner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReceiptService {
	return &ReceiptService{
		receipts: receiptStore,
		cases:    caseStore,
		claims:   claimStore,
		outcomes: outcomes,
		tx:       tx,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateReceipt proves the return of an approved claim and completes its case.
func (s *ReceiptService) CreateReceipt(ctx context.Context, staffID, caseID, claimID int64, imageURL string) (*domain.ReturnReceipt, error) {
	defer s.metrics.ObserveOperation("create_receipt", time.Now())

	var created *domain.ReturnReceipt
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, caseID)
		if err != nil {
			return err
		}
		cl, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			return err
		}
		existing, err := s.receipts.GetByClaimID(ctx, claimID)
		if err != nil {
			return err
		}

		rc := receipt.CreateContext{
			CaseID:        caseID,
			CaseExists:    c != nil,
			ClaimID:       claimID,
			ClaimExists:   cl != nil,
			ReceiptExists: existing != nil,
		}
		if cl != nil {
			rc.ClaimInCase = cl.CaseID != nil && *cl.CaseID == caseID
			rc.ClaimStatus = cl.Status
		}
		if g := receipt.CanCreate(rc); !g.Allowed {
			return g.Error()
		}

		created, err = s.receipts.Create(ctx, caseID, claimID, staffID, imageURL, s.now())
		if err != nil {
			return err
		}

		_, err = s.outcomes.RecordClaimOutcome(ctx, c, claimID, cases.ReceiptIssued)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncReceiptIssued()
	s.logger.Info("receipt issued", "receipt_id", created.ID, "case_id", caseID, "claim_id", claimID, "staff_id", staffID)
	return created, nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context) ([]*domain.ReturnReceipt, error) {
	return s.receipts.List(ctx)
}

func (s *ReceiptService) GetReceipt(ctx context.Context, id int64) (*domain.ReturnReceipt, error) {
	r, err := s.receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: receipt %d", domain.ErrNotFound, id)
	}
	return r, nil
}
