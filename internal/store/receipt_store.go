package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const receiptColumns = `id, case_id, claim_id, staff_id, receipt_image_url, returned_at`

type ReceiptStore struct {
	db *sql.DB
}

func NewReceiptStore(d *sql.DB) *ReceiptStore {
	return &ReceiptStore{db: d}
}

// Create records the return. The claim_id uniqueness constraint backs the
// one-receipt-per-claim rule; a duplicate is reported as a conflict.
func (s *ReceiptStore) Create(ctx context.Context, caseID, claimID, staffID int64, imageURL string, returnedAt time.Time) (*domain.ReturnReceipt, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO return_receipts (case_id, claim_id, staff_id, receipt_image_url, returned_at)
		VALUES (?, ?, ?, ?, ?)
	`, caseID, claimID, staffID, imageURL, returnedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: a receipt already exists for claim %d", domain.ErrConflict, claimID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ReceiptStore) GetByID(ctx context.Context, id int64) (*domain.ReturnReceipt, error) {
	return s.getOne(ctx, `SELECT `+receiptColumns+` FROM return_receipts WHERE id = ?`, id)
}

func (s *ReceiptStore) GetByClaimID(ctx context.Context, claimID int64) (*domain.ReturnReceipt, error) {
	return s.getOne(ctx, `SELECT `+receiptColumns+` FROM return_receipts WHERE claim_id = ?`, claimID)
}

func (s *ReceiptStore) getOne(ctx context.Context, query string, arg int64) (*domain.ReturnReceipt, error) {
	r := &domain.ReturnReceipt{}
	err := db.Conn(ctx, s.db).QueryRowContext(ctx, query, arg).
		Scan(&r.ID, &r.CaseID, &r.ClaimID, &r.StaffID, &r.ReceiptImageURL, &r.ReturnedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

func (s *ReceiptStore) List(ctx context.Context) ([]*domain.ReturnReceipt, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+receiptColumns+` FROM return_receipts ORDER BY returned_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer closeRows(rows)

	var receipts []*domain.ReturnReceipt
	for rows.Next() {
		r := &domain.ReturnReceipt{}
		if err := rows.Scan(&r.ID, &r.CaseID, &r.ClaimID, &r.StaffID, &r.ReceiptImageURL, &r.ReturnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}

	return receipts, nil
}
