package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const (
	requestColumns  = `id, case_id, requested_by, created_at`
	decisionColumns = `id, request_id, claim_id, security_officer_id, decision, note, evidence_image_url, created_at`
)

// VerificationStore persists verification requests and their append-only decisions.
type VerificationStore struct {
	db *sql.DB
}

func NewVerificationStore(d *sql.DB) *VerificationStore {
	return &VerificationStore{db: d}
}

func (s *VerificationStore) CreateRequest(ctx context.Context, caseID, requestedBy int64) (*domain.VerificationRequest, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verification_requests (case_id, requested_by) VALUES (?, ?)
	`, caseID, requestedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetRequest(ctx, id)
}

// GetRequest returns the request with its decisions, oldest first.
func (s *VerificationStore) GetRequest(ctx context.Context, id int64) (*domain.VerificationRequest, error) {
	r := &domain.VerificationRequest{}
	err := db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM verification_requests WHERE id = ?
	`, id).Scan(&r.ID, &r.CaseID, &r.RequestedBy, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}

	decisions, err := s.listDecisions(ctx, `
		SELECT `+decisionColumns+` FROM verification_decisions WHERE request_id = ? ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	r.Decisions = decisions

	return r, nil
}

// ListPending returns the requests nobody has decided on yet, oldest first.
func (s *VerificationStore) ListPending(ctx context.Context) ([]*domain.VerificationRequest, error) {
	return s.listRequests(ctx, `
		SELECT `+requestColumns+` FROM verification_requests r
		WHERE NOT EXISTS (SELECT 1 FROM verification_decisions d WHERE d.request_id = r.id)
		ORDER BY r.created_at ASC, r.id ASC
	`)
}

func (s *VerificationStore) ListByCase(ctx context.Context, caseID int64) ([]*domain.VerificationRequest, error) {
	requests, err := s.listRequests(ctx, `
		SELECT `+requestColumns+` FROM verification_requests WHERE case_id = ? ORDER BY id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}

	decisions, err := s.listDecisions(ctx, `
		SELECT d.id, d.request_id, d.claim_id, d.security_officer_id, d.decision, d.note, d.evidence_image_url, d.created_at
		FROM verification_decisions d
		JOIN verification_requests r ON r.id = d.request_id
		WHERE r.case_id = ? ORDER BY d.id ASC
	`, caseID)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64]*domain.VerificationRequest, len(requests))
	for _, r := range requests {
		byRequest[r.ID] = r
	}
	for _, d := range decisions {
		if r, ok := byRequest[d.RequestID]; ok {
			r.Decisions = append(r.Decisions, d)
		}
	}
	return requests, nil
}

// CreateDecision appends a decision. Decisions are never edited or removed.
func (s *VerificationStore) CreateDecision(ctx context.Context, d *domain.VerificationDecision) (*domain.VerificationDecision, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verification_decisions (request_id, claim_id, security_officer_id, decision, note, evidence_image_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.RequestID, d.ClaimID, d.SecurityOfficerID, string(d.Decision), d.Note, d.EvidenceImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification decision: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	decisions, err := s.listDecisions(ctx, `
		SELECT `+decisionColumns+` FROM verification_decisions WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, fmt.Errorf("verification decision %d missing after insert", id)
	}
	return decisions[0], nil
}

func (s *VerificationStore) listRequests(ctx context.Context, query string, args ...any) ([]*domain.VerificationRequest, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification requests: %w", err)
	}
	defer closeRows(rows)

	var requests []*domain.VerificationRequest
	for rows.Next() {
		r := &domain.VerificationRequest{}
		if err := rows.Scan(&r.ID, &r.CaseID, &r.RequestedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verification request: %w", err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verification requests: %w", err)
	}

	return requests, nil
}

func (s *VerificationStore) listDecisions(ctx context.Context, query string, args ...any) ([]*domain.VerificationDecision, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list verification decisions: %w", err)
	}
	defer closeRows(rows)

	var decisions []*domain.VerificationDecision
	for rows.Next() {
		d := &domain.VerificationDecision{}
		var decision string
		if err := rows.Scan(&d.ID, &d.RequestID, &d.ClaimID, &d.SecurityOfficerID, &decision,
			&d.Note, &d.EvidenceImageURL, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan verification decision: %w", err)
		}
		d.Decision = domain.Decision(decision)
		decisions = append(decisions, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating verification decisions: %w", err)
	}

	return decisions, nil
}
