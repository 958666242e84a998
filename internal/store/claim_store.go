package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const claimColumns = `id, student_id, found_item_id, lost_report_id, case_id, status, evidence_image_url, created_at`

// ClaimFilter narrows List. Nil fields match everything.
type ClaimFilter struct {
	Status *domain.ClaimStatus
	CaseID *int64
}

type ClaimStore struct {
	db *sql.DB
}

func NewClaimStore(d *sql.DB) *ClaimStore {
	return &ClaimStore{db: d}
}

// Create inserts a PENDING claim. A second claim by the same student on the
// same item is reported as a conflict.
func (s *ClaimStore) Create(ctx context.Context, studentID, foundItemID int64, lostReportID, caseID *int64, evidenceURL string) (*domain.Claim, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO student_claims (student_id, found_item_id, lost_report_id, case_id, status, evidence_image_url)
		VALUES (?, ?, ?, ?, 'PENDING', ?)
	`, studentID, foundItemID, lostReportID, caseID, evidenceURL)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: student %d already has a claim on found item %d", domain.ErrConflict, studentID, foundItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ClaimStore) GetByID(ctx context.Context, id int64) (*domain.Claim, error) {
	c, err := scanClaim(db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+claimColumns+` FROM student_claims WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return c, nil
}

func (s *ClaimStore) ExistsForStudentItem(ctx context.Context, studentID, foundItemID int64) (bool, error) {
	var exists bool
	err := db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM student_claims WHERE student_id = ? AND found_item_id = ?)
	`, studentID, foundItemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing claim: %w", err)
	}
	return exists, nil
}

func (s *ClaimStore) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Claim, error) {
	return s.list(ctx, `SELECT `+claimColumns+` FROM student_claims WHERE student_id = ? ORDER BY created_at DESC, id DESC`, studentID)
}

func (s *ClaimStore) ListByCase(ctx context.Context, caseID int64) ([]*domain.Claim, error) {
	return s.list(ctx, `SELECT `+claimColumns+` FROM student_claims WHERE case_id = ? ORDER BY id ASC`, caseID)
}

func (s *ClaimStore) List(ctx context.Context, f ClaimFilter) ([]*domain.Claim, error) {
	var where []string
	var args []any
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.CaseID != nil {
		where = append(where, "case_id = ?")
		args = append(args, *f.CaseID)
	}

	query := `SELECT ` + claimColumns + ` FROM student_claims`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	return s.list(ctx, query, args...)
}

func (s *ClaimStore) list(ctx context.Context, query string, args ...any) ([]*domain.Claim, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer closeRows(rows)

	var claims []*domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}

	return claims, nil
}

// UpdateStatusIf moves the claim from one status to another. It reports
// false when the claim was no longer in the expected status, which is how a
// losing concurrent writer finds out.
func (s *ClaimStore) UpdateStatusIf(ctx context.Context, id int64, from, to domain.ClaimStatus) (bool, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE student_claims SET status = ? WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update claim status: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RejectPendingSiblings rejects every PENDING claim of the case except keepID
// and returns the rejected claims.
func (s *ClaimStore) RejectPendingSiblings(ctx context.Context, caseID, keepID int64) ([]*domain.Claim, error) {
	siblings, err := s.list(ctx, `
		SELECT `+claimColumns+` FROM student_claims
		WHERE case_id = ? AND id <> ? AND status = 'PENDING' ORDER BY id ASC
	`, caseID, keepID)
	if err != nil {
		return nil, err
	}

	_, err = db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE student_claims SET status = 'REJECTED'
		WHERE case_id = ? AND id <> ? AND status = 'PENDING'
	`, caseID, keepID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject sibling claims: %w", err)
	}

	for _, c := range siblings {
		c.Status = domain.ClaimRejected
	}
	return siblings, nil
}

// UpdateEvidence replaces the evidence image of a PENDING claim owned by studentID.
func (s *ClaimStore) UpdateEvidence(ctx context.Context, id, studentID int64, url string) (bool, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE student_claims SET evidence_image_url = ?
		WHERE id = ? AND student_id = ? AND status = 'PENDING'
	`, url, id, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to update claim evidence: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func scanClaim(row rowScanner) (*domain.Claim, error) {
	c := &domain.Claim{}
	var status string
	if err := row.Scan(&c.ID, &c.StudentID, &c.FoundItemID, &c.LostReportID, &c.CaseID,
		&status, &c.EvidenceImageURL, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.ClaimStatus(status)
	return c, nil
}
