package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const caseColumns = `id, found_item_id, campus_id, status, total_claims, successful_claim_id, opened_at, closed_at`

type CaseStore struct {
	db *sql.DB
}

func NewCaseStore(d *sql.DB) *CaseStore {
	return &CaseStore{db: d}
}

// CreateIfAbsent opens an OPEN case for the found item, or returns the
// existing one unchanged.
func (s *CaseStore) CreateIfAbsent(ctx context.Context, foundItemID, campusID int64, openedAt time.Time) (*domain.Case, error) {
	_, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO cases (found_item_id, campus_id, status, total_claims, opened_at)
		VALUES (?, ?, 'OPEN', 0, ?)
		ON CONFLICT (found_item_id) DO NOTHING
	`, foundItemID, campusID, openedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to open case: %w", err)
	}

	c, err := s.GetByFoundItemID(ctx, foundItemID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("case for found item %d missing after insert", foundItemID)
	}
	return c, nil
}

func (s *CaseStore) GetByID(ctx context.Context, id int64) (*domain.Case, error) {
	return s.getOne(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
}

func (s *CaseStore) GetByFoundItemID(ctx context.Context, foundItemID int64) (*domain.Case, error) {
	return s.getOne(ctx, `SELECT `+caseColumns+` FROM cases WHERE found_item_id = ?`, foundItemID)
}

func (s *CaseStore) getOne(ctx context.Context, query string, arg int64) (*domain.Case, error) {
	c, err := scanCase(db.Conn(ctx, s.db).QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return c, nil
}

func (s *CaseStore) List(ctx context.Context, campusID *int64, status *domain.CaseStatus) ([]*domain.Case, error) {
	var where []string
	var args []any
	if campusID != nil {
		where = append(where, "campus_id = ?")
		args = append(args, *campusID)
	}
	if status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*status))
	}

	query := `SELECT ` + caseColumns + ` FROM cases`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY opened_at DESC, id DESC"

	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer closeRows(rows)

	var cases []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

func (s *CaseStore) IncrementClaimCount(ctx context.Context, id int64) error {
	return s.exec(ctx, "increment claim count", id, `
		UPDATE cases SET total_claims = total_claims + 1 WHERE id = ?
	`, id)
}

// SetStatus writes status and closedAt together; a nil closedAt clears it.
func (s *CaseStore) SetStatus(ctx context.Context, id int64, status domain.CaseStatus, closedAt *time.Time) error {
	return s.exec(ctx, "set case status", id, `
		UPDATE cases SET status = ?, closed_at = ? WHERE id = ?
	`, string(status), closedAt, id)
}

// SetWinner records claimID as the successful claim. It fails with a
// conflict when a different claim already won.
func (s *CaseStore) SetWinner(ctx context.Context, id, claimID int64) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE cases SET successful_claim_id = ?
		WHERE id = ? AND (successful_claim_id IS NULL OR successful_claim_id = ?)
	`, claimID, id, claimID)
	if err != nil {
		return fmt.Errorf("failed to set successful claim: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: case %d already has a successful claim", domain.ErrConflict, id)
	}
	return nil
}

// ListClaimCountMismatches returns the cases whose counter disagrees with
// the number of claim rows attached to them.
func (s *CaseStore) ListClaimCountMismatches(ctx context.Context) ([]*domain.ClaimCountMismatch, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT c.id, c.total_claims, COUNT(sc.id) AS actual
		FROM cases c
		LEFT JOIN student_claims sc ON sc.case_id = c.id
		GROUP BY c.id, c.total_claims
		HAVING c.total_claims <> COUNT(sc.id)
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile claim counts: %w", err)
	}
	defer closeRows(rows)

	var out []*domain.ClaimCountMismatch
	for rows.Next() {
		m := &domain.ClaimCountMismatch{}
		if err := rows.Scan(&m.CaseID, &m.TotalClaims, &m.ActualRows); err != nil {
			return nil, fmt.Errorf("failed to scan claim count: %w", err)
		}
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claim counts: %w", err)
	}

	return out, nil
}

// RecountClaims resets the counter of a case to its actual row count.
func (s *CaseStore) RecountClaims(ctx context.Context, id int64) error {
	return s.exec(ctx, "recount claims", id, `
		UPDATE cases SET total_claims = (SELECT COUNT(*) FROM student_claims WHERE case_id = cases.id)
		WHERE id = ?
	`, id)
}

func (s *CaseStore) exec(ctx context.Context, op string, id int64, query string, args ...any) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: case %d", domain.ErrNotFound, id)
	}
	return nil
}

func scanCase(row rowScanner) (*domain.Case, error) {
	c := &domain.Case{}
	var status string
	if err := row.Scan(&c.ID, &c.FoundItemID, &c.CampusID, &status, &c.TotalClaims,
		&c.SuccessfulClaimID, &c.OpenedAt, &c.ClosedAt); err != nil {
		return nil, err
	}
	c.Status = domain.CaseStatus(status)
	return c, nil
}
