package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const lostReportSelect = `
	SELECT r.id, r.student_id, r.category_id, r.description, r.lost_date, r.lost_location, r.image_url,
	       r.identifying_features, r.claim_password, r.created_at,
	       EXISTS (SELECT 1 FROM student_claims c WHERE c.lost_report_id = r.id) AS has_claims
	FROM lost_reports r`

// notRetracted hides reports whose claim has been approved.
const notRetracted = `NOT EXISTS (SELECT 1 FROM student_claims c WHERE c.lost_report_id = r.id AND c.status = 'APPROVED')`

type LostReportStore struct {
	db *sql.DB
}

func NewLostReportStore(d *sql.DB) *LostReportStore {
	return &LostReportStore{db: d}
}

func (s *LostReportStore) Create(ctx context.Context, r *domain.LostReport) (*domain.LostReport, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO lost_reports (student_id, category_id, description, lost_date, lost_location, image_url,
		                          identifying_features, claim_password)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.StudentID, r.CategoryID, r.Description, r.LostDate, r.LostLocation, r.ImageURL,
		r.IdentifyingFeatures, r.ClaimPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to create lost report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *LostReportStore) GetByID(ctx context.Context, id int64) (*domain.LostReport, error) {
	r, err := scanLostReport(db.Conn(ctx, s.db).QueryRowContext(ctx, lostReportSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lost report: %w", err)
	}
	return r, nil
}

// ListByStudent returns the student's reports that have not been retracted by
// an approved claim, newest first.
func (s *LostReportStore) ListByStudent(ctx context.Context, studentID int64) ([]*domain.LostReport, error) {
	return s.list(ctx, lostReportSelect+` WHERE r.student_id = ? AND `+notRetracted+` ORDER BY r.created_at DESC, r.id DESC`, studentID)
}

// List returns every report not retracted by an approved claim, newest first.
func (s *LostReportStore) List(ctx context.Context, categoryID *int64) ([]*domain.LostReport, error) {
	if categoryID != nil {
		return s.list(ctx, lostReportSelect+` WHERE r.category_id = ? AND `+notRetracted+` ORDER BY r.created_at DESC, r.id DESC`, *categoryID)
	}
	return s.list(ctx, lostReportSelect+` WHERE `+notRetracted+` ORDER BY r.created_at DESC, r.id DESC`)
}

func (s *LostReportStore) list(ctx context.Context, query string, args ...any) ([]*domain.LostReport, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lost reports: %w", err)
	}
	defer closeRows(rows)

	var reports []*domain.LostReport
	for rows.Next() {
		r, err := scanLostReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lost report: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lost reports: %w", err)
	}

	return reports, nil
}

// CountClaims returns how many claims reference the report.
func (s *LostReportStore) CountClaims(ctx context.Context, id int64) (int, error) {
	var n int
	err := db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM student_claims WHERE lost_report_id = ?
	`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return n, nil
}

func (s *LostReportStore) Update(ctx context.Context, r *domain.LostReport) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE lost_reports
		SET category_id = ?, description = ?, lost_date = ?, lost_location = ?, image_url = ?,
		    identifying_features = ?, claim_password = ?
		WHERE id = ? AND student_id = ?
	`, r.CategoryID, r.Description, r.LostDate, r.LostLocation, r.ImageURL,
		r.IdentifyingFeatures, r.ClaimPassword, r.ID, r.StudentID)
	if err != nil {
		return fmt.Errorf("failed to update lost report: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: lost report %d", domain.ErrNotFound, r.ID)
	}

	return nil
}

// Delete removes the report when it belongs to studentID and nothing references it.
func (s *LostReportStore) Delete(ctx context.Context, id, studentID int64) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		DELETE FROM lost_reports WHERE id = ? AND student_id = ?
		AND NOT EXISTS (SELECT 1 FROM student_claims WHERE lost_report_id = ?)
	`, id, studentID, id)
	if err != nil {
		return fmt.Errorf("failed to delete lost report: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: lost report %d", domain.ErrNotFound, id)
	}

	return nil
}

func scanLostReport(row rowScanner) (*domain.LostReport, error) {
	r := &domain.LostReport{}
	if err := row.Scan(&r.ID, &r.StudentID, &r.CategoryID, &r.Description, &r.LostDate, &r.LostLocation,
		&r.ImageURL, &r.IdentifyingFeatures, &r.ClaimPassword, &r.CreatedAt, &r.HasClaims); err != nil {
		return nil, err
	}
	return r, nil
}
