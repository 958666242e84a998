package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const foundItemColumns = `id, created_by, category_id, campus_id, description, found_date, found_location, status, image_url, created_at`

// FoundItemFilter narrows List. Nil fields match everything.
type FoundItemFilter struct {
	CampusID   *int64
	Status     *domain.FoundItemStatus
	CategoryID *int64
}

type FoundItemStore struct {
	db *sql.DB
}

func NewFoundItemStore(d *sql.DB) *FoundItemStore {
	return &FoundItemStore{db: d}
}

func (s *FoundItemStore) Create(ctx context.Context, item *domain.FoundItem) (*domain.FoundItem, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO found_items (created_by, category_id, campus_id, description, found_date, found_location, status, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, item.CreatedBy, item.CategoryID, item.CampusID, item.Description, item.FoundDate,
		item.FoundLocation, string(domain.FoundItemStored), item.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create found item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *FoundItemStore) GetByID(ctx context.Context, id int64) (*domain.FoundItem, error) {
	item, err := scanFoundItem(db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+foundItemColumns+` FROM found_items WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get found item: %w", err)
	}
	return item, nil
}

func (s *FoundItemStore) List(ctx context.Context, f FoundItemFilter) ([]*domain.FoundItem, error) {
	var where []string
	var args []any
	if f.CampusID != nil {
		where = append(where, "campus_id = ?")
		args = append(args, *f.CampusID)
	}
	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *f.CategoryID)
	}

	query := `SELECT ` + foundItemColumns + ` FROM found_items`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list found items: %w", err)
	}
	defer closeRows(rows)

	var items []*domain.FoundItem
	for rows.Next() {
		item, err := scanFoundItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan found item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating found items: %w", err)
	}

	return items, nil
}

// Update rewrites the editable fields of a STORED item. Returned items are
// left untouched and reported as a conflict.
func (s *FoundItemStore) Update(ctx context.Context, item *domain.FoundItem) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE found_items
		SET category_id = ?, description = ?, found_date = ?, found_location = ?, image_url = ?
		WHERE id = ? AND status = 'STORED'
	`, item.CategoryID, item.Description, item.FoundDate, item.FoundLocation, item.ImageURL, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update found item: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: found item %d is not editable", domain.ErrConflict, item.ID)
	}

	return nil
}

// MarkReturned flips the item to RETURNED. Re-applying it is a no-op.
func (s *FoundItemStore) MarkReturned(ctx context.Context, id int64) error {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE found_items SET status = 'RETURNED' WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark found item returned: %w", err)
	}

	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: found item %d", domain.ErrNotFound, id)
	}

	return nil
}

func scanFoundItem(row rowScanner) (*domain.FoundItem, error) {
	item := &domain.FoundItem{}
	var status string
	if err := row.Scan(&item.ID, &item.CreatedBy, &item.CategoryID, &item.CampusID, &item.Description,
		&item.FoundDate, &item.FoundLocation, &status, &item.ImageURL, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.Status = domain.FoundItemStatus(status)
	return item, nil
}
