package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
)

const userColumns = `id, full_name, email, role, campus_id, created_at`

type UserStore struct {
	db *sql.DB
}

func NewUserStore(d *sql.DB) *UserStore {
	return &UserStore{db: d}
}

func (s *UserStore) Create(ctx context.Context, fullName, email string, role domain.Role, campusID int64) (*domain.User, error) {
	result, err := db.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (full_name, email, role, campus_id) VALUES (?, ?, ?, ?)
	`, fullName, email, string(role), campusID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: a user with email %q already exists", domain.ErrConflict, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(db.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	rows, err := db.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY id ASC
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeRows(rows)

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &role, &u.CampusID, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}
