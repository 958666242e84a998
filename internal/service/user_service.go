package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
)

type UserService struct {
	users  userRepository
	logger *slog.Logger
}

func NewUserService(userStore userRepository, logger *slog.Logger) *UserService {
	return &UserService{users: userStore, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, fullName, email, role string, campusID int64) (*domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidArgument)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrInvalidArgument, email)
	}

	u, err := s.users.Create(ctx, strings.TrimSpace(fullName), strings.ToLower(addr.Address), r, campusID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return u, nil
}

func (s *UserService) ListByRole(ctx context.Context, role string) ([]*domain.User, error) {
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return s.users.ListByRole(ctx, r)
}
