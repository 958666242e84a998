package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/core/founditem"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

// caseOpener opens the case of a newly registered found item.
type caseOpener interface {
	OpenCaseForFoundItem(ctx context.Context, foundItemID, campusID int64) (*domain.Case, error)
}

// FoundItemInput carries the staff-editable fields of a found item.
type FoundItemInput struct {
	CategoryID    *int64
	CampusID      int64
	Description   string
	FoundDate     *time.Time
	FoundLocation string
	ImageURL      string
}

func (in FoundItemInput) validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	}
	return nil
}

type FoundItemService struct {
	foundItems foundItemRepository
	cases      caseOpener
	tx         txRunner
	logger     *slog.Logger
}

func NewFoundItemService(foundItemStore foundItemRepository, cases caseOpener, tx txRunner, logger *slog.Logger) *FoundItemService {
	return &FoundItemService{foundItems: foundItemStore, cases: cases, tx: tx, logger: logger}
}

// Register stores the item as STORED and opens its case in the same transaction.
func (s *FoundItemService) Register(ctx context.Context, createdBy int64, in FoundItemInput) (*domain.FoundItem, *domain.Case, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	var item *domain.FoundItem
	var c *domain.Case
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.foundItems.Create(ctx, &domain.FoundItem{
			CreatedBy:     createdBy,
			CategoryID:    in.CategoryID,
			CampusID:      in.CampusID,
			Description:   strings.TrimSpace(in.Description),
			FoundDate:     in.FoundDate,
			FoundLocation: in.FoundLocation,
			ImageURL:      in.ImageURL,
		})
		if err != nil {
			return err
		}

		c, err = s.cases.OpenCaseForFoundItem(ctx, item.ID, item.CampusID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("found item registered", "found_item_id", item.ID, "case_id", c.ID, "campus_id", item.CampusID)
	return item, c, nil
}

func (s *FoundItemService) List(ctx context.Context, f store.FoundItemFilter) ([]*domain.FoundItem, error) {
	return s.foundItems.List(ctx, f)
}

func (s *FoundItemService) Get(ctx context.Context, id int64) (*domain.FoundItem, error) {
	item, err := s.foundItems.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: found item %d", domain.ErrNotFound, id)
	}
	return item, nil
}

// Update edits a STORED item. The image is replaced only when a new one is supplied.
func (s *FoundItemService) Update(ctx context.Context, id int64, in FoundItemInput) (*domain.FoundItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item *domain.FoundItem
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.foundItems.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if g := founditem.CanUpdate(item, id); !g.Allowed {
			return g.Error()
		}

		item.CategoryID = in.CategoryID
		item.Description = strings.TrimSpace(in.Description)
		item.FoundDate = in.FoundDate
		item.FoundLocation = in.FoundLocation
		if in.ImageURL != "" {
			item.ImageURL = in.ImageURL
		}
		if err := s.foundItems.Update(ctx, item); err != nil {
			return err
		}

		item, err = s.foundItems.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("found item updated", "found_item_id", id)
	return item, nil
}
