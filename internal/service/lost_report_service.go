package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/core/lostreport"
	"github.com/vbonduro/lostfound/internal/domain"
)

// LostReportInput carries the student-editable fields of a lost report.
type LostReportInput struct {
	CategoryID          *int64
	Description         string
	LostDate            *time.Time
	LostLocation        string
	ImageURL            string
	IdentifyingFeatures string
	ClaimPassword       string
}

type LostReportService struct {
	lostReports lostReportRepository
	tx          txRunner
	logger      *slog.Logger
}

func NewLostReportService(lostReportStore lostReportRepository, tx txRunner, logger *slog.Logger) *LostReportService {
	return &LostReportService{lostReports: lostReportStore, tx: tx, logger: logger}
}

func (s *LostReportService) Create(ctx context.Context, studentID int64, in LostReportInput) (*domain.LostReport, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	}

	r, err := s.lostReports.Create(ctx, &domain.LostReport{
		StudentID:           studentID,
		CategoryID:          in.CategoryID,
		Description:         strings.TrimSpace(in.Description),
		LostDate:            in.LostDate,
		LostLocation:        in.LostLocation,
		ImageURL:            in.ImageURL,
		IdentifyingFeatures: in.IdentifyingFeatures,
		ClaimPassword:       in.ClaimPassword,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lost report created", "lost_report_id", r.ID, "student_id", studentID)
	return r, nil
}

// ListMine returns the student's reports, hiding those retracted by an approved claim.
func (s *LostReportService) ListMine(ctx context.Context, studentID int64) ([]*domain.LostReport, error) {
	return s.lostReports.ListByStudent(ctx, studentID)
}

// ListAll returns every report not retracted by an approved claim.
func (s *LostReportService) ListAll(ctx context.Context, categoryID *int64) ([]*domain.LostReport, error) {
	return s.lostReports.List(ctx, categoryID)
}

// Get returns the report. A non-nil studentID restricts it to the owner.
func (s *LostReportService) Get(ctx context.Context, id int64, studentID *int64) (*domain.LostReport, error) {
	r, err := s.lostReports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || (studentID != nil && r.StudentID != *studentID) {
		return nil, fmt.Errorf("%w: lost report %d", domain.ErrNotFound, id)
	}
	return r, nil
}

// Update edits the owner's report while it has no claims. The image is
// replaced only when a new one is supplied.
func (s *LostReportService) Update(ctx context.Context, id, studentID int64, in LostReportInput) (*domain.LostReport, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidArgument)
	}

	var r *domain.LostReport
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.checkModifiable(ctx, id, studentID)
		if err != nil {
			return err
		}

		r.CategoryID = in.CategoryID
		r.Description = strings.TrimSpace(in.Description)
		r.LostDate = in.LostDate
		r.LostLocation = in.LostLocation
		r.IdentifyingFeatures = in.IdentifyingFeatures
		r.ClaimPassword = in.ClaimPassword
		if in.ImageURL != "" {
			r.ImageURL = in.ImageURL
		}
		if err := s.lostReports.Update(ctx, r); err != nil {
			return err
		}

		r, err = s.lostReports.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lost report updated", "lost_report_id", id, "student_id", studentID)
	return r, nil
}

// Delete removes the owner's report while it has no claims.
func (s *LostReportService) Delete(ctx context.Context, id, studentID int64) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.checkModifiable(ctx, id, studentID); err != nil {
			return err
		}
		return s.lostReports.Delete(ctx, id, studentID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("lost report deleted", "lost_report_id", id, "student_id", studentID)
	return nil
}

func (s *LostReportService) checkModifiable(ctx context.Context, id, studentID int64) (*domain.LostReport, error) {
	r, err := s.lostReports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var claims int
	if r != nil && r.StudentID == studentID {
		claims, err = s.lostReports.CountClaims(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if g := lostreport.CanModify(r, id, studentID, claims); !g.Allowed {
		return nil, g.Error()
	}
	return r, nil
}
