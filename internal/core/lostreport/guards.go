// Package lostreport contains the ownership rules for student lost reports.
package lostreport

import (
	"github.com/vbonduro/lostfound/internal/core/guard"
	"github.com/vbonduro/lostfound/internal/domain"
)

// CanModify evaluates whether a student may edit or delete a report.
// Rules:
// - Report must exist and belong to the student (otherwise it is reported as absent)
// - Report must have no claims
func CanModify(report *domain.LostReport, reportID, studentID int64, claimCount int) guard.Result {
	if report == nil || report.StudentID != studentID {
		return guard.Deny(domain.ErrNotFound, "lost report %d not found", reportID)
	}
	if claimCount > 0 {
		return guard.Deny(domain.ErrConflict, "lost report %d already has %d claim(s)", reportID, claimCount)
	}
	return guard.Allow()
}
