package lostreport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/lostfound/internal/domain"
)

func TestCanModify(t *testing.T) {
	owned := &domain.LostReport{ID: 4, StudentID: 10}

	tests := []struct {
		name     string
		report   *domain.LostReport
		student  int64
		claims   int
		wantKind error
	}{
		{name: "owner without claims", report: owned, student: 10},
		{name: "missing report", report: nil, student: 10, wantKind: domain.ErrNotFound},
		{name: "someone else's report", report: owned, student: 11, wantKind: domain.ErrNotFound},
		{name: "report with claims", report: owned, student: 10, claims: 1, wantKind: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanModify(tt.report, 4, tt.student, tt.claims)
			if tt.wantKind == nil {
				assert.True(t, result.Allowed, result.Reason)
				return
			}
			assert.False(t, result.Allowed)
			assert.ErrorIs(t, result.Error(), tt.wantKind)
		})
	}
}
