package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

// txRunner runs a unit of work in a single transaction.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ txRunner = (*db.TxRunner)(nil)

// Notifier is the notification sink. Errors are logged and never returned to
// the caller of a workflow operation.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// foundItemRepository is the subset of store.FoundItemStore the services require.
type foundItemRepository interface {
	Create(ctx context.Context, item *domain.FoundItem) (*domain.FoundItem, error)
	GetByID(ctx context.Context, id int64) (*domain.FoundItem, error)
	List(ctx context.Context, f store.FoundItemFilter) ([]*domain.FoundItem, error)
	Update(ctx context.Context, item *domain.FoundItem) error
	MarkReturned(ctx context.Context, id int64) error
}

// lostReportRepository is the subset of store.LostReportStore the services require.
type lostReportRepository interface {
	Create(ctx context.Context, r *domain.LostReport) (*domain.LostReport, error)
	GetByID(ctx context.Context, id int64) (*domain.LostReport, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*domain.LostReport, error)
	List(ctx context.Context, categoryID *int64) ([]*domain.LostReport, error)
	CountClaims(ctx context.Context, id int64) (int, error)
	Update(ctx context.Context, r *domain.LostReport) error
	Delete(ctx context.Context, id, studentID int64) error
}

// caseRepository is the subset of store.CaseStore the services require.
type caseRepository interface {
	CreateIfAbsent(ctx context.Context, foundItemID, campusID int64, openedAt time.Time) (*domain.Case, error)
	GetByID(ctx context.Context, id int64) (*domain.Case, error)
	GetByFoundItemID(ctx context.Context, foundItemID int64) (*domain.Case, error)
	List(ctx context.Context, campusID *int64, status *domain.CaseStatus) ([]*domain.Case, error)
	IncrementClaimCount(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status domain.CaseStatus, closedAt *time.Time) error
	SetWinner(ctx context.Context, id, claimID int64) error
	ListClaimCountMismatches(ctx context.Context) ([]*domain.ClaimCountMismatch, error)
	RecountClaims(ctx context.Context, id int64) error
}

// claimRepository is the subset of store.ClaimStore the services require.
type claimRepository interface {
	Create(ctx context.Context, studentID, foundItemID int64, lostReportID, caseID *int64, evidenceURL string) (*domain.Claim, error)
	GetByID(ctx context.Context, id int64) (*domain.Claim, error)
	ExistsForStudentItem(ctx context.Context, studentID, foundItemID int64) (bool, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*domain.Claim, error)
	ListByCase(ctx context.Context, caseID int64) ([]*domain.Claim, error)
	List(ctx context.Context, f store.ClaimFilter) ([]*domain.Claim, error)
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.ClaimStatus) (bool, error)
	RejectPendingSiblings(ctx context.Context, caseID, keepID int64) ([]*domain.Claim, error)
	UpdateEvidence(ctx context.Context, id, studentID int64, url string) (bool, error)
}

// verificationRepository is the subset of store.VerificationStore the services require.
type verificationRepository interface {
	CreateRequest(ctx context.Context, caseID, requestedBy int64) (*domain.VerificationRequest, error)
	GetRequest(ctx context.Context, id int64) (*domain.VerificationRequest, error)
	ListPending(ctx context.Context) ([]*domain.VerificationRequest, error)
	ListByCase(ctx context.Context, caseID int64) ([]*domain.VerificationRequest, error)
	CreateDecision(ctx context.Context, d *domain.VerificationDecision) (*domain.VerificationDecision, error)
}

// receiptRepository is the subset of store.ReceiptStore the services require.
type receiptRepository interface {
	Create(ctx context.Context, caseID, claimID, staffID int64, imageURL string, returnedAt time.Time) (*domain.ReturnReceipt, error)
	GetByID(ctx context.Context, id int64) (*domain.ReturnReceipt, error)
	GetByClaimID(ctx context.Context, claimID int64) (*domain.ReturnReceipt, error)
	List(ctx context.Context) ([]*domain.ReturnReceipt, error)
}

// userRepository is the subset of store.UserStore the services require.
type userRepository interface {
	Create(ctx context.Context, fullName, email string, role domain.Role, campusID int64) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}

// outbox collects the notifications of one unit of work. They are sent only
// after the transaction commits, so a rolled-back operation notifies nobody.
type outbox struct {
	pending []*domain.Notification
}

func (o *outbox) add(userID int64, typ domain.NotificationType, title, message string, relatedID int64, relatedType string) {
	id := relatedID
	o.pending = append(o.pending, &domain.Notification{
		UserID:            userID,
		Title:             title,
		Message:           message,
		Type:              typ,
		RelatedEntityID:   &id,
		RelatedEntityType: relatedType,
	})
}

// flush hands every collected notification to n. Failures are logged at
// Warn and dropped.
func (o *outbox) flush(ctx context.Context, n Notifier, logger *slog.Logger) {
	if n == nil {
		return
	}
	for _, msg := range o.pending {
		if err := n.Notify(ctx, msg); err != nil {
			logger.Warn("notification not sent", "user_id", msg.UserID, "type", msg.Type, "error", err)
		}
	}
	o.pending = nil
}
