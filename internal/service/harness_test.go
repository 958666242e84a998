package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/metrics"
	"github.com/vbonduro/lostfound/internal/store"
)

// mockNotifier records every notification handed to the sink.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// sent returns the notifications of the given type, in send order.
func (m *mockNotifier) sent(typ domain.NotificationType) []*domain.Notification {
	var out []*domain.Notification
	for _, c := range m.Calls {
		if n := c.Arguments.Get(1).(*domain.Notification); n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type harness struct {
	ctx context.Context
	db  *sql.DB

	cases         *CaseService
	claims        *ClaimService
	verifications *VerificationService
	receipts      *ReceiptService
	foundItems    *FoundItemService
	lostReports   *LostReportService
	notifications *NotificationService
	users         *UserService
	notifier      *mockNotifier

	claimStore *store.ClaimStore
	caseStore  *store.CaseStore
	itemStore  *store.FoundItemStore

	staff, officer, s1, s2 *domain.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	tx := db.NewTxRunner(d)

	notifier := &mockNotifier{}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	caseStore := store.NewCaseStore(d)
	claimStore := store.NewClaimStore(d)
	itemStore := store.NewFoundItemStore(d)
	reportStore := store.NewLostReportStore(d)
	verificationStore := store.NewVerificationStore(d)
	receiptStore := store.NewReceiptStore(d)
	userStore := store.NewUserStore(d)

	caseSvc := NewCaseService(caseStore, claimStore, itemStore, verificationStore, tx, m, logger)

	h := &harness{
		ctx:           context.Background(),
		db:            d,
		cases:         caseSvc,
		claims:        NewClaimService(claimStore, caseStore, itemStore, reportStore, receiptStore, caseSvc, tx, notifier, m, logger),
		verifications: NewVerificationService(verificationStore, caseStore, claimStore, userStore, caseSvc, tx, notifier, m, logger),
		receipts:      NewReceiptService(receiptStore, caseStore, claimStore, caseSvc, tx, m, logger),
		foundItems:    NewFoundItemService(itemStore, caseSvc, tx, logger),
		lostReports:   NewLostReportService(reportStore, tx, logger),
		notifications: NewNotificationService(store.NewNotificationStore(d)),
		users:         NewUserService(userStore, logger),
		notifier:      notifier,
		claimStore:    claimStore,
		caseStore:     caseStore,
		itemStore:     itemStore,
	}

	h.staff = h.user(t, "staff@example.edu", domain.RoleStaff)
	h.officer = h.user(t, "officer@example.edu", domain.RoleSecurityOfficer)
	h.s1 = h.user(t, "s1@example.edu", domain.RoleStudent)
	h.s2 = h.user(t, "s2@example.edu", domain.RoleStudent)
	return h
}

func (h *harness) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := h.users.CreateUser(h.ctx, "Test User", email, string(role), 1)
	require.NoError(t, err)
	return u
}

func (h *harness) registerItem(t *testing.T) (*domain.FoundItem, *domain.Case) {
	t.Helper()
	item, c, err := h.foundItems.Register(h.ctx, h.staff.ID, FoundItemInput{CampusID: 1, Description: "black backpack"})
	require.NoError(t, err)
	return item, c
}

func (h *harness) claim(t *testing.T, student *domain.User, itemID int64) *domain.Claim {
	t.Helper()
	cl, err := h.claims.CreateClaim(h.ctx, student.ID, itemID, nil, "")
	require.NoError(t, err)
	return cl
}

func (h *harness) getCase(t *testing.T, id int64) *domain.Case {
	t.Helper()
	c, err := h.caseStore.GetByID(h.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func (h *harness) getClaim(t *testing.T, id int64) *domain.Claim {
	t.Helper()
	c, err := h.claimStore.GetByID(h.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func (h *harness) getItem(t *testing.T, id int64) *domain.FoundItem {
	t.Helper()
	item, err := h.itemStore.GetByID(h.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

// assertWorkflowInvariants checks the cross-entity rules that must hold after
// every successful operation.
func (h *harness) assertWorkflowInvariants(t *testing.T) {
	t.Helper()

	mismatches, err := h.caseStore.ListClaimCountMismatches(h.ctx)
	require.NoError(t, err)
	assert.Empty(t, mismatches, "claim counters drifted")

	all, err := h.caseStore.List(h.ctx, nil, nil)
	require.NoError(t, err)
	for _, c := range all {
		claims, err := h.claimStore.ListByCase(h.ctx, c.ID)
		require.NoError(t, err)

		approved := 0
		for _, cl := range claims {
			if cl.Status == domain.ClaimApproved {
				approved++
			}
		}
		assert.LessOrEqual(t, approved, 1, "case %d has more than one approved claim", c.ID)

		if c.Status == domain.CaseCompleted {
			assert.NotNil(t, c.SuccessfulClaimID, "completed case %d has no winner", c.ID)
		}
		if c.Status.Closed() {
			assert.NotNil(t, c.ClosedAt, "closed case %d has no closedAt", c.ID)
		}

		item := h.getItem(t, c.FoundItemID)
		if item.Status == domain.FoundItemReturned {
			assert.Equal(t, 1, approved, "returned item %d has no approved claim", item.ID)
		}
	}
}
