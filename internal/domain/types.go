package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleStudent         Role = "Student"
	RoleStaff           Role = "Staff"
	RoleSecurityOfficer Role = "SecurityOfficer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStudent, RoleStaff, RoleSecurityOfficer:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
}

// Privileged reports whether the role may see sensitive lost-report fields.
func (r Role) Privileged() bool {
	return r == RoleStaff || r == RoleSecurityOfficer
}

type FoundItemStatus string

const (
	FoundItemStored   FoundItemStatus = "STORED"
	FoundItemReturned FoundItemStatus = "RETURNED"
)

type CaseStatus string

const (
	CaseOpen       CaseStatus = "OPEN"
	CaseInProgress CaseStatus = "IN_PROGRESS"
	CaseCompleted  CaseStatus = "COMPLETED"
	CaseFailed     CaseStatus = "FAILED"
)

// ParseCaseStatus validates s against the four case states.
func ParseCaseStatus(s string) (CaseStatus, error) {
	switch st := CaseStatus(s); st {
	case CaseOpen, CaseInProgress, CaseCompleted, CaseFailed:
		return st, nil
	}
	return "", fmt.Errorf("%w: status must be one of OPEN, IN_PROGRESS, COMPLETED, FAILED (got %q)", ErrInvalidArgument, s)
}

// Closed reports whether the status is terminal and carries a closedAt stamp.
func (s CaseStatus) Closed() bool {
	return s == CaseCompleted || s == CaseFailed
}

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "PENDING"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimRejected ClaimStatus = "REJECTED"
)

func ParseClaimStatus(s string) (ClaimStatus, error) {
	switch st := ClaimStatus(s); st {
	case ClaimPending, ClaimApproved, ClaimRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown claim status %q", ErrInvalidArgument, s)
}

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApproved, DecisionRejected:
		return d, nil
	}
	return "", fmt.Errorf("%w: decision must be APPROVED or REJECTED (got %q)", ErrInvalidArgument, s)
}

type NotificationType string

const (
	NotifyClaimCreated         NotificationType = "CLAIM_CREATED"
	NotifyClaimMatched         NotificationType = "CLAIM_MATCHED"
	NotifyClaimApproved        NotificationType = "CLAIM_APPROVED"
	NotifyClaimRejected        NotificationType = "CLAIM_REJECTED"
	NotifyVerificationRequest  NotificationType = "SECURITY_VERIFICATION_REQUEST"
	NotifyVerificationDecision NotificationType = "SECURITY_VERIFICATION_DECISION"
)

// Related entity kinds attached to notifications.
const (
	RelatedClaim               = "CLAIM"
	RelatedVerificationRequest = "SECURITY_VERIFICATION_REQUEST"
)

type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CampusID  int64     `json:"campusId"`
	CreatedAt time.Time `json:"createdAt"`
}

type FoundItem struct {
	ID            int64           `json:"id"`
	CreatedBy     int64           `json:"createdBy"`
	CategoryID    *int64          `json:"categoryId,omitempty"`
	CampusID      int64           `json:"campusId"`
	Description   string          `json:"description"`
	FoundDate     *time.Time      `json:"foundDate,omitempty"`
	FoundLocation string          `json:"foundLocation,omitempty"`
	Status        FoundItemStatus `json:"status"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// LostReport is the stored record. Sensitive fields never serialize directly;
// callers render it through PublicLostReport or PrivilegedLostReport.
type LostReport struct {
	ID                  int64
	StudentID           int64
	CategoryID          *int64
	Description         string
	LostDate            *time.Time
	LostLocation        string
	ImageURL            string
	IdentifyingFeatures string
	ClaimPassword       string
	HasClaims           bool
	CreatedAt           time.Time
}

type Case struct {
	ID                int64      `json:"id"`
	FoundItemID       int64      `json:"foundItemId"`
	CampusID          int64      `json:"campusId"`
	Status            CaseStatus `json:"status"`
	TotalClaims       int        `json:"totalClaims"`
	SuccessfulClaimID *int64     `json:"successfulClaimId,omitempty"`
	OpenedAt          time.Time  `json:"openedAt"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
}

type Claim struct {
	ID               int64       `json:"id"`
	StudentID        int64       `json:"studentId"`
	FoundItemID      int64       `json:"foundItemId"`
	LostReportID     *int64      `json:"lostReportId,omitempty"`
	CaseID           *int64      `json:"caseId,omitempty"`
	Status           ClaimStatus `json:"status"`
	EvidenceImageURL string      `json:"evidenceImageUrl,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
}

type VerificationRequest struct {
	ID          int64                   `json:"id"`
	CaseID      int64                   `json:"caseId"`
	RequestedBy int64                   `json:"requestedBy"`
	CreatedAt   time.Time               `json:"createdAt"`
	Decisions   []*VerificationDecision `json:"decisions"`
}

// Pending reports whether no officer has decided on the request yet.
func (r *VerificationRequest) Pending() bool {
	return len(r.Decisions) == 0
}

type VerificationDecision struct {
	ID                int64     `json:"id"`
	RequestID         int64     `json:"requestId"`
	ClaimID           int64     `json:"claimId"`
	SecurityOfficerID int64     `json:"securityOfficerId"`
	Decision          Decision  `json:"decision"`
	Note              string    `json:"note,omitempty"`
	EvidenceImageURL  string    `json:"evidenceImageUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ReturnReceipt struct {
	ID              int64     `json:"id"`
	CaseID          int64     `json:"caseId"`
	ClaimID         int64     `json:"claimId"`
	StaffID         int64     `json:"staffId"`
	ReceiptImageURL string    `json:"receiptImageUrl,omitempty"`
	ReturnedAt      time.Time `json:"returnedAt"`
}

type Notification struct {
	ID                int64            `json:"id"`
	UserID            int64            `json:"userId"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	Type              NotificationType `json:"type"`
	RelatedEntityID   *int64           `json:"relatedEntityId,omitempty"`
	RelatedEntityType string           `json:"relatedEntityType,omitempty"`
	IsRead            bool             `json:"isRead"`
	CreatedAt         time.Time        `json:"createdAt"`
}
