package domain

import "time"

// LostReportView is the serialized form of a lost report. The two sensitive
// fields are only populated by PrivilegedLostReport.
type LostReportView struct {
	ID                  int64      `json:"id"`
	StudentID           int64      `json:"studentId"`
	CategoryID          *int64     `json:"categoryId,omitempty"`
	Description         string     `json:"description"`
	LostDate            *time.Time `json:"lostDate,omitempty"`
	LostLocation        string     `json:"lostLocation,omitempty"`
	ImageURL            string     `json:"imageUrl,omitempty"`
	HasClaims           bool       `json:"hasClaims"`
	CreatedAt           time.Time  `json:"createdAt"`
	IdentifyingFeatures string     `json:"identifyingFeatures,omitempty"`
	ClaimPassword       string     `json:"claimPassword,omitempty"`
}

// PublicLostReport is what students see, including the owner.
func PublicLostReport(r *LostReport) *LostReportView {
	return &LostReportView{
		ID:           r.ID,
		StudentID:    r.StudentID,
		CategoryID:   r.CategoryID,
		Description:  r.Description,
		LostDate:     r.LostDate,
		LostLocation: r.LostLocation,
		ImageURL:     r.ImageURL,
		HasClaims:    r.HasClaims,
		CreatedAt:    r.CreatedAt,
	}
}

// PrivilegedLostReport is what staff and security officers see.
func PrivilegedLostReport(r *LostReport) *LostReportView {
	v := PublicLostReport(r)
	v.IdentifyingFeatures = r.IdentifyingFeatures
	v.ClaimPassword = r.ClaimPassword
	return v
}

// LostReportViewFor picks the projection for the caller's role.
func LostReportViewFor(role Role, r *LostReport) *LostReportView {
	if role.Privileged() {
		return PrivilegedLostReport(r)
	}
	return PublicLostReport(r)
}

// CaseDetail bundles a case with its claims and verification requests.
type CaseDetail struct {
	*Case
	Claims               []*Claim               `json:"claims"`
	VerificationRequests []*VerificationRequest `json:"verificationRequests"`
}

// VerificationDetail bundles a request with the claims competing in its case.
type VerificationDetail struct {
	*VerificationRequest
	CaseStatus CaseStatus `json:"caseStatus"`
	Claims     []*Claim   `json:"caseClaims"`
}

// ClaimCountMismatch describes a case whose counter disagrees with its rows.
type ClaimCountMismatch struct {
	CaseID      int64 `json:"caseId"`
	TotalClaims int   `json:"totalClaims"`
	ActualRows  int   `json:"actualRows"`
}
