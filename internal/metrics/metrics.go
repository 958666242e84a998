package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case-resolution workflow.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ClaimsCreated        *prometheus.CounterVec
	ClaimResolutions     *prometheus.CounterVec
	VerificationRequests prometheus.Counter
	VerificationDecision *prometheus.CounterVec
	ReceiptsIssued       prometheus.Counter
	Notifications        *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
}

// New registers every workflow metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClaimsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_claims_created_total",
			Help: "Total number of claims created, by source (student or staff_match)",
		}, []string{"source"}),
		ClaimResolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_claim_resolutions_total",
			Help: "Total number of claim resolutions, by path (staff or officer) and outcome",
		}, []string{"path", "outcome"}),
		VerificationRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_verification_requests_total",
			Help: "Total number of security verification requests opened",
		}),
		VerificationDecision: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_verification_decisions_total",
			Help: "Total number of officer decisions, by decision",
		}, []string{"decision"}),
		ReceiptsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_receipts_issued_total",
			Help: "Total number of return receipts issued",
		}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_notifications_total",
			Help: "Notifications by result (dispatched, dropped, failed)",
		}, []string{"result"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lostfound_operation_duration_seconds",
			Help:    "Duration of workflow operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncClaimCreated(source string) {
	if m == nil {
		return
	}
	m.ClaimsCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) IncClaimResolution(path, outcome string) {
	if m == nil {
		return
	}
	m.ClaimResolutions.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) IncVerificationRequest() {
	if m == nil {
		return
	}
	m.VerificationRequests.Inc()
}

func (m *Metrics) IncVerificationDecision(decision string) {
	if m == nil {
		return
	}
	m.VerificationDecision.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncReceiptIssued() {
	if m == nil {
		return
	}
	m.ReceiptsIssued.Inc()
}

// IncNotification records a notification result: dispatched, dropped or failed.
func (m *Metrics) IncNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// ObserveOperation records the duration of a workflow operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
