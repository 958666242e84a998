package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/vbonduro/lostfound/internal/auth"
	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imagestore"
	"github.com/vbonduro/lostfound/internal/service"
)

// Services are the workflow entry points the handlers call.
type Services struct {
	Cases         *service.CaseService
	Claims        *service.ClaimService
	Verifications *service.VerificationService
	Receipts      *service.ReceiptService
	FoundItems    *service.FoundItemService
	LostReports   *service.LostReportService
	Notifications *service.NotificationService
	Users         *service.UserService
}

// imageOpener serves images kept on local disk.
type imageOpener interface {
	Open(ctx context.Context, publicID string) (io.ReadCloser, string, error)
}

type Options struct {
	Validator     *auth.Validator
	Images        imagestore.ImageStore
	MaxImageBytes int64
	// LocalImages, when set, is mounted at /images/.
	LocalImages imageOpener
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
}

type Server struct {
	svc    Services
	opts   Options
	router chi.Router
	logger *slog.Logger
}

func NewServer(svc Services, opts Options, logger *slog.Logger) *Server {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = imagestore.DefaultMaxBytes
	}
	s := &Server{svc: svc, opts: opts, router: chi.NewRouter(), logger: logger}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	if s.opts.LocalImages != nil {
		r.Get("/images/{name}", s.handleGetImage)
	}

	staff := auth.RequireRole(s.writeError, domain.RoleStaff)
	student := auth.RequireRole(s.writeError, domain.RoleStudent)
	officer := auth.RequireRole(s.writeError, domain.RoleSecurityOfficer)
	privileged := auth.RequireRole(s.writeError, domain.RoleStaff, domain.RoleSecurityOfficer)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(s.opts.Validator, s.writeError))

		r.Get("/me", s.handleMe)

		r.Route("/found-items", func(r chi.Router) {
			r.Get("/", s.handleListFoundItems)
			r.Get("/{id}", s.handleGetFoundItem)
			r.With(staff).Post("/", s.handleRegisterFoundItem)
			r.With(staff).Put("/{id}", s.handleUpdateFoundItem)
		})

		r.Route("/lost-reports", func(r chi.Router) {
			r.With(student).Post("/", s.handleCreateLostReport)
			r.With(student).Get("/mine", s.handleListMyLostReports)
			r.With(privileged).Get("/", s.handleListLostReports)
			r.Get("/{id}", s.handleGetLostReport)
			r.With(student).Put("/{id}", s.handleUpdateLostReport)
			r.With(student).Delete("/{id}", s.handleDeleteLostReport)
		})

		r.Route("/claims", func(r chi.Router) {
			r.With(student).Post("/", s.handleCreateClaim)
			r.With(staff).Post("/match", s.handleCreateClaimForStudent)
			r.With(student).Get("/mine", s.handleListMyClaims)
			r.With(privileged).Get("/", s.handleListClaims)
			r.Get("/{id}", s.handleGetClaim)
			r.With(student).Put("/{id}/evidence", s.handleUpdateEvidence)
			r.With(staff).Post("/{id}/approve", s.handleApproveClaim)
			r.With(staff).Post("/{id}/reject", s.handleRejectClaim)
		})

		r.Route("/cases", func(r chi.Router) {
			r.Use(privileged)
			r.Get("/", s.handleListCases)
			r.Get("/{id}", s.handleGetCase)
			r.With(staff).Put("/{id}/status", s.handleSetCaseStatus)
		})

		r.Route("/verification-requests", func(r chi.Router) {
			r.Use(privileged)
			r.With(staff).Post("/", s.handleCreateVerificationRequest)
			r.Get("/pending", s.handleListPendingRequests)
			r.Get("/{id}", s.handleGetVerificationRequest)
			r.With(officer).Post("/{id}/decisions", s.handleCreateDecision)
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Use(staff)
			r.Post("/", s.handleCreateReceipt)
			r.Get("/", s.handleListReceipts)
			r.Get("/{id}", s.handleGetReceipt)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.handleListNotifications)
			r.Get("/unread-count", s.handleUnreadCount)
			r.Put("/{id}/read", s.handleMarkNotificationRead)
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer wraps the router for ListenAndServe and graceful Shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type requestIDKey struct{}

// requestID tags every request with an id, reusing a well-formed inbound X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", requestIDFrom(r.Context()),
			)
		})
	}
}
