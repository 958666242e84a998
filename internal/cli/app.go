// Package cli holds the lostfound commands and the wiring they share.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/imagestore"
	"github.com/vbonduro/lostfound/internal/imagestore/local"
	"github.com/vbonduro/lostfound/internal/imagestore/s3store"
	"github.com/vbonduro/lostfound/internal/logging"
	"github.com/vbonduro/lostfound/internal/metrics"
	"github.com/vbonduro/lostfound/internal/notify"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/store"
	"github.com/vbonduro/lostfound/internal/web"
)

// app is the fully wired process: database, stores, workflows and the
// notification dispatcher.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	registry   *prometheus.Registry
	dispatcher *notify.Dispatcher
	services   web.Services
	cleanup    func()
}

// loadConfig reads the env file named by the root --env-file flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if f := cmd.Flag("env-file"); f != nil && f.Value.String() != "" {
		return config.Load(f.Value.String())
	}
	return config.Load()
}

func newApp(cfg *config.Config) (*app, error) {
	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		closeLog()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	tx := db.NewTxRunner(database)

	caseStore := store.NewCaseStore(database)
	claimStore := store.NewClaimStore(database)
	itemStore := store.NewFoundItemStore(database)
	reportStore := store.NewLostReportStore(database)
	verificationStore := store.NewVerificationStore(database)
	receiptStore := store.NewReceiptStore(database)
	userStore := store.NewUserStore(database)
	notificationStore := store.NewNotificationStore(database)

	dispatcher := notify.NewDispatcher(notificationStore, cfg.NotifyQueueSize, m, logger)
	cases := service.NewCaseService(caseStore, claimStore, itemStore, verificationStore, tx, m, logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         database,
		registry:   reg,
		dispatcher: dispatcher,
		services: web.Services{
			Cases:         cases,
			Claims:        service.NewClaimService(claimStore, caseStore, itemStore, reportStore, receiptStore, cases, tx, dispatcher, m, logger),
			Verifications: service.NewVerificationService(verificationStore, caseStore, claimStore, userStore, cases, tx, dispatcher, m, logger),
			Receipts:      service.NewReceiptService(receiptStore, caseStore, claimStore, cases, tx, m, logger),
			FoundItems:    service.NewFoundItemService(itemStore, cases, tx, logger),
			LostReports:   service.NewLostReportService(reportStore, tx, logger),
			Notifications: service.NewNotificationService(notificationStore),
			Users:         service.NewUserService(userStore, logger),
		},
		cleanup: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
			closeLog()
		},
	}, nil
}

func (a *app) Close() {
	a.cleanup()
}

// newImageStore builds the configured backend. The local backend is also
// returned as the opener the web server mounts at /images/.
func newImageStore(ctx context.Context, cfg *config.Config) (imagestore.ImageStore, *local.Store, error) {
	switch cfg.ImageBackend {
	case "s3":
		s, err := s3store.New(ctx, s3store.Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.AWSRegion,
			Endpoint: cfg.AWSEndpointURL,
			BaseURL:  cfg.ImageBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		s, err := local.New(cfg.ImageLocalPath, cfg.ImageBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}
