package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	accountoutadapter "firedesk/internal/modules/account/adapter/out"
	accountout "firedesk/internal/modules/account/port/out"
	notesoutadapter "firedesk/internal/modules/notes/adapter/out"
	notesout "firedesk/internal/modules/notes/port/out"
	"firedesk/internal/platform/analytics"
	"firedesk/internal/platform/clock"
	"firedesk/internal/platform/config"
	"firedesk/internal/platform/connectivity"
	apperrors "firedesk/internal/platform/errors"
	"firedesk/internal/platform/id"
)

// Services is the process-wide set of backend handles. Build it once with
// NewServices and pass it down; it is not modified afterwards.
type Services struct {
	Config    config.Record
	App       *firebase.App
	Auth      accountout.IdentityProvider
	DB        *notesoutadapter.QueuedStore
	Analytics *analytics.Client
	Monitor   *connectivity.Monitor
	Prober    *connectivity.Prober

	queueReady chan struct{}
	closers    []func() error
}

// NewServices never fails. A handle that cannot be built is logged and
// replaced by one that reports the construction error on every call.
func NewServices(ctx context.Context, cfg config.Record, settings config.Settings, logger *slog.Logger, opts ...option.ClientOption) *Services {
	s := &Services{Config: cfg, queueReady: make(chan struct{})}

	if v := cfg.Validate(); !v.Valid {
		logger.Warn("firebase config incomplete", "missing", v.Missing)
	}

	s.Prober = connectivity.NewProber(settings.ProbeTarget, settings.ProbeInterval, settings.ProbeTimeout, logger)
	s.Monitor = connectivity.NewMonitor(s.Prober.Check(ctx))

	appOpts := append([]option.ClientOption{}, opts...)
	if settings.CredentialsFile != "" {
		appOpts = append(appOpts, option.WithCredentialsFile(settings.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		DatabaseURL:   cfg.DatabaseURL,
		StorageBucket: cfg.StorageBucket,
	}, appOpts...)
	if err != nil {
		logger.Warn("firebase app unavailable", "error", err)
	}
	s.App = app

	auth, err := accountoutadapter.NewIdentityToolkitProvider(ctx, cfg.APIKey)
	if err != nil {
		logger.Warn("auth handle unavailable", "error", err)
		auth = accountoutadapter.NewUnavailableProvider(fmt.Errorf("auth unavailable: %w", err))
	}
	s.Auth = auth

	var remote notesout.DocumentStore
	if store, err := newFirestoreStore(ctx, app); err != nil {
		logger.Warn("firestore handle unavailable", "error", err)
		remote = notesoutadapter.NewUnavailableStore(fmt.Errorf("firestore: %w", err))
	} else {
		remote = store
		s.closers = append(s.closers, store.Close)
	}
	s.DB = notesoutadapter.NewQueuedStore(remote, s.Monitor, clock.SystemClock{}, logger, settings.LockPath(),
		func() (notesout.WriteQueue, error) {
			return notesoutadapter.NewSQLiteWriteQueue(settings.QueuePath())
		})
	s.closers = append(s.closers, s.DB.Close)

	s.Analytics = analytics.New(cfg.MeasurementID, settings.AnalyticsSecret, id.UUID{}.New(), logger)
	if !s.Analytics.Enabled() {
		logger.Debug("analytics disabled", "measurement_id_set", cfg.MeasurementID != "")
	}

	go func() {
		defer close(s.queueReady)
		logQueueOutcome(logger, s.DB.EnableOfflineQueue(context.WithoutCancel(ctx)))
	}()
	return s
}

func newFirestoreStore(ctx context.Context, app *firebase.App) (*notesoutadapter.FirestoreStore, error) {
	if app == nil {
		return nil, errors.New("no firebase app")
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, err
	}
	return notesoutadapter.NewFirestoreStore(client), nil
}

type queueOutcome string

const (
	queueEnabled     queueOutcome = "enabled"
	queueLocked      queueOutcome = "locked"
	queueUnsupported queueOutcome = "unsupported"
	queueFailed      queueOutcome = "failed"
)

func classifyQueueError(err error) queueOutcome {
	switch {
	case err == nil:
		return queueEnabled
	case errors.Is(err, apperrors.ErrQueueLocked):
		return queueLocked
	case errors.Is(err, apperrors.ErrQueueUnsupported):
		return queueUnsupported
	default:
		return queueFailed
	}
}

func logQueueOutcome(logger *slog.Logger, err error) {
	switch classifyQueueError(err) {
	case queueEnabled:
		logger.Info("offline write queue enabled")
	case queueLocked:
		logger.Warn("offline write queue owned by another firedesk process; writes will not be queued here", "error", err)
	case queueUnsupported:
		logger.Warn("offline write queue not supported on this host", "error", err)
	default:
		logger.Warn("offline write queue could not be enabled", "error", err)
	}
}

// QueueReady is closed once offline queue enablement has finished, whatever
// its outcome.
func (s *Services) QueueReady() <-chan struct{} {
	return s.queueReady
}

func (s *Services) Close() error {
	<-s.queueReady
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
