package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"firedesk/internal/modules/account/domain"
	"firedesk/internal/modules/account/dto"
	accountin "firedesk/internal/modules/account/port/in"
	accountout "firedesk/internal/modules/account/port/out"
	"firedesk/internal/modules/account/service"
	apperrors "firedesk/internal/platform/errors"
)

// Interactor owns the process-local view of the session. The provider only
// issues identities; persistence and change notification happen here.
type Interactor struct {
	svc    *service.AccountService
	store  accountout.SessionStore
	events accountout.EventSink
	logger *slog.Logger

	// notifyMu orders deliveries so observers see sessions in publish order.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	current   domain.Session
	nextID    int
	observers map[int]func(dto.SessionOutput)
}

const trackTimeout = 5 * time.Second

func NewInteractor(svc *service.AccountService, store accountout.SessionStore, events accountout.EventSink, logger *slog.Logger) accountin.Usecase {
	return &Interactor{
		svc:       svc,
		store:     store,
		events:    events,
		logger:    logger,
		observers: map[int]func(dto.SessionOutput){},
	}
}

// Restore loads a previously persisted session, if any.
func (i *Interactor) Restore(ctx context.Context) error {
	if i.store == nil {
		return nil
	}
	session, err := i.store.Load(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotSignedIn) {
			return nil
		}
		return err
	}
	i.publish(session)
	return nil
}

func (i *Interactor) CreateAccount(ctx context.Context, input dto.CredentialsInput) (dto.SessionOutput, error) {
	session, err := i.svc.SignUp(ctx, domain.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.adopt(ctx, session); err != nil {
		return dto.SessionOutput{}, err
	}
	i.track(ctx, "sign_up", session.UID)
	return toOutput(session), nil
}

func (i *Interactor) SignIn(ctx context.Context, input dto.CredentialsInput) (dto.SessionOutput, error) {
	session, err := i.svc.SignIn(ctx, domain.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		return dto.SessionOutput{}, err
	}
	if err := i.adopt(ctx, session); err != nil {
		return dto.SessionOutput{}, err
	}
	i.track(ctx, "login", session.UID)
	return toOutput(session), nil
}

func (i *Interactor) SignOut(ctx context.Context) error {
	if i.store != nil {
		if err := i.store.Clear(ctx); err != nil {
			return err
		}
	}
	i.publish(domain.Session{})
	return nil
}

func (i *Interactor) Current(_ context.Context) (dto.SessionOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return toOutput(i.current), nil
}

func (i *Interactor) Subscribe(fn func(dto.SessionOutput)) func() {
	i.notifyMu.Lock()
	i.mu.Lock()
	id := i.nextID
	i.nextID++
	i.observers[id] = fn
	snapshot := toOutput(i.current)
	i.mu.Unlock()
	fn(snapshot)
	i.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			i.mu.Lock()
			delete(i.observers, id)
			i.mu.Unlock()
		})
	}
}

func (i *Interactor) adopt(ctx context.Context, session domain.Session) error {
	if i.store != nil {
		if err := i.store.Save(ctx, session); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	i.publish(session)
	return nil
}

// publish swaps the current session and notifies observers outside the
// state lock. Observers must not publish from inside the callback.
func (i *Interactor) publish(session domain.Session) {
	i.notifyMu.Lock()
	defer i.notifyMu.Unlock()

	i.mu.Lock()
	i.current = session
	fns := make([]func(dto.SessionOutput), 0, len(i.observers))
	for _, fn := range i.observers {
		fns = append(fns, fn)
	}
	i.mu.Unlock()

	out := toOutput(session)
	for _, fn := range fns {
		fn(out)
	}
}

// track sends the event in the background so a slow analytics endpoint
// never delays the account operation.
func (i *Interactor) track(ctx context.Context, name, uid string) {
	if i.events == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, trackTimeout)
		defer cancel()
		if err := i.events.Track(ctx, name, uid, map[string]any{"method": "password"}); err != nil && i.logger != nil {
			i.logger.Warn("analytics event not sent", "event", name, "error", err)
		}
	}()
}

func toOutput(s domain.Session) dto.SessionOutput {
	return dto.SessionOutput{SignedIn: s.SignedIn(), UID: s.UID, Email: s.Email, ExpiresAt: s.ExpiresAt}
}
