package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	accountinadapter "firedesk/internal/modules/account/adapter/in"
	accountoutadapter "firedesk/internal/modules/account/adapter/out"
	accountservice "firedesk/internal/modules/account/service"
	accountusecase "firedesk/internal/modules/account/usecase"
	notesinadapter "firedesk/internal/modules/notes/adapter/in"
	notesoutadapter "firedesk/internal/modules/notes/adapter/out"
	notesservice "firedesk/internal/modules/notes/service"
	notesusecase "firedesk/internal/modules/notes/usecase"
	"firedesk/internal/platform/clock"
	"firedesk/internal/platform/config"
	uiapp "firedesk/internal/ui/app"
)

type App struct {
	AccountCLI accountinadapter.CLIHandler
	NotesCLI   notesinadapter.CLIHandler

	services *Services
	logger   *slog.Logger
}

// New wires the modules over services and restores any saved session.
func New(ctx context.Context, services *Services, settings config.Settings, logger *slog.Logger) *App {
	clk := clock.SystemClock{}

	accountUC := accountusecase.NewInteractor(
		accountservice.NewAccountService(clk, services.Auth),
		accountoutadapter.NewFileSessionStore(settings.SessionPath()),
		services.Analytics,
		logger,
	)
	if err := accountUC.Restore(ctx); err != nil {
		logger.Warn("saved session could not be restored", "error", err)
	}

	notesUC := notesusecase.NewInteractor(
		notesservice.NewNotesService(services.DB),
		notesoutadapter.NewEmbeddedSampleSource(),
		services.DB,
		logger,
	)

	return &App{
		AccountCLI: accountinadapter.NewCLIHandler(accountUC),
		NotesCLI:   notesinadapter.NewCLIHandler(notesUC),
		services:   services,
		logger:     logger,
	}
}

func (a *App) Services() *Services { return a.services }

// RunTUI runs the console until the user quits or ctx ends. The
// connectivity prober runs alongside it.
func RunTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := uiapp.NewModel(app.AccountCLI, app.NotesCLI, app.services.Config, app.services.Monitor)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.services.Prober.Run(gctx, app.services.Monitor)
	})
	g.Go(func() error {
		defer cancel()
		final, err := program.Run()
		if m, ok := final.(uiapp.Model); ok {
			m.Close()
		} else {
			model.Close()
		}
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
