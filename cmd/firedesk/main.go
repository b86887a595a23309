package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"firedesk/internal/bootstrap"
	"firedesk/internal/platform/config"
	apperrors "firedesk/internal/platform/errors"
	"firedesk/internal/platform/logging"
	debugview "firedesk/internal/ui/views/debug"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	stateDir        string
	logLevel        string
	credentialsFile string
	probeTarget     string
	probeInterval   time.Duration
	analyticsSecret string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "firedesk",
		Short:         "Terminal debug console for a Firebase project",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.stateDir, "state-dir", config.EnvDefault("STATE_DIR", ""), "directory for session, queue and log files")
	flags.StringVar(&opts.logLevel, "log-level", config.EnvDefault("LOG_LEVEL", "info"), "debug|info|warn|error")
	flags.StringVar(&opts.credentialsFile, "credentials", config.EnvDefault("CREDENTIALS", ""), "service account JSON for Firestore")
	flags.StringVar(&opts.probeTarget, "probe-target", config.EnvDefault("PROBE_TARGET", config.DefaultProbeTarget), "host:port dialled to detect connectivity")
	flags.DurationVar(&opts.probeInterval, "probe-interval", config.DefaultProbeInterval, "connectivity probe interval")
	flags.StringVar(&opts.analyticsSecret, "analytics-secret", config.EnvDefault("ANALYTICS_SECRET", ""), "GA4 Measurement Protocol api secret")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newAuthCmd(opts))
	root.AddCommand(newNotesCmd(opts))
	root.AddCommand(newQueueCmd(opts))
	return root
}

// loadApp builds settings, logging, services and the app. The returned
// cleanup must run before exit.
func loadApp(ctx context.Context, opts *rootOptions, tui bool) (*bootstrap.App, func(), error) {
	settings, err := config.NewSettings(config.Settings{
		StateDir:        opts.stateDir,
		LogLevel:        opts.logLevel,
		CredentialsFile: opts.credentialsFile,
		ProbeTarget:     opts.probeTarget,
		ProbeInterval:   opts.probeInterval,
		AnalyticsSecret: opts.analyticsSecret,
	})
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	var logger *slog.Logger
	closeLog := func() {}
	if tui {
		logger, closeLog, err = logging.OpenFile(settings.LogFile, level)
		if err != nil {
			return nil, nil, err
		}
	} else {
		logger = logging.NewText(os.Stderr, level)
	}

	services := bootstrap.NewServices(ctx, config.FromEnv(), settings, logger)
	app := bootstrap.New(ctx, services, settings, logger)
	cleanup := func() {
		if err := services.Close(); err != nil {
			logger.Warn("shutdown", "error", err)
		}
		closeLog()
	}
	return app, cleanup, nil
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the debug console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer cleanup()
			return bootstrap.RunTUI(cmd.Context(), app)
		},
	}
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{Use: "config", Short: "Inspect the Firebase configuration"}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration read from the environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec := config.FromEnv()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			for _, e := range rec.Redacted().Entries() {
				v := e.Value
				if v == "" {
					v = "(missing)"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.EnvKey, v)
			}
			_ = w.Flush()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), debugview.ConfigStatus(rec))
			return nil
		},
	}
	cfgCmd.AddCommand(showCmd)
	return cfgCmd
}

func newAuthCmd(opts *rootOptions) *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Manage the signed-in account"}

	var email, password string
	var passwordStdin bool
	credentials := func(cmd *cobra.Command) (string, string, error) {
		if passwordStdin {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return "", "", fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		return email, password, nil
	}

	signUpCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, p, err := credentials(cmd)
			if err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.AccountCLI.CreateAccount(cmd.Context(), e, p)
			if err != nil {
				return fmt.Errorf("create account failed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "account created: %s (%s)\n", out.Email, out.UID)
			return nil
		},
	}

	signInCmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, p, err := credentials(cmd)
			if err != nil {
				return err
			}
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.AccountCLI.SignIn(cmd.Context(), e, p)
			if err != nil {
				return fmt.Errorf("sign in failed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in: %s (%s) until %s\n", out.Email, out.UID, out.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	for _, c := range []*cobra.Command{signUpCmd, signInCmd} {
		c.Flags().StringVar(&email, "email", "", "account email")
		c.Flags().StringVar(&password, "password", "", "account password")
		c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
		_ = c.MarkFlagRequired("email")
	}

	signOutCmd := &cobra.Command{
		Use:   "signout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := app.AccountCLI.SignOut(cmd.Context()); err != nil {
				return fmt.Errorf("sign out failed: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.AccountCLI.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !out.SignedIn {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) expires %s\n", out.Email, out.UID, out.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	auth.AddCommand(signUpCmd, signInCmd, signOutCmd, whoamiCmd)
	return auth
}

func newNotesCmd(opts *rootOptions) *cobra.Command {
	notes := &cobra.Command{Use: "notes", Short: "Exercise the document store"}

	writeCmd := &cobra.Command{
		Use:   "write",
		Short: "Write an auth test document as the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			session, err := app.AccountCLI.Current(cmd.Context())
			if err != nil {
				return err
			}
			if !session.SignedIn {
				return fmt.Errorf("cannot perform authenticated write: %w", apperrors.ErrNotSignedIn)
			}
			out, err := app.NotesCLI.AuthenticatedWrite(cmd.Context(), session.UID)
			if err != nil {
				return fmt.Errorf("auth write failed: %w", err)
			}
			suffix := ""
			if out.Queued {
				suffix = " (queued offline)"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote auth-tests/%s%s\n", out.ID, suffix)
			return nil
		},
	}

	var asJSON bool
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "List every note",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.NotesCLI.FetchNotes(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch notes failed: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, n := range out {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n.ID, n.Title)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d notes\n", len(out))
			return nil
		},
	}
	fetchCmd.Flags().BoolVar(&asJSON, "json", false, "print full documents as JSON")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the bundled sample notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.NotesCLI.SeedSampleData(cmd.Context())
			if err != nil {
				return fmt.Errorf("add sample data failed after %d notes: %w", out.Written, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %d sample notes\n", out.Written)
			return nil
		},
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the document store is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := app.NotesCLI.Probe(cmd.Context())
			if err != nil {
				return fmt.Errorf("firestore connection error: %w", err)
			}
			if !out.Reachable {
				return errors.New("firestore connection failed")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "firestore connection ok")
			return nil
		},
	}

	notes.AddCommand(writeCmd, fetchCmd, seedCmd, probeCmd)
	return notes
}

func newQueueCmd(opts *rootOptions) *cobra.Command {
	queue := &cobra.Command{Use: "queue", Short: "Inspect the offline write queue"}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many writes are waiting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			<-app.Services().QueueReady()
			out, err := app.NotesCLI.QueueStatus(cmd.Context())
			if err != nil {
				return err
			}
			if !out.Enabled {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "offline queue disabled (see log for the reason)")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d pending writes, %d rejected\n", out.Pending, out.Rejected)
			return nil
		},
	}

	flushCmd := &cobra.Command{
		Use:   "flush",
		Short: "Replay queued writes now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := loadApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer cleanup()
			<-app.Services().QueueReady()
			out, err := app.NotesCLI.Flush(cmd.Context())
			if err != nil {
				return fmt.Errorf("flush stopped after %d writes: %w", out.Replayed, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "replayed %d writes, %d pending, %d rejected\n", out.Replayed, out.Remaining, out.Rejected)
			return nil
		},
	}

	queue.AddCommand(statusCmd, flushCmd)
	return queue
}
