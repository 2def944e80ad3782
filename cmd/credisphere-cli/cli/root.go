// Package cli implements the credisphere-cli command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/credisphere/credisphere/internal/client/apiclient"
	"github.com/credisphere/credisphere/internal/client/formerrors"
	"github.com/credisphere/credisphere/internal/client/session"
)

const (
	envURL         = "CREDISPHERE_URL"
	envSessionFile = "CREDISPHERE_SESSION_FILE"
	envPassword    = "CREDISPHERE_PASSWORD"
	envRedisAddr   = "REDIS_ADDR"

	defaultURL = "http://localhost:8080"
)

var errNotLoggedIn = errors.New("not logged in, run 'credisphere-cli login' first")

// Options configures the command tree. Zero fields fall back to flags and
// CREDISPHERE_* environment variables.
type Options struct {
	BaseURL     string
	SessionPath string
	Verbose     bool

	HTTPClient *http.Client
	// Storage replaces the session file when set.
	Storage session.Storage
	// Jobs replaces the Redis backed job queue when set.
	Jobs JobQueue
}

// Root builds the top level command.
func Root(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "credisphere-cli",
		Short:         "Command line client for the CrediSphere membership API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if opts.BaseURL == "" {
		opts.BaseURL = envOr(envURL, defaultURL)
	}
	if opts.SessionPath == "" {
		opts.SessionPath = os.Getenv(envSessionFile)
	}
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "url", opts.BaseURL, "API base URL. Consumes $"+envURL)
	cmd.PersistentFlags().StringVar(&opts.SessionPath, "session-file", opts.SessionPath, "Session file path. Consumes $"+envSessionFile)
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log diagnostics to stderr")

	cmd.AddCommand(
		login(opts),
		logout(opts),
		whoami(opts),
		roles(opts),
		can(opts),
		create(opts),
		list(opts),
		jobsCmd(opts),
	)
	return cmd
}

// env is the per-invocation runtime shared by the subcommands.
type env struct {
	client  *apiclient.Client
	session *session.Context
	history *session.History
	mapper  formerrors.Mapper
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func (o *Options) open(cmd *cobra.Command) (*env, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if o.Verbose {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	storage := o.Storage
	if storage == nil {
		path := o.SessionPath
		if path == "" {
			var err error
			if path, err = session.DefaultPath(); err != nil {
				return nil, err
			}
		}
		storage = session.NewFileStorage(path)
	}

	history := &session.History{}
	sess, err := session.New(cmd.Context(), session.KeyValueStore{Storage: storage}, history, session.DefaultRoutes())
	if err != nil {
		logger.Warn("load session", slog.Any("error", err))
	}

	clientOpts := []apiclient.Option{apiclient.WithToken(sess.Token())}
	if o.HTTPClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.HTTPClient))
	}
	client, err := apiclient.New(o.BaseURL, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &env{
		client:  client,
		session: sess,
		history: history,
		mapper:  formerrors.Mapper{Logger: logger},
		logger:  logger,
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
	}, nil
}

// requireSession fails fast when nobody is signed in.
func (e *env) requireSession() error {
	if e.session.State() != session.Authenticated {
		return errNotLoggedIn
	}
	return nil
}

// handle turns an API failure into CLI output. A rejected token ends the
// local session.
func (e *env) handle(cmd *cobra.Command, err error) error {
	invalidated, logoutErr := e.session.Invalidate(cmd.Context(), err)
	if logoutErr != nil {
		e.logger.Warn("clear session", slog.Any("error", logoutErr))
	}
	if invalidated {
		return errors.New("session expired, please log in again")
	}
	return err
}

// report prints err through the form error mapper with known as the form
// fields and returns a summary error.
func (e *env) report(err error, known []string) error {
	if e.mapper.Apply(err, known, e.fieldPrinter(), e.notifier()) {
		return errors.New("request rejected, see field errors above")
	}
	return errors.New("request failed")
}

func (e *env) fieldPrinter() formerrors.FieldSetter {
	return formerrors.FieldSetterFunc(func(field, message string) {
		_, _ = fmt.Fprintf(e.stderr, "  %s: %s\n", field, message)
	})
}

func (e *env) notifier() formerrors.Notifier {
	return formerrors.NotifierFunc(func(message string) {
		_, _ = fmt.Fprintln(e.stderr, message)
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
