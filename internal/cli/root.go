// Package cli implements the pressroom command tree: the admin surface of
// the content API and the public site server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bryan-buckman/pressroom/internal/apiclient"
	"github.com/bryan-buckman/pressroom/internal/apierr"
	"github.com/bryan-buckman/pressroom/internal/config"
	"github.com/bryan-buckman/pressroom/internal/database"
	"github.com/bryan-buckman/pressroom/internal/logging"
	"github.com/bryan-buckman/pressroom/internal/notify"
	"github.com/bryan-buckman/pressroom/internal/session"
)

// errReported means the failure was already shown to the user.
var errReported = errors.New("reported")

// app is the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	configFile string

	cfg      config.Config
	log      *zap.Logger
	store    database.Store
	session  *session.Session
	api      *apiclient.Client
	notifier *notify.Notifier

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, NewRootCmd(os.Stdin, os.Stdout, os.Stderr), os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree reading prompts from in.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}

	root := &cobra.Command{
		Use:           "pressroom",
		Short:         "Manage and serve a content site backed by the content API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("api-url", "", "content API base URL")
	flags.String("storage-driver", "", "session storage backend: sqlite or postgres")
	flags.String("storage-dsn", "", "session storage location (file path or connection string)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: console or json")
	for key, flag := range map[string]string{
		config.KeyAPIURL:        "api-url",
		config.KeyStorageDriver: "storage-driver",
		config.KeyStorageDSN:    "storage-dsn",
		config.KeyLogLevel:      "log-level",
		config.KeyLogFormat:     "log-format",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		a.serveCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.postsCmd(),
		a.categoriesCmd(),
		a.contactsCmd(),
		a.subscribersCmd(),
		a.uploadCmd(),
		a.importCmd(),
	)

	root.SetOut(out)
	root.SetErr(errOut)
	root.SetIn(in)
	return root
}

// run executes root and prints errors that were not already reported.
func run(ctx context.Context, root *cobra.Command, errOut io.Writer) error {
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		color.New(color.FgRed).Fprintf(errOut, "Error: %v\n", err)
	}
	return err
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.notifier = notify.New()
	a.notifier.Subscribe(a.printNotification)

	a.store, err = database.Open(cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	a.session = session.New(a.store,
		session.WithLogger(a.log.Named("session")),
		session.OnLogout(func() {
			a.notifier.Info("Logged out", "Run `pressroom login` to sign in again.")
		}))

	a.api = apiclient.New(cfg.APIURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		apiclient.WithTokenSource(a.session),
		apiclient.WithLogger(a.log),
	)
	a.log.Debug("configured",
		zap.String("api_url", cfg.APIURL),
		zap.String("storage", a.store.DatabaseType()))
	return nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("close session storage", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// requireAPI checks that the API is configured.
func (a *app) requireAPI() error {
	return a.cfg.RequireAPI()
}

// requireAuth checks that an admin session exists.
func (a *app) requireAuth() error {
	if err := a.requireAPI(); err != nil {
		return err
	}
	token, err := a.session.LoadToken()
	if err != nil {
		return fmt.Errorf("session storage: %w", err)
	}
	if token == "" {
		return errors.New("not logged in; run `pressroom login` first")
	}
	return nil
}

// failed shows err as an error notification. Rejected credentials get a
// hint to log in again; there is no automatic refresh.
func (a *app) failed(title string, err error, def string) error {
	msg := apierr.Message(err, def)
	if apierr.IsUnauthorized(err) {
		msg += " Run `pressroom login` to sign in again."
	}
	a.notifier.Error(title, msg)
	return errReported
}

func (a *app) printNotification(n notify.Notification, visible bool) {
	if !visible {
		return
	}
	var c *color.Color
	w := a.out
	switch n.Type {
	case notify.Success:
		c = color.New(color.FgGreen)
	case notify.Warning:
		c = color.New(color.FgYellow)
	case notify.Error:
		c = color.New(color.FgRed)
		w = a.errOut
	default:
		c = color.New(color.FgCyan)
	}
	c.Fprintf(w, "%s: ", n.Title)
	fmt.Fprintln(w, n.Message)
}
