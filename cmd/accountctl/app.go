package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dtroode/account-client/internal/client"
	"github.com/dtroode/account-client/internal/config"
	"github.com/dtroode/account-client/internal/logger"
	"github.com/dtroode/account-client/internal/model"
)

// app is shared by every command of one invocation.
type app struct {
	cfg    *config.Config
	logger *logger.Logger
	client *client.Client
	in     *bufio.Reader
	out    io.Writer
	now    func() time.Time

	storePath string
	hostURL   string
}

func (a *app) setup(ctx context.Context) error {
	// a missing .env is fine; the environment alone is enough
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if a.hostURL != "" {
		cfg.API.HostURL = a.hostURL
	}
	switch {
	case a.storePath != "":
		cfg.StorePath = a.storePath
	case cfg.StorePath == "":
		cfg.StorePath, err = defaultStorePath()
		if err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = logger.New(cfg.LogLevel)

	c, err := client.New(ctx, cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}
	a.client = c

	if h := c.Initialize(ctx); h == model.HydrationUnresolved {
		a.logger.Warn("accountctl: could not confirm the saved session; continuing with local state")
	}
	return nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// prompt reads one line; EOF on an empty line is an error.
func (a *app) prompt(label string) (string, error) {
	a.printf("%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return a.prompt(label)
}

func (a *app) requireLogin() (model.User, error) {
	state := a.client.Store.State()
	if !state.Status {
		return model.User{}, fmt.Errorf("not logged in; run `accountctl login` first")
	}
	return *state.LoggedInUser, nil
}

func defaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	dir = filepath.Join(dir, "accountctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, "store.db"), nil
}

// execute runs one invocation and releases the client whatever the outcome.
func execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	a := &app{in: bufio.NewReader(in), out: out, now: time.Now}
	root := newRootCommand(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func newRootCommand(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:           "accountctl",
		Short:         "Sign in, manage devices and two-factor authentication on the account service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "Local store file (env STORE_PATH)")
	root.PersistentFlags().StringVar(&a.hostURL, "host", "", "Account service URL (env API_HOST_URL)")

	root.AddCommand(
		versionCommand(a),
		signupCommand(a),
		loginCommand(a),
		logoutCommand(a),
		whoamiCommand(a),
		routeCommand(a),
		sessionsCommand(a),
		twoFactorCommand(a),
		profileCommand(a),
	)
	return root
}

func versionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			a.printf("Build version: %s\nBuild date: %s\nBuild commit: %s\n", buildVersion, buildDate, buildCommit)
		},
	}
}
