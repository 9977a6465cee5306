package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Commvault/commvault-mcp-server/internal/auth"
	"github.com/Commvault/commvault-mcp-server/internal/commcell"
	"github.com/Commvault/commvault-mcp-server/internal/config"
	"github.com/Commvault/commvault-mcp-server/internal/secrets"
	"github.com/Commvault/commvault-mcp-server/internal/server"
	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

// Application bundles the wired components of a running server.
//
// Bootstrap happens in NewApplication; Run only supervises the already
// constructed pieces. Construction fails fast on anything the operator has
// to fix before the server can be useful, notably missing setup.
type Application struct {
	config  *Config
	limiter *auth.FailureLimiter
	server  *server.Server
}

// NewApplication performs the bootstrap sequence: logging, configuration,
// secret store, Command Center client, authentication gate and transport
// server. It returns an error when the server secret or API tokens have not
// been provisioned yet.
func NewApplication(cfg *Config) (*Application, error) {
	return newApplication(cfg, secrets.NewKeyring())
}

func newApplication(cfg *Config, store secrets.Store) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.InitForCLI(appLogLevel, os.Stdout)

	configPath := cfg.ConfigPath
	if configPath == "" {
		var err error
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	serverCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Stdio reserves stdout for the protocol stream.
	if serverCfg.Server.Transport == config.TransportStdio {
		var logOutput io.Writer = os.Stderr
		logging.InitForCLI(appLogLevel, logOutput)
	}

	secret, err := secrets.LoadServerSecret(store)
	switch {
	case errors.Is(err, secrets.ErrSecretMissing), errors.Is(err, secrets.ErrExpiryMissing):
		return nil, fmt.Errorf("no server secret provisioned, run 'commvault-mcp-server setup' first")
	case err != nil:
		return nil, fmt.Errorf("failed to load server secret: %w", err)
	case secret.Expired(time.Now()):
		logging.Warn("Bootstrap", "Server secret has expired; clients will be rejected until 'secret rotate' is run")
	}

	client, err := commcell.New(serverCfg.CommCell, store)
	if err != nil {
		return nil, err
	}

	limiter := auth.NewFailureLimiter(auth.DefaultFailureLimiterConfig())
	gate := auth.NewGate(
		auth.NewClientIdentifier(auth.NewTrustedProxies(serverCfg.Auth.TrustedProxyIPs)),
		limiter,
		store,
	)

	return &Application{
		config:  cfg,
		limiter: limiter,
		server:  server.New(serverCfg.Server, client, gate, cfg.Version),
	}, nil
}

// Run executes the application until ctx is cancelled, an interrupt arrives
// or the transport server fails.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.limiter.StartSweeping(ctx)
		return nil
	})
	g.Go(func() error {
		return a.server.Run(ctx)
	})

	return g.Wait()
}
