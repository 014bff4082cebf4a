package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/imagestrip/internal/client"
	"github.com/five82/imagestrip/internal/config"
	"github.com/five82/imagestrip/internal/logging"
	"github.com/five82/imagestrip/internal/prefs"
	"github.com/five82/imagestrip/internal/state"
	"github.com/five82/imagestrip/internal/ui"
)

const sessionTimeout = 5 * time.Second

// Options configure the viewer.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/imagestrip/prefs.toml
	Server     string // overrides the configured listen address
	Transport  string // overrides the configured transport
	PollEvery  int    // seconds; zero uses default
}

// Run opens a strip session and runs the viewer until the user quits or the
// context is cancelled. The session is discarded on exit.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Transport != "" {
		cfg.Transport = opts.Transport
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logPath := cfg.ViewerLogPath()
	logger, closeLog, err := logging.Open(logPath, "viewer", nil)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	addr := cfg.Listen
	if opts.Server != "" {
		addr = opts.Server
	}
	c, err := client.NewClient(addr)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}

	openCtx, cancel := context.WithTimeout(ctx, sessionTimeout)
	session, err := c.CreateSession(openCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("open session at %s: %w", c.BaseURL(), err)
	}
	logger.Info("session opened", "id", session.ID, "server", c.BaseURL().String(), "transport", cfg.Transport)
	defer closeSession(c, session.ID, logger)

	transport, err := openTransport(ctx, c, cfg.Transport, session.ID)
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.Debug("close transport", "error", err)
		}
	}()

	store := &state.Store{}
	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	pollCtx, stopPoller := context.WithCancel(ctx)
	defer stopPoller()
	StartPoller(pollCtx, store, c, session.ID, interval, logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Transport: transport,
		Store:     store,
		Session:   session,
		Prefs:     userPrefs,
		PrefsPath: prefsPath,
		LogPath:   logPath,
		Logger:    logger,
	})
}

// openTransport picks the cycle transport named by kind.
func openTransport(ctx context.Context, c *client.Client, kind, id string) (client.Transport, error) {
	switch kind {
	case config.TransportHTTP:
		return c.SessionTransport(id), nil
	case config.TransportWebSocket, "":
		dialCtx, cancel := context.WithTimeout(ctx, sessionTimeout)
		defer cancel()
		conn, err := c.Dial(dialCtx, id)
		if err != nil {
			return nil, fmt.Errorf("open websocket transport: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

func closeSession(c *client.Client, id string, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
	defer cancel()
	if err := c.CloseSession(ctx, id); err != nil {
		logger.Warn("close session", "id", id, "error", err)
		return
	}
	logger.Info("session closed", "id", id)
}
