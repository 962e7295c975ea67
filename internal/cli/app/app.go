// Package app wires the client core for one CLI invocation and executes the
// side effects the HTTP pipeline asks for.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/session"
	"github.com/castvote-dev/castvote/internal/cli/store"
	"github.com/castvote-dev/castvote/internal/cli/ui"
	"github.com/castvote-dev/castvote/internal/config"
)

// ErrRedirected is returned when the guard refuses a route
var ErrRedirected = errors.New("redirected")

// RedirectError carries the route the guard sent the user to
type RedirectError struct {
	From   string
	Target string
}

func (e *RedirectError) Error() string {
	if e.Target == guard.Unauthorized.Path {
		return fmt.Sprintf("%s requires admin privileges", e.From)
	}
	return fmt.Sprintf("%s requires login", e.From)
}

func (e *RedirectError) Unwrap() error {
	return ErrRedirected
}

// App is the per-invocation container
type App struct {
	Config  *config.CLIConfig
	Store   store.Store
	Client  *client.Client
	Session *session.Manager
	Console *ui.Console
	Logger  zerolog.Logger

	mu    sync.RWMutex
	route string
}

type options struct {
	store      store.Store
	httpClient *http.Client
	console    *ui.Console
	ephemeral  bool
}

// Option customizes App construction
type Option func(*options)

// WithStore replaces the configured session store
func WithStore(s store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithHTTPClient sets the HTTP client used for backend calls
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithConsole sets where notifications are printed
func WithConsole(c *ui.Console) Option {
	return func(o *options) {
		o.console = c
	}
}

// Ephemeral keeps all session state in memory for this invocation
func Ephemeral() Option {
	return func(o *options) {
		o.ephemeral = true
	}
}

// New builds the store, client and session manager from configuration
func New(cfg *config.CLIConfig, logger zerolog.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := o.store
	if s == nil {
		var err error
		if s, err = OpenStore(cfg, o.ephemeral); err != nil {
			return nil, err
		}
	}

	console := o.console
	if console == nil {
		console = ui.NewConsole()
	}

	a := &App{
		Config:  cfg,
		Store:   s,
		Console: console,
		Logger:  logger,
		route:   guard.Home.Path,
	}

	var clientOpts []client.Option
	if o.httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(o.httpClient))
	}
	clientOpts = append(clientOpts,
		client.WithTimeout(cfg.Timeout),
		client.WithEffects(a),
		client.WithLocation(a.Location),
		client.WithLogger(logger),
	)

	c, err := client.New(s, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	a.Client = c
	a.Session = session.NewManager(s, c, logger)

	return a, nil
}

// OpenStore selects the session store backends from configuration
func OpenStore(cfg *config.CLIConfig, ephemeral bool) (store.Store, error) {
	if ephemeral {
		return store.NewMemory(), nil
	}

	file, err := store.NewFileStore(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	if cfg.TokenStore == config.TokenStoreFile {
		return file, nil
	}

	return store.NewRouted(file, map[string]store.Store{
		store.KeyToken: store.NewKeyringStore(),
	}), nil
}

// Location is the route currently being rendered
func (a *App) Location() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.route
}

// Navigate moves to a route and prints where the flow continues
func (a *App) Navigate(route string) {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()

	a.Console.Redirect(route)
}

// Follow applies a navigation returned by the session manager
func (a *App) Follow(nav session.Navigation) {
	if nav.Notice != "" {
		a.Console.Success(nav.Notice)
	}
	if nav.Route != "" {
		a.Navigate(nav.Route)
	}
	if nav.Reload {
		a.Console.Notify("The new backend URL takes effect on the next command.", client.SeverityInfo)
	}
}

// Apply executes effects requested by the HTTP pipeline
func (a *App) Apply(ctx context.Context, effects []client.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case client.ClearSession:
			a.Session.Expire(ctx)
		case client.RedirectTo:
			a.Navigate(e.Route)
		case client.Notify:
			a.Console.Notify(e.Message, e.Severity)
		default:
			a.Logger.Warn().Str("effect", fmt.Sprintf("%T", effect)).Msg("Unknown effect")
		}
	}
}

// Enter restores the session if needed and asks the guard for route.
// A refusal is returned as a *RedirectError after the redirect is shown.
func (a *App) Enter(ctx context.Context, route guard.Route) error {
	a.mu.Lock()
	a.route = route.Path
	a.mu.Unlock()

	if err := a.Session.RestoreOnStartup(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	decision := guard.Evaluate(route, a.Session.State())
	switch decision.Outcome {
	case guard.Allow:
		return nil
	case guard.Redirect:
		a.Logger.Debug().Str("from", route.Path).Str("to", decision.Target).Msg("Route refused")
		a.Navigate(decision.Target)
		return &RedirectError{From: route.Path, Target: decision.Target}
	default:
		// Restore has completed, so Wait cannot be observed here
		return fmt.Errorf("session is still being restored")
	}
}
