package wire

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mithrel/quire/internal/config"
	"github.com/mithrel/quire/internal/db"
	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/internal/logging"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg     *viper.Viper
	Log     logging.Logger
	Store   db.Store
	Journal *journal.Service
}

// Option customizes BuildApp.
type Option func(*options)

type options struct {
	logOut io.Writer
	clock  journal.Clock
}

// WithLogOutput redirects logs, which default to stderr.
func WithLogOutput(w io.Writer) Option { return func(o *options) { o.logOut = w } }

// WithClock injects the clock used for entry timestamps.
func WithClock(c journal.Clock) Option { return func(o *options) { o.clock = c } }

// BuildApp wires dependencies with the provided config. The caller owns the
// returned App and must Close it.
func BuildApp(ctx context.Context, v *viper.Viper, opts ...Option) (*App, error) {
	o := options{logOut: os.Stderr, clock: journal.SystemClock}
	for _, fn := range opts {
		fn(&o)
	}
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, err
	}
	logger, err := logging.New(o.logOut, v.GetString("log.level"), v.GetString("log.format"))
	if err != nil {
		return nil, err
	}
	url := config.ResolveDBURL(v)
	store, err := db.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug(ctx, "store opened", "backend", backendName(url))
	return &App{
		Cfg:     v,
		Log:     logger,
		Store:   store,
		Journal: journal.New(store, journal.WithClock(o.clock), journal.WithLogger(logger.With("component", "journal"))),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// backendName keeps credentials in db_url out of the logs.
func backendName(url string) string {
	if scheme, _, ok := strings.Cut(url, "://"); ok {
		return scheme
	}
	return "sqlite"
}
