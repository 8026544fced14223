package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tabledao/internal/config"
	"github.com/roach88/tabledao/internal/dao"
	"github.com/roach88/tabledao/internal/registry"
	"github.com/roach88/tabledao/internal/store"
)

// session bundles what a command needs: settings, logger, handlers and,
// for commands that touch data, an open store.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Registry
	store    *store.Store
	out      *OutputFormatter
}

// newSession loads the config and applies flag overrides. It does not open
// the store; see openStore.
func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, out.Fail(err)
		}
		cfg = loaded
	}
	if opts.Driver != "" {
		cfg.Driver = opts.Driver
	}
	if opts.Database != "" {
		cfg.DSN = opts.Database
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	reg := registry.New(cfg.Namespaces...)
	reg.SetLogger(logger)

	return &session{cfg: cfg, logger: logger, registry: reg, out: out}, nil
}

// openSession is newSession followed by openStore.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	s, err := newSession(opts, cmd)
	if err != nil {
		return nil, err
	}
	if err := s.openStore(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) openStore() error {
	s.logger.Debug("opening database", "driver", s.cfg.Driver, "dsn", redactDSN(s.cfg.DSN))
	st, err := store.Open(s.cfg.Driver, s.cfg.DSN, store.WithLogger(s.logger))
	if err != nil {
		return s.out.Fail(err)
	}
	s.store = st
	return nil
}

// table resolves name to a repository over the session store.
func (s *session) table(name string) (dao.Table, error) {
	return s.registry.Open(name, s.store,
		dao.WithLogger(s.logger),
		dao.WithRowLimit(s.cfg.RowLimit))
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

// redactDSN hides a mysql password: user:secret@tcp(...) becomes user:***@tcp(...).
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	colon := strings.Index(dsn[:at], ":")
	if colon < 0 {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}
