package cli

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/profiledir/internal/config"
	"github.com/roach88/profiledir/internal/directory"
	"github.com/roach88/profiledir/internal/identity"
	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
	"github.com/roach88/profiledir/internal/memstore"
	"github.com/roach88/profiledir/internal/policy"
	"github.com/roach88/profiledir/internal/store"
)

// session is the state one command invocation works against.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	ledger ledger.Ledger
	close  func() error
}

// loadConfig reads the config file and applies flag overrides.
// An explicit --config must exist; the default path may be absent.
func loadConfig(opts *RootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return config.Config{}, commandError(ErrCodeConfig, "failed to load config", err)
	}

	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.KeyFile != "" {
		cfg.KeyFile = opts.KeyFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, commandError(ErrCodeConfig, "invalid config", err)
	}
	return cfg, nil
}

// setupLogging installs a text handler on the command's stderr.
func setupLogging(cmd *cobra.Command, opts *RootOptions, cfg config.Config) *slog.Logger {
	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// openSession loads config, configures logging and opens the ledger.
// Callers must Close the session.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := setupLogging(cmd, opts, cfg)

	if cfg.Database == config.MemoryDatabase {
		logger.Debug("using in-memory ledger")
		return &session{
			cfg:    cfg,
			logger: logger,
			ledger: memstore.New(),
			close:  func() error { return nil },
		}, nil
	}

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, commandError(ErrCodeStorage, "failed to open database", err)
	}
	return &session{cfg: cfg, logger: logger, ledger: st, close: st.Close}, nil
}

// Close releases the ledger.
func (s *session) Close() {
	if err := s.close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// key loads the local identity key.
func (s *session) key() (*identity.Key, error) {
	k, err := identity.Load(s.cfg.KeyFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, commandError(ErrCodeIdentity,
			"no identity key at "+s.cfg.KeyFile+"; run 'profiledir identity new'", err)
	}
	if err != nil {
		return nil, commandError(ErrCodeIdentity, "failed to load identity key", err)
	}
	return k, nil
}

// directory builds the directory service acting as self.
// self may be empty for read-only commands.
func (s *session) directory(self ir.Identity) (*directory.Service, error) {
	p := policy.Default()
	if s.cfg.PolicyFile != "" {
		loaded, err := policy.Load(s.cfg.PolicyFile)
		if err != nil {
			return nil, commandError(ErrCodeConfig, "failed to load policy", err)
		}
		p = loaded
		s.logger.Debug("policy loaded", "path", s.cfg.PolicyFile)
	}

	return directory.New(s.ledger, self,
		directory.WithLogger(s.logger),
		directory.WithPolicy(p),
		directory.WithResolveConcurrency(s.cfg.ResolveConcurrency),
	), nil
}

// newFormatter creates the formatter for a command.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
