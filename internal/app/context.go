package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/db"
	"worksim/internal/domain"
	"worksim/internal/engine"
	"worksim/internal/migrate"
	"worksim/internal/repo"
)

// Overrides are values taken from flags or WORKSIM_* variables. Zero values
// leave the file config untouched.
type Overrides struct {
	Seed       *int64
	Driver     string
	DSN        string
	LLM        *bool
	OllamaHost string
	Model      string
	Addr       string
	JWTSecret  string
	Volumes    map[string]int
}

// ResolveConfig loads configPath, or worksim.yml from the workspace, or the
// defaults when neither exists, then applies overrides and validates.
func ResolveConfig(workspace, configPath string, ov Overrides) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.FromFile(configPath)
	} else {
		cfg, err = config.LoadOptional(workspace)
	}
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := apply(cfg, ov); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func apply(cfg *config.Config, ov Overrides) error {
	if ov.Seed != nil {
		cfg.Seed = *ov.Seed
	}
	if ov.Driver != "" {
		cfg.Storage.Driver = ov.Driver
	}
	if ov.DSN != "" {
		cfg.Storage.DSN = ov.DSN
	}
	if ov.LLM != nil {
		cfg.Content.LLMEnabled = *ov.LLM
	}
	if ov.OllamaHost != "" {
		cfg.Content.OllamaHost = ov.OllamaHost
	}
	if ov.Model != "" {
		cfg.Content.Model = ov.Model
	}
	if ov.Addr != "" {
		cfg.Server.Addr = ov.Addr
	}
	if ov.JWTSecret != "" {
		cfg.Server.JWTSecret = ov.JWTSecret
	}
	for name, n := range ov.Volumes {
		switch name {
		case "workspaces":
			cfg.Volumes.Workspaces = n
		case "users":
			cfg.Volumes.Users = n
		case "teams":
			cfg.Volumes.Teams = n
		case "projects":
			cfg.Volumes.Projects = n
		case "tasks":
			cfg.Volumes.Tasks = n
		default:
			return fmt.Errorf("%w: unknown volume %q", config.ErrInvalid, name)
		}
	}
	return nil
}

// Store is what the CLI needs from either backend.
type Store interface {
	engine.Sink
	TableCounts(ctx context.Context) (map[string]int, error)
	LatestProvenance(ctx context.Context) ([]domain.Provenance, error)
	Consistency(ctx context.Context) ([]repo.Check, error)
}

// OpenStore connects to the configured backend and brings its schema up to
// date. For sqlite a non-empty DSN is the database file path.
func OpenStore(ctx context.Context, workspace string, st config.Storage, log zerolog.Logger) (Store, func(), error) {
	switch st.Driver {
	case "postgres":
		pool, err := db.NewPool(ctx, st.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrate.MigratePool(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		r := repo.NewPG(pool)
		r.Log = log
		return r, pool.Close, nil
	case "", "sqlite":
		r, closeFn, err := OpenSQLite(ctx, workspace, st.DSN)
		if err != nil {
			return nil, nil, err
		}
		r.Log = log
		return r, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: storage driver %q", config.ErrInvalid, st.Driver)
	}
}

// OpenSQLite opens and migrates the workspace database.
func OpenSQLite(ctx context.Context, workspace, path string) (repo.Repo, func(), error) {
	conn, err := db.Open(db.Config{Workspace: workspace, Path: path})
	if err != nil {
		return repo.Repo{}, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return repo.Repo{}, nil, err
	}
	return repo.New(conn), func() { conn.Close() }, nil
}

// TextBackend returns the Ollama client when enabled and reachable, or nil so
// the run uses templates only.
func TextBackend(ctx context.Context, c config.Content, log zerolog.Logger) content.Synthesizer {
	if !c.LLMEnabled {
		return nil
	}
	o := content.NewOllama(c.OllamaHost, c.Model, c.Timeout)
	if err := o.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("host", c.OllamaHost).Msg("ollama unreachable, using templates")
		return nil
	}
	log.Info().Str("host", c.OllamaHost).Str("model", c.Model).Msg("using ollama for text")
	return o
}
