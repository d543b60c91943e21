package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"worksim/internal/app"
	"worksim/internal/config"
	"worksim/internal/db"
	"worksim/internal/domain"
	"worksim/internal/engine"
	"worksim/internal/logger"
	"worksim/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "wsim",
	Short: "Synthetic project-management dataset generator",
	Long: `wsim generates a seeded, internally consistent project-management dataset
(workspaces, users, teams, projects, sections, tasks, comments, goals and more)
and appends it to SQLite or Postgres.

- Seed: the same seed and config always produce the same dataset.
- Workspace: the .worksim directory holding the SQLite database; worksim.yml sits next to it.
- Provenance: every run records a batch id and per-table row counts in _meta_provenance.
- Re-runs are idempotent: rows already stored are skipped, not duplicated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(viper.GetBool("verbose"), viper.GetBool("log-json"))
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("WORKSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("workspace", "w", ".", "workspace directory")
	flags.StringP("config", "c", "", "config file (default <workspace>/worksim.yml)")
	flags.Bool("json", false, "output JSON")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.Bool("log-json", false, "log as JSON lines")
	flags.Int64("seed", 0, "random seed (overrides config)")
	flags.String("driver", "", "storage driver: sqlite or postgres")
	flags.String("dsn", "", "storage DSN (postgres URL or sqlite file path)")
	for _, name := range []string{"workspace", "config", "json", "verbose", "log-json", "seed", "driver", "dsn"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands() {
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(provenanceCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tokenCmd())
}

// overrides collects the values given through flags or WORKSIM_* variables.
func overrides(cmd *cobra.Command) app.Overrides {
	ov := app.Overrides{
		Driver:     viper.GetString("driver"),
		DSN:        viper.GetString("dsn"),
		OllamaHost: viper.GetString("ollama-host"),
		Model:      viper.GetString("model"),
		Addr:       viper.GetString("addr"),
		JWTSecret:  viper.GetString("jwt-secret"),
	}
	if viper.IsSet("seed") {
		seed := viper.GetInt64("seed")
		ov.Seed = &seed
	}
	if viper.IsSet("llm") {
		llm := viper.GetBool("llm")
		ov.LLM = &llm
	}
	for _, name := range []string{"users", "teams", "projects", "tasks"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if ov.Volumes == nil {
				ov.Volumes = map[string]int{}
			}
			n, _ := cmd.Flags().GetInt(name)
			ov.Volumes[name] = n
		}
	}
	return ov
}

func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	return app.ResolveConfig(viper.GetString("workspace"), viper.GetString("config"), overrides(cmd))
}

func withStore(cmd *cobra.Command, fn func(context.Context, *config.Config, app.Store) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, closeFn, err := app.OpenStore(ctx, viper.GetString("workspace"), cfg.Storage, logger.Logger)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, cfg, store)
}

func generateCmd() *cobra.Command {
	var dryRun, verify bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the dataset and append it to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var sink engine.Sink
			if !dryRun {
				store, closeFn, err := app.OpenStore(ctx, viper.GetString("workspace"), cfg.Storage, logger.Logger)
				if err != nil {
					return err
				}
				defer closeFn()
				sink = store
			}
			eng := engine.New(sink, cfg)
			eng.Primary = app.TextBackend(ctx, cfg.Content, logger.Logger)
			_, sum, runErr := eng.Run(ctx, engine.Options{DryRun: dryRun, Verify: verify})
			if sum.Tables != nil {
				if err := printSummary(sum); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate without writing to the store")
	cmd.Flags().BoolVar(&verify, "verify", false, "check structural invariants after generation")
	cmd.Flags().Bool("llm", false, "use the Ollama text backend when reachable")
	cmd.Flags().String("ollama-host", "", "Ollama base URL")
	cmd.Flags().String("model", "", "Ollama model")
	cmd.Flags().Int("users", 0, "number of users")
	cmd.Flags().Int("teams", 0, "number of teams")
	cmd.Flags().Int("projects", 0, "number of projects")
	cmd.Flags().Int("tasks", 0, "number of tasks including subtasks")
	for _, name := range []string{"llm", "ollama-host", "model"} {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func printSummary(sum engine.Summary) error {
	if viper.GetBool("json") {
		return printJSON(sum)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Table", "Generated", "Inserted", "Skipped", "Failed"})
	var total engine.TableSummary
	for _, ts := range sum.Tables {
		tw.AppendRow(table.Row{ts.Table, ts.Generated, ts.Inserted, ts.Skipped, ts.Failed})
		total.Generated += ts.Generated
		total.Inserted += ts.Inserted
		total.Skipped += ts.Skipped
		total.Failed += ts.Failed
	}
	tw.AppendFooter(table.Row{"total", total.Generated, total.Inserted, total.Skipped, total.Failed})
	tw.Render()
	if sum.BatchID != "" {
		fmt.Printf("batch %s in %s\n", sum.BatchID, sum.Elapsed.Round(time.Millisecond))
	}
	if sum.Report != nil {
		fmt.Printf("verified %d records, %d issues\n", sum.Report.Checked, len(sum.Report.Issues))
		for _, is := range sum.Report.Issues {
			fmt.Printf("  %s %s %s: %s\n", is.Check, is.Table, is.Key, is.Detail)
		}
	}
	return nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ *config.Config, store app.Store) error {
				counts, err := store.TableCounts(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(counts)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Table", "Rows"})
				for _, t := range append(append([]string{}, domain.Tables...), domain.ProvenanceTable) {
					tw.AppendRow(table.Row{t, counts[t]})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func provenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provenance",
		Short: "Show the latest generation batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ *config.Config, store app.Store) error {
				items, err := store.LatestProvenance(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Batch", "Table", "Strategy", "Rows", "Timestamp"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.BatchID, p.EntityType, p.SourceStrategy, p.RowCount, p.Timestamp.Format(domain.TimestampLayout)})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run consistency queries against the stored dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, _ *config.Config, store app.Store) error {
				checks, err := store.Consistency(ctx)
				if err != nil {
					return err
				}
				failed := 0
				for _, c := range checks {
					if c.Violations > 0 {
						failed++
					}
				}
				if viper.GetBool("json") {
					if err := printJSON(checks); err != nil {
						return err
					}
				} else {
					sort.SliceStable(checks, func(i, j int) bool { return checks[i].Violations > checks[j].Violations })
					tw := table.NewWriter()
					tw.SetOutputMirror(os.Stdout)
					tw.AppendHeader(table.Row{"Check", "Violations", "Description"})
					for _, c := range checks {
						tw.AppendRow(table.Row{c.Name, c.Violations, c.Description})
					}
					tw.Render()
				}
				if failed > 0 {
					return fmt.Errorf("%d consistency checks failed", failed)
				}
				return nil
			})
		},
	}
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage generation config",
		Long:  "worksim.yml holds the seed, volumes, time window and the weight tables that shape the dataset. Flags and WORKSIM_* variables override it.",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	cfg.AddCommand(configValidateCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default worksim.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("config")
			if path == "" {
				path = config.Path(viper.GetString("workspace"))
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]string{"path": path})
			}
			fmt.Println("wrote", path)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return printJSONOrTable(cfg)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved config",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := resolveConfig(cmd)
			if viper.GetBool("json") {
				return printJSON(map[string]any{"ok": err == nil, "error": fmt.Sprint(err)})
			}
			if err != nil {
				return err
			}
			fmt.Println("config OK")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored dataset over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Storage.Driver == "postgres" {
				return fmt.Errorf("%w: serve reads the sqlite workspace database only", config.ErrInvalid)
			}
			ctx := cmd.Context()
			store, closeFn, err := app.OpenSQLite(ctx, viper.GetString("workspace"), cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer closeFn()
			store.Log = logger.Logger
			handler, err := server.New(server.Config{
				Store:    store,
				BasePath: basePath,
				Auth:     server.AuthConfig{JWTSecret: cfg.Server.JWTSecret},
				Log:      logger.Logger,
			})
			if err != nil {
				return err
			}
			if cfg.Server.JWTSecret == "" {
				logger.Logger.Warn().Msg("no jwt secret configured, API is unauthenticated")
			}
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
			logger.Logger.Info().Str("addr", cfg.Server.Addr).Str("base_path", basePath).Msg("serving worksim API (OpenAPI at openapi.json, Swagger UI at /docs)")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides config)")
	cmd.Flags().String("jwt-secret", "", "HS256 secret for bearer tokens (overrides config)")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	_ = viper.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("jwt-secret", cmd.Flags().Lookup("jwt-secret"))
	return cmd
}

func tokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			token, err := server.SignToken(cfg.Server.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]string{"token": token})
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "local-user", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
