package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tordrt/liteschema"
	"github.com/tordrt/liteschema/internal/config"
	"github.com/tordrt/liteschema/internal/logger"
)

// newRootCmd builds the liteschema command. Flag values are read back
// through config.Load so that only explicitly set flags override the
// config file and environment.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "liteschema",
		Short: "Introspect a live SQLite database and print its schema",
		Long: `liteschema reads tables, columns, indexes and foreign keys from a SQLite
database catalog and renders them as text, markdown, YAML or JSON.

Settings come from flags, LITESCHEMA_* environment variables and an optional
liteschema.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./liteschema.yaml if present)")
	flags.StringP("database", "D", "", "Database path or URL (sqlite://app.db, file:app.db?mode=ro)")
	flags.String("driver", config.DefaultDriver, "SQL driver: sqlite3 (cgo) or sqlite (pure Go)")
	flags.StringP("schema", "s", "", "Only introspect tables stored as <schema>§<table>")
	flags.StringSliceP("tables", "t", nil, "Comma-separated list of tables to introspect (default: all)")
	flags.StringSliceP("exclude", "x", nil, "Comma-separated list of tables to leave out of the output (table, schema.table or schema§table)")
	flags.String("migration-table", "", "Migration bookkeeping table to skip (default: goose_db_version)")
	flags.StringP("format", "f", config.DefaultFormat, "Output format: text, markdown, yaml or json")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("output-dir", "d", "", "Output directory for multi-file output")
	flags.Int("concurrency", config.DefaultConcurrency, "Number of tables introspected at once")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", config.DefaultLogFormat, "Log format: console or json")
	flags.Bool("watch", false, "Regenerate whenever the database file changes")

	return cmd
}

func run(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if cfg.File != "" {
		log.Debugf("using config file %s", cfg.File)
	}

	generate := func(ctx context.Context) error {
		return generateSchema(ctx, cfg, log, cmd.OutOrStdout())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithContext(ctx)

	if err := generate(ctx); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}
	return watch(ctx, cfg, log, generate)
}

// generateSchema runs one introspection and writes the result to the
// configured destination
func generateSchema(ctx context.Context, cfg *config.Config, log *logger.Logger, stdout io.Writer) error {
	database, err := liteschema.Introspect(ctx, cfg.Database, &liteschema.Options{
		Tables:         cfg.Tables,
		SchemaName:     cfg.Schema,
		MigrationTable: cfg.MigrationTable,
		Driver:         cfg.Driver,
		Concurrency:    cfg.Concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to introspect schema: %w", err)
	}

	if len(cfg.ExcludeTables) > 0 {
		liteschema.ExcludeTables(database, cfg.ExcludeTables)
	}

	outOpts := &liteschema.OutputOptions{
		Writer:    stdout,
		OutputDir: cfg.OutputDir,
		Format:    cfg.Format,
	}

	if cfg.Output != "" {
		file, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				log.Warnf("failed to close output file: %v", closeErr)
			}
		}()
		outOpts.Writer = file
	}

	if err := liteschema.Format(database, outOpts); err != nil {
		return fmt.Errorf("failed to format schema: %w", err)
	}

	switch {
	case cfg.OutputDir != "":
		log.Infof("wrote %d tables to %s", len(database.Tables), cfg.OutputDir)
	case cfg.Output != "":
		log.Infof("wrote %d tables to %s", len(database.Tables), cfg.Output)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
