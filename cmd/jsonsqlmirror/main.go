// Package main is the operator CLI for the sync daemon: register tables,
// trigger syncs, and inspect status, mirroring cmd/smf's command
// structure directly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"jsonsqlmirror/internal/catalog"
	"jsonsqlmirror/internal/config"
	"jsonsqlmirror/internal/datastore"
	"jsonsqlmirror/internal/introspect"
	"jsonsqlmirror/internal/jsonsql"
	"jsonsqlmirror/internal/obs"
	"jsonsqlmirror/internal/schema"
	"jsonsqlmirror/internal/schemadoc"
	"jsonsqlmirror/internal/syncmanager"
)

type globalFlags struct {
	configPath string
	endpoint   string
	timeout    int
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "jsonsqlmirror",
		Short: "Mirrors remote JSONSQL tables into a local SQLite cache",
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "jsonsqlmirror.toml", "Path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&flags.endpoint, "endpoint", "", "JSONSQL remote endpoint (required)")
	rootCmd.PersistentFlags().IntVar(&flags.timeout, "timeout", 300, "Operation timeout in seconds")

	rootCmd.AddCommand(registerCmd(flags))
	rootCmd.AddCommand(syncCmd(flags))
	rootCmd.AddCommand(syncAllCmd(flags))
	rootCmd.AddCommand(statusCmd(flags))
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// engine bundles the catalog, store, registry, and manager every command
// but schemaCmd needs to operate.
type engine struct {
	cfg     config.Config
	cat     *catalog.Catalog
	store   *datastore.Store
	reg     *schema.Registry
	manager *syncmanager.Manager
}

func openEngine(ctx context.Context, flags *globalFlags) (*engine, error) {
	if flags.endpoint == "" {
		return nil, fmt.Errorf("--endpoint is required")
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		cfg = config.Default()
	}

	cat, err := catalog.Open(ctx, cfg.Database.CatalogPath, catalog.DefaultPragmaOptions())
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := cat.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize catalog: %w", err)
	}

	store, err := datastore.Open(ctx, cfg.Database.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open data store: %w", err)
	}

	registry := schema.NewRegistry()
	client := jsonsql.NewHTTPClient(flags.endpoint)
	manager := syncmanager.New(cat, store, registry, client)
	manager.DefaultChunkSize = cfg.Sync.DefaultChunkSize
	manager.DefaultTTL = cfg.Sync.DefaultTTLSeconds
	manager.DefaultStrategy = schema.CacheStrategy(cfg.Sync.DefaultStrategy)

	if cfg.Logging.Path != "" {
		opts := obs.DefaultFileOptions(cfg.Logging.Path)
		opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays = cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays
		if logger, err := obs.New(opts); err == nil {
			manager.SetLogger(logger)
		}
	}

	return &engine{cfg: cfg, cat: cat, store: store, reg: registry, manager: manager}, nil
}

func (e *engine) close() {
	e.cat.Close()
	e.store.Close()
}

func registerCmd(flags *globalFlags) *cobra.Command {
	var fromSchema string
	cmd := &cobra.Command{
		Use:   "register <table>",
		Short: "Introspect a remote table and register it for sync",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
			defer cancel()

			e, err := openEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer e.close()

			table := args[0]
			var s *schema.TableSchema
			if fromSchema != "" {
				if err := schemadoc.LoadFile(fromSchema, e.reg); err != nil {
					return err
				}
				s = e.reg.Get(table)
				if s == nil {
					return fmt.Errorf("schema document %q does not describe table %q", fromSchema, table)
				}
			} else {
				client := jsonsql.NewHTTPClient(flags.endpoint)
				in := introspect.New(client)
				s, err = in.IntrospectTable(ctx, table)
				if err != nil {
					return fmt.Errorf("introspect %q: %w", table, err)
				}
				e.reg.Register(s)
			}

			if err := e.cat.RegisterTable(ctx, s); err != nil {
				return fmt.Errorf("register %q: %w", table, err)
			}
			fmt.Printf("registered %q (%d fields)\n", table, s.TotalFields)
			return nil
		},
	}
	cmd.Flags().StringVar(&fromSchema, "from-schema", "", "Load the table's schema from a document instead of introspecting")
	return cmd
}

func syncCmd(flags *globalFlags) *cobra.Command {
	var strategy string
	var force bool
	cmd := &cobra.Command{
		Use:   "sync <table>",
		Short: "Synchronize one registered table",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
			defer cancel()

			e, err := openEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer e.close()

			if err := loadRegistryFromCatalog(ctx, e); err != nil {
				return err
			}

			result, err := e.manager.SyncTable(ctx, args[0], schema.CacheStrategy(strategy), force, func(p syncmanager.Progress) {
				fmt.Printf("  %s: chunk %d/%d, %d rows\n", p.TableName, p.CompletedChunks, p.TotalChunks, p.RowsSynced)
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "Override the table's configured strategy")
	cmd.Flags().BoolVar(&force, "force", false, "Bypass the freshness gate")
	return cmd
}

func syncAllCmd(flags *globalFlags) *cobra.Command {
	var maxConcurrent int
	cmd := &cobra.Command{
		Use:   "sync-all",
		Short: "Synchronize every registered table",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
			defer cancel()

			e, err := openEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer e.close()

			if err := loadRegistryFromCatalog(ctx, e); err != nil {
				return err
			}

			if !c.Flags().Changed("max-concurrent") {
				maxConcurrent = e.cfg.Sync.DefaultMaxConcurrent
			}
			results := e.manager.SyncAll(ctx, maxConcurrent, nil)
			return printJSON(results)
		},
	}
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 3, "Maximum number of tables synced at once")
	return cmd
}

func statusCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [table]",
		Short: "Report sync status for one table, or all registered tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(flags.timeout)*time.Second)
			defer cancel()

			e, err := openEngine(ctx, flags)
			if err != nil {
				return err
			}
			defer e.close()

			if len(args) == 1 {
				st, err := e.manager.GetSyncStatus(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(st)
			}

			if err := loadRegistryFromCatalog(ctx, e); err != nil {
				return err
			}
			all, err := e.manager.GetAllSyncStatus(ctx)
			if err != nil {
				return err
			}
			return printJSON(all)
		},
	}
	return cmd
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schema", Short: "Load or dump schema documents"}
	cmd.AddCommand(&cobra.Command{
		Use:   "load <document-path>",
		Short: "Validate a schema document by parsing it and listing the tables it describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			registry := schema.NewRegistry()
			if err := schemadoc.LoadFile(args[0], registry); err != nil {
				return err
			}
			return printJSON(registry.ListTables())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "dump <document-path> <table>",
		Short: "Rewrite a schema document so it holds only the named table's schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			registry := schema.NewRegistry()
			if err := schemadoc.LoadFile(args[0], registry); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return schemadoc.SaveFile(args[0], registry, args[1])
		},
	})
	return cmd
}

// loadRegistryFromCatalog hydrates the Registry from every table the
// catalog already knows about, so sync/status commands work without
// re-introspecting on each invocation. Schemas are reconstructed from
// _sync_metadata/_field_mappings, which is enough to drive a sync but
// drops aliases, transformers, relationships, limit and disabled (see
// catalog.LoadSchema); a table already present in the Registry is left
// as it is.
func loadRegistryFromCatalog(ctx context.Context, e *engine) error {
	tables, err := e.cat.ListRegisteredTables(ctx)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if e.reg.Has(table) {
			continue
		}
		s, err := e.cat.LoadSchema(ctx, table)
		if err != nil {
			return err
		}
		e.reg.Register(s)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
