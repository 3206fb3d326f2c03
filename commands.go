package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/logging"
	"github.com/ekaya-inc/synmap/pkg/models"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	debug      bool
}

// newRootCommand creates the synmap command tree.
func newRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "synmap",
		Short:        "Map the attributes of a target data model onto the fields of input layers",
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging")

	// Commands load the config only after their flags are parsed.
	load := func() (*app, error) {
		return newApp(opts.configPath, version, opts.debug)
	}

	rootCmd.AddCommand(
		serveCommand(load),
		mcpCommand(load),
		parseSQLCommand(load),
		extractDBCommand(load),
		automapCommand(load),
	)

	return rootCmd
}

func serveCommand(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and the MCP endpoint over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			return a.serve(cmd.Context())
		},
	}
}

func mcpCommand(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()
			return a.mcpServer().ServeStdio()
		},
	}
}

func parseSQLCommand(load func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-sql FILE",
		Short: "Print the class catalog of a SQL model file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			catalog, err := a.catalogService.FromFile(args[0])
			if err != nil {
				return err
			}
			if len(catalog) == 0 {
				return fmt.Errorf("%s: %w", args[0], apperrors.ErrNoClasses)
			}
			return writeJSON(cmd.OutOrStdout(), catalog)
		},
	}
}

// extractDBOptions holds the connection flags of extract-db.
// The password is never a flag; it comes from the environment.
type extractDBOptions struct {
	connection string
	params     models.ConnectionParams
}

func extractDBCommand(load func() (*app, error)) *cobra.Command {
	opts := &extractDBOptions{}

	cmd := &cobra.Command{
		Use:   "extract-db",
		Short: "Print the class catalog of a spatial database as JSON",
		Long: "Connect to a spatial database and describe every registered geometry table as a class.\n" +
			"The password is read from SYNMAP_DB_PASSWORD or PGPASSWORD.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			params, err := a.cfg.ResolveConnection(opts.connection, opts.params)
			if err != nil {
				return err
			}
			if params.Host == "" || params.Database == "" || params.User == "" {
				return fmt.Errorf("host, database and user are required (target %s)", params.String())
			}

			catalog, err := a.catalogService.FromDatabase(cmd.Context(), params)
			if errors.Is(err, apperrors.ErrDependencyMissing) {
				return err
			}
			if err != nil {
				a.logger.Error("Database extraction failed",
					zap.String("target", params.String()),
					zap.String("error", logging.SanitizeError(err)))
				return fmt.Errorf("extract %s: %s", params.String(), logging.SanitizeError(err))
			}
			if len(catalog) == 0 {
				return fmt.Errorf("%s: %w", params.String(), apperrors.ErrNoClasses)
			}
			return writeJSON(cmd.OutOrStdout(), catalog)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.connection, "connection", "", "Name of a saved connection profile")
	flags.StringVar(&opts.params.Type, "type", "", "Datasource type (default postgres)")
	flags.StringVar(&opts.params.Host, "host", "", "Database host")
	flags.IntVar(&opts.params.Port, "port", 0, "Database port (default 5432)")
	flags.StringVar(&opts.params.Database, "database", "", "Database name")
	flags.StringVar(&opts.params.User, "user", "", "Database user")
	flags.StringVar(&opts.params.SSLMode, "ssl-mode", "", "SSL mode (default prefer)")

	return cmd
}

// automapOutput is printed by the automap command.
type automapOutput struct {
	Mapping   *models.AttributeMapping `json:"mapping"`
	Summary   models.MappingSummary    `json:"summary"`
	Threshold int                      `json:"threshold"`
}

func automapCommand(load func() (*app, error)) *cobra.Command {
	var (
		attributes []string
		fields     []string
		threshold  int
	)

	cmd := &cobra.Command{
		Use:   "automap",
		Short: "Propose an attribute to field mapping and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			if len(attributes) == 0 {
				return fmt.Errorf("--attributes is required")
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Mapping.Threshold
			}

			mapping, err := a.autoMapper.Map(attributes, models.FieldSet(fields), a.synonyms, threshold)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), automapOutput{
				Mapping:   mapping,
				Summary:   mapping.Summary(),
				Threshold: threshold,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&attributes, "attributes", nil, "Comma-separated model attributes, in order")
	flags.StringSliceVar(&fields, "fields", nil, "Comma-separated layer fields")
	flags.IntVar(&threshold, "threshold", 0, "Minimum similarity score 0-100 (default from config, normally 70)")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
