package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amirhossein-jamali/graph-migrator/internal/infrastructure/config"
)

// options holds the persistent flag values shared by every command. Empty
// values fall through to the configuration file and environment variables.
type options struct {
	path           string
	uri            string
	username       string
	password       string
	project        string
	database       string
	schemaDatabase string
}

// override applies non-empty flag values on top of the loaded configuration
func (o *options) override(cfg *config.Config) {
	if o.path != "" {
		cfg.Migrations.Path = o.path
	}
	if o.uri != "" {
		cfg.Neo4j.URI = o.uri
	}
	if o.username != "" {
		cfg.Neo4j.Username = o.username
	}
	if o.password != "" {
		cfg.Neo4j.Password = o.password
	}
	if o.project != "" {
		cfg.Migrations.Project = o.project
	}
	if o.database != "" {
		cfg.Migrations.Database = o.database
	}
	if o.schemaDatabase != "" {
		cfg.Migrations.SchemaDatabase = o.schemaDatabase
	}
}

// NewRootCommand builds the graph-migrator command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "graph-migrator",
		Short: "Versioned migrations for graph databases",
		Long: `graph-migrator applies versioned Cypher migrations to a graph store and
records them as a chain of __Migration nodes inside the store itself.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.path, "path", "", "directory containing the migration scripts")
	flags.StringVar(&opts.uri, "uri", "", "bolt URI of the graph store")
	flags.StringVarP(&opts.username, "username", "u", "", "user to connect as")
	flags.StringVarP(&opts.password, "password", "p", "", "password of the connecting user")
	flags.StringVar(&opts.project, "project", "", "project name keeping this chain apart from others")
	flags.StringVar(&opts.database, "database", "", "database the migrations run against")
	flags.StringVar(&opts.schemaDatabase, "schema-database", "", "database holding the migration chain when it differs from the migrated one")

	cmd.AddCommand(
		newAnalyzeCommand(opts),
		newMigrateCommand(opts),
		newRollbackCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
