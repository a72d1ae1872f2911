package main

import (
	"database/sql"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pthm/sietch"
	"github.com/pthm/sietch/internal/cli"
	"github.com/pthm/sietch/pkg/parser"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "sietch",
	Short: "Relationship-Based Access Control",
	Long: `sietch - Relationship-Based Access Control

Sietch stores subject-relation-object tuples in PostgreSQL and answers
permission checks by evaluating the authorization model's rewrite rules
over them.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help/completion/version commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

// Command group IDs
const (
	groupStore   = "store"
	groupTuples  = "tuples"
	groupUtility = "utility"
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover sietch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Define command groups
	rootCmd.AddGroup(
		&cobra.Group{ID: groupStore, Title: "Store:"},
		&cobra.Group{ID: groupTuples, Title: "Tuples:"},
		&cobra.Group{ID: groupUtility, Title: "Utility:"},
	)

	// Store commands
	bootstrapCmd.GroupID = groupStore
	statusCmd.GroupID = groupStore
	validateCmd.GroupID = groupStore
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(validateCmd)

	// Tuple commands
	checkCmd.GroupID = groupTuples
	grantCmd.GroupID = groupTuples
	revokeCmd.GroupID = groupTuples
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(revokeCmd)

	// Utility commands
	versionCmd.GroupID = groupUtility
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveDSN gets the database DSN from flag or config.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return "", cli.ConfigError("database configuration", err)
	}
	if dsn == "" {
		return "", cli.ConfigError("database URL is required (use --db or set in config)", nil)
	}
	return dsn, nil
}

// openDB connects to the database named by flagDSN or config.
func openDB(flagDSN string) (*sql.DB, error) {
	dsn, err := resolveDSN(flagDSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, cli.DBConnectError("connecting to database", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	return db, nil
}

// loadModel reads the model file, dispatching on extension: .fga files go
// through the OpenFGA DSL parser, everything else is treated as the YAML
// form.
func loadModel(path string) (sietch.Model, error) {
	if filepath.Ext(path) == ".fga" {
		return parser.ParseModel(path)
	}
	return sietch.LoadModelFile(path)
}
