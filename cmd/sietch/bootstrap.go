package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sietch"
	"github.com/pthm/sietch/internal/cli"
	"github.com/pthm/sietch/pkg/pgstore"
)

var (
	bootstrapDB    string
	bootstrapModel string
	bootstrapStore string
	bootstrapOrg   string
	bootstrapAdmin string
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the store, install the model, seed the root admin",
	Long: `Run the one-time setup sequence against the database.

Every step is idempotent, so bootstrap is safe to run at every deploy.
A model validation failure is terminal and leaves the database unchanged
past the store DDL.`,
	Example: `  # Bootstrap from sietch.yaml settings
  sietch bootstrap

  # Explicit everything
  sietch bootstrap --db postgres://localhost/mydb --model model.fga \
    --org default --admin user:alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := resolveString(bootstrapModel, cfg.Model)
		storeName := resolveString(bootstrapStore, cfg.Bootstrap.Store)
		orgID := resolveString(bootstrapOrg, cfg.Bootstrap.Organization)
		adminRef := resolveString(bootstrapAdmin, cfg.Bootstrap.Admin)

		if orgID == "" {
			return cli.ConfigError("root organization is required (use --org or bootstrap.organization)", nil)
		}
		if adminRef == "" {
			return cli.ConfigError("root admin is required (use --admin or bootstrap.admin)", nil)
		}
		admin, err := sietch.ParseObject(adminRef)
		if err != nil {
			return cli.ConfigError("parsing root admin", err)
		}

		model, err := loadModel(modelPath)
		if err != nil {
			return cli.ModelParseError("loading model", err)
		}

		db, err := openDB(bootstrapDB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		boot := sietch.NewBootstrap(pgstore.New(db))
		if _, err := boot.Run(context.Background(), storeName, model, orgID, admin); err != nil {
			if sietch.IsInvalidSchemaErr(err) {
				return cli.ModelParseError("model rejected", err)
			}
			return cli.GeneralError("bootstrap failed", err)
		}

		if !quiet {
			fmt.Printf("Bootstrap complete: store %q is %s.\n", storeName, boot.State())
			fmt.Printf("Root admin %s seeded on organization:%s.\n", admin, orgID)
		}
		return nil
	},
}

func init() {
	f := bootstrapCmd.Flags()
	f.StringVar(&bootstrapDB, "db", "", "database URL")
	f.StringVar(&bootstrapModel, "model", "", "path to model file (.fga or .yaml)")
	f.StringVar(&bootstrapStore, "store", "", "store name")
	f.StringVar(&bootstrapOrg, "org", "", "root organization ID")
	f.StringVar(&bootstrapAdmin, "admin", "", "root admin, e.g. user:alice")
}
