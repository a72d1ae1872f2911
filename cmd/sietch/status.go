package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sietch/internal/cli"
	"github.com/pthm/sietch/pkg/pgstore"
)

var statusDB string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bootstrap state of the database",
	Example: `  sietch status
  sietch status --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(statusDB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		store := pgstore.New(db)
		version, err := store.InstalledVersion(context.Background())
		if err != nil {
			return cli.GeneralError("reading status", err)
		}

		if version == "" {
			fmt.Println("Model:  not installed")
			fmt.Println()
			fmt.Println("Run `sietch bootstrap` to set up this database.")
			return nil
		}
		fmt.Printf("Model:  installed (version %q)\n", version)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusDB, "db", "", "database URL")
}
