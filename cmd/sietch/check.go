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
	checkDB    string
	checkModel string
)

var checkCmd = &cobra.Command{
	Use:   "check <subject> <relation> <object>",
	Short: "Evaluate a permission check",
	Long: `Evaluate whether subject holds relation on object.

The model file supplies the rewrite rules; tuples are read from the
database. Exit code 0 means allowed, 5 means denied, anything else is a
failure.`,
	Example: `  sietch check user:alice create_app space:eng
  sietch check user:bob admin organization:default`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := sietch.ParseObject(args[0])
		if err != nil {
			return cli.GeneralError("parsing subject", err)
		}
		relation := sietch.Relation(args[1])
		object, err := sietch.ParseObject(args[2])
		if err != nil {
			return cli.GeneralError("parsing object", err)
		}

		model, err := loadModel(resolveString(checkModel, cfg.Model))
		if err != nil {
			return cli.ModelParseError("loading model", err)
		}
		reg, err := sietch.LoadModel(model)
		if err != nil {
			return cli.ModelParseError("model rejected", err)
		}

		db, err := openDB(checkDB)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		checker := sietch.NewChecker(reg, pgstore.New(db))
		allowed, err := checker.Check(context.Background(), subject, relation, object)
		if err != nil {
			return cli.GeneralError("check failed", err)
		}

		if !allowed {
			if !quiet {
				fmt.Printf("denied: %s %s %s\n", subject, relation, object)
			}
			return cli.DeniedError()
		}
		if !quiet {
			fmt.Printf("allowed: %s %s %s\n", subject, relation, object)
		}
		return nil
	},
}

func init() {
	f := checkCmd.Flags()
	f.StringVar(&checkDB, "db", "", "database URL")
	f.StringVar(&checkModel, "model", "", "path to model file (.fga or .yaml)")
}
