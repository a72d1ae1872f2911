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
	writeDB    string
	writeModel string
)

var grantCmd = &cobra.Command{
	Use:   "grant <subject> <relation> <object>",
	Short: "Add a relationship tuple",
	Long: `Add a relationship tuple. Adding a tuple that already exists is a
no-op. The subject may be a plain object (user:alice) or a userset
reference (team:core#member).`,
	Example: `  sietch grant user:alice moderator space:eng
  sietch grant team:core#member moderator space:eng`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(args, true)
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <subject> <relation> <object>",
	Short: "Remove a relationship tuple",
	Long: `Remove a relationship tuple. Removing a tuple that does not exist
is a no-op.`,
	Example: `  sietch revoke user:alice moderator space:eng`,
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWrite(args, false)
	},
}

func runWrite(args []string, add bool) error {
	subject, err := sietch.ParseSubject(args[0])
	if err != nil {
		return cli.GeneralError("parsing subject", err)
	}
	relation := sietch.Relation(args[1])
	object, err := sietch.ParseObject(args[2])
	if err != nil {
		return cli.GeneralError("parsing object", err)
	}
	t := sietch.Tuple{Subject: subject, Relation: relation, Object: object}

	model, err := loadModel(resolveString(writeModel, cfg.Model))
	if err != nil {
		return cli.ModelParseError("loading model", err)
	}
	reg, err := sietch.LoadModel(model)
	if err != nil {
		return cli.ModelParseError("model rejected", err)
	}

	db, err := openDB(writeDB)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := pgstore.New(db)
	store.UseModel(reg)

	rels := sietch.NewRelationships(store)
	ctx := context.Background()
	if add {
		err = rels.ApplyBatch(ctx, []sietch.Tuple{t}, nil)
	} else {
		err = rels.ApplyBatch(ctx, nil, []sietch.Tuple{t})
	}
	if err != nil {
		return cli.GeneralError("writing tuple", err)
	}

	if !quiet {
		if add {
			fmt.Printf("granted: %s\n", t)
		} else {
			fmt.Printf("revoked: %s\n", t)
		}
	}
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{grantCmd, revokeCmd} {
		f := cmd.Flags()
		f.StringVar(&writeDB, "db", "", "database URL")
		f.StringVar(&writeModel, "model", "", "path to model file (.fga or .yaml)")
	}
}
