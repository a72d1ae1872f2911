package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sietch"
	"github.com/pthm/sietch/internal/cli"
)

var validateModelPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a model file",
	Long: `Parse and validate a model file without touching the database.

Catches undefined relation references, tupleset relations that are not
directly assignable, and relation alias cycles.`,
	Example: `  sietch validate --model model.fga
  sietch validate --model model.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveString(validateModelPath, cfg.Model)

		model, err := loadModel(path)
		if err != nil {
			return cli.ModelParseError("loading model", err)
		}
		reg, err := sietch.LoadModel(model)
		if err != nil {
			return cli.ModelParseError("model rejected", err)
		}

		if !quiet {
			fmt.Printf("Model is valid (version %q).\n", reg.Version())
			for _, objectType := range reg.ObjectTypes() {
				fmt.Printf("  - %s (%d relations)\n", objectType, len(reg.Relations(objectType)))
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateModelPath, "model", "", "path to model file (.fga or .yaml)")
}
