package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/spf13/cobra"

	"github.com/aretw0/stile/internal/validator"
	loamadapter "github.com/aretw0/stile/pkg/adapters/loam"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check flow catalogs for consistency",
	Long:  `Lints every step document of the given flows and reports unknown kinds, dangling references, and invalid conditions.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Flows are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		dir = args[0]
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	repo, err := loam.Init(absDir,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to open flow directory: %w", err)
	}

	// No explicit flow: lint everything the directory declares.
	var flows []string
	if cmd.Flags().Changed("flow") {
		flow, _ := cmd.Flags().GetString("flow")
		flows = append(flows, flow)
	} else {
		source := loamadapter.New(loam.NewTypedRepository[loamadapter.StepMetadata](repo))
		flows, err = source.Flows(cmd.Context())
		if err != nil {
			return err
		}
		if len(flows) == 0 {
			return fmt.Errorf("no flows found in %s", dir)
		}
	}

	for _, flow := range flows {
		fmt.Printf("Validating flow '%s'...\n", flow)
		if err := validator.ValidateFlow(repo, flow); err != nil {
			return err
		}
	}

	return nil
}
