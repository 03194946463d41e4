package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate uisys.yaml configuration",
	Long: `Validates uisys.yaml against the embedded JSON Schema, then loads it
to apply the checks the schema cannot express.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(nil)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s not found (run uisys init)", configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	console.Step(fmt.Sprintf("Validating %s...", configPath))

	problems, err := config.ValidateDocument(data)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		console.Error("Validation failed with the following errors:")
		for i, p := range problems {
			console.Detail(fmt.Sprintf("%d. %s", i+1, p))
			console.Detail(fmt.Sprintf("   Type: %s", p.Type))
		}
		return fmt.Errorf("validation failed with %d errors", len(problems))
	}

	if _, err := config.Load(configPath); err != nil {
		return err
	}

	console.Success(fmt.Sprintf("%s is valid!", configPath))
	return nil
}
