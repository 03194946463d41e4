package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/ui"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default uisys.yaml",
	Long: `Write uisys.yaml with defaults matching a libui git submodule in ./libui.
An existing file is only replaced after confirmation, or with --force.

Examples:
  uisys init
  uisys init --interactive   # Ask for the header and package names
  uisys init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file without asking")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the main settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	console := ui.NewConsole(nil)

	if _, err := os.Stat(configPath); err == nil && !initForce {
		ok, err := ui.AskConfirm(fmt.Sprintf("%s exists. Overwrite", configPath), false)
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		if !ok {
			console.Warn("Left existing configuration untouched")
			return nil
		}
	}

	cfg := config.NewDefaultConfig()
	if initInteractive {
		if err := askSettings(cfg); err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				return nil
			}
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}

	console.Success(fmt.Sprintf("Wrote %s", configPath))
	return nil
}

func askSettings(cfg *config.Config) error {
	header, err := ui.AskText("C header to bind", cfg.Bindings.Header, func(s string) error {
		if s == "" {
			return errors.New("header is required")
		}
		return nil
	})
	if err != nil {
		return err
	}
	pkg, err := ui.AskText("Go package name", cfg.Bindings.Package, config.ValidatePackageName)
	if err != nil {
		return err
	}
	cfg.Bindings.Header = header
	cfg.Bindings.Package = pkg
	cfg.Link.CgoPackage = pkg
	return nil
}
