package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/ui"
	"github.com/dosanma1/uisys/pkg/dl"
)

var (
	checkFlags  targetFlags
	checkNoLoad bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the libui artifacts a build points at",
	Long: `Check that the artifact directory holds the primary libui library for
the resolved target and link mode. For a dynamic library built for this
machine, also load it and confirm it exports every function the bindings
declare.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkFlags.register(checkCmd)
	checkCmd.Flags().BoolVar(&checkNoLoad, "no-load", false, "Only check that the library file exists")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := resolveEnvironment(cmd, &checkFlags)
	if err != nil {
		return err
	}
	console := ui.NewConsole(nil)
	env.describe(console)
	o := env.orchestrator(console, orchestrator.Options{})

	var load orchestrator.Loader
	if !checkNoLoad {
		load = openLibrary
	}
	report, err := o.Check(ctx, load)
	if err != nil {
		return err
	}
	if !report.Loaded {
		console.Warn(fmt.Sprintf("exports of %s not checked", report.Library))
	}
	return nil
}

func openLibrary(path string) (orchestrator.Symbols, error) {
	lib, err := dl.Open(path)
	if err != nil {
		return nil, err
	}
	return lib, nil
}
