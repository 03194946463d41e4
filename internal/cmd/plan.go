package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/ui"
)

var (
	planFlags   targetFlags
	planCgoFile bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the link plan without fetching or building",
	Long: `Compute the link plan for the resolved target and features and print
its directives on stdout. Nothing is fetched, built or compiled; the search
path is where a build with the same features would put libui.

pkg-config is still consulted for static Unix-like targets.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planFlags.register(planCmd)
	planCmd.Flags().BoolVar(&planCgoFile, "cgo-file", false, "Also write the cgo flags file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := resolveEnvironment(cmd, &planFlags)
	if err != nil {
		return err
	}

	console := ui.NewConsole(nil)
	env.describe(console)

	o := env.orchestrator(console, orchestrator.Options{
		Directives:   os.Stdout,
		SkipBindings: true,
		SkipCgoFile:  !planCgoFile,
	})
	report, err := o.Plan(ctx)
	if err != nil {
		return err
	}

	console.Detail(fmt.Sprintf("artifacts: %s (%s)", report.Native.ArtifactDir, report.Native.Strategy))
	for _, lib := range report.Plan.Libraries {
		console.Detail(fmt.Sprintf("  %s (%s)", lib.Name, lib.Kind))
	}
	if report.CgoFile != "" {
		console.Success(fmt.Sprintf("cgo flags written to %s", report.CgoFile))
	}
	return nil
}
