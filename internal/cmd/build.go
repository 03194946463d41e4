package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/ui"
)

var (
	buildFlags     targetFlags
	buildNoCgoFile bool
	buildNoBind    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch, build and bind libui, then print link directives",
	Long: `Run the full pipeline: generate bindings, update the libui sources,
build libui with CMake (or use the prebuilt directory), plan the link and
print the link directives on stdout.

Features come from --fetch/--build/--static, then $UISYS_FEATURES, then
the features section of uisys.yaml.

Examples:
  uisys build                                     # Defaults from uisys.yaml
  uisys build --static                            # Static libui
  uisys build --build=false                       # Use the prebuilt directory
  uisys build --target x86_64-pc-windows-gnu --static
  uisys build --no-cgo-file > link.txt`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildFlags.register(buildCmd)
	buildCmd.Flags().BoolVar(&buildNoCgoFile, "no-cgo-file", false, "Do not write the cgo flags file")
	buildCmd.Flags().BoolVar(&buildNoBind, "no-bindings", false, "Skip binding generation")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := resolveEnvironment(cmd, &buildFlags)
	if err != nil {
		return err
	}

	console := ui.NewConsole(nil)
	console.Title("Building libui")
	env.describe(console)

	o := env.orchestrator(console, orchestrator.Options{
		Directives:   os.Stdout,
		SkipBindings: buildNoBind,
		SkipCgoFile:  buildNoCgoFile,
	})
	report, err := o.Run(ctx)
	if err != nil {
		return err
	}

	if report.Resources {
		console.Detail("resource archive linked")
	}
	if report.CgoFile != "" {
		console.Detail(fmt.Sprintf("cgo flags: %s", report.CgoFile))
	}
	console.Success(fmt.Sprintf("Link plan ready: %d libraries from %s",
		len(report.Plan.Libraries), report.Native.ArtifactDir))
	return nil
}
