package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/ui"
)

var bindgenFlags targetFlags

var bindgenCmd = &cobra.Command{
	Use:   "bindgen",
	Short: "Generate Go bindings from the libui header",
	Long: `Parse bindings.header and write purego bindings to the output
directory. Type sizes and layout follow the C ABI of the target, and the
C compiler for the target supplies predefined macros and include paths.`,
	RunE: runBindgen,
}

func init() {
	rootCmd.AddCommand(bindgenCmd)
	bindgenFlags.register(bindgenCmd)
}

func runBindgen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := resolveEnvironment(cmd, &bindgenFlags)
	if err != nil {
		return err
	}
	console := ui.NewConsole(nil)
	o := env.orchestrator(console, orchestrator.Options{})
	return o.Bindings(ctx, &orchestrator.Report{})
}
