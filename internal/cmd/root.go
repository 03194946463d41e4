package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/config"
)

// Version is set at build time with -ldflags "-X".
var Version = "0.1.0"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "uisys",
	Short: "uisys - build, bind and link libui from Go",
	Long: `uisys prepares the libui native GUI library for a Go package.

It fetches and builds libui (or uses a prebuilt copy), generates purego
bindings from its C header, and prints the link directives a Go build needs.
Status goes to stderr; stdout carries only link directives.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "Path to uisys.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Stream output of external tools")
}
