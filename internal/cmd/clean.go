package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/ui"
)

var cleanFlags targetFlags

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory",
	Long: `Remove the output directory, including the CMake build tree, the
generated bindings and the cgo flags file. The libui sources and the
prebuilt directory are never touched.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&cleanFlags.outDir, "out-dir", "", "Output directory (default $UISYS_OUT_DIR or native.out_dir)")
}

func runClean(cmd *cobra.Command, args []string) error {
	env, err := resolveEnvironment(cmd, &cleanFlags)
	if err != nil {
		return err
	}
	console := ui.NewConsole(nil)

	dir, err := cleanTarget(env.workDir, env.outDir, env.config.Source.Path, env.config.Native.PrebuiltDir)
	if err != nil {
		return err
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		console.Detail(fmt.Sprintf("%s does not exist", dir))
		return nil
	}
	console.Step(fmt.Sprintf("Removing %s...", dir))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	console.Success("Clean completed successfully")
	return nil
}

// cleanTarget resolves the output directory and refuses one that would take
// the project, the libui sources or the prebuilt directory with it.
func cleanTarget(workDir, outDir string, protected ...string) (string, error) {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(workDir, p)
	}
	dir := abs(outDir)
	if contains(dir, filepath.Clean(workDir)) {
		return "", fmt.Errorf("refusing to remove %s: it contains the project directory %s", dir, workDir)
	}
	for _, p := range protected {
		if p == "" {
			continue
		}
		if keep := abs(p); contains(dir, keep) {
			return "", fmt.Errorf("refusing to remove %s: it contains %s", dir, keep)
		}
	}
	return dir, nil
}

// contains reports whether path is root or lies below it.
func contains(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
