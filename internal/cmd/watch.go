package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/ui"
	"github.com/dosanma1/uisys/internal/watch"
)

var (
	watchFlags    targetFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate bindings whenever the header changes",
	Long: `Generate bindings, then watch the header's directory and every
bindings.include_dirs entry for changes to C headers. Changes are debounced
and regenerations never overlap. A failed regeneration is reported and the
watch continues. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "Quiet period before regenerating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	env, err := resolveEnvironment(cmd, &watchFlags)
	if err != nil {
		return err
	}
	console := ui.NewConsole(nil)
	o := env.orchestrator(console, orchestrator.Options{})

	if err := o.Bindings(ctx, &orchestrator.Report{}); err != nil {
		console.Error(err.Error())
	}

	cfg := watch.DefaultConfig(watchDirs(env)...)
	cfg.Debounce = watchDebounce
	w, err := watch.NewWatcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	fmt.Fprintf(console.Writer(), "%s %s\n", ui.IconWatch, ui.TitleStyle.Render(fmt.Sprintf("Watching %v", cfg.Dirs)))
	watch.Loop(ctx, w, func(ctx context.Context, batch []watch.Event) error {
		for _, e := range batch {
			console.Detail(fmt.Sprintf("%s %s", e.Type, e.Path))
		}
		return o.Bindings(ctx, &orchestrator.Report{})
	}, func(err error) {
		console.Error(err.Error())
	})
	return nil
}

// watchDirs returns the header's directory and the include directories,
// resolved and without duplicates.
func watchDirs(env *environment) []string {
	b := env.config.Bindings
	candidates := append([]string{filepath.Dir(b.Header)}, b.IncludeDirs...)

	seen := make(map[string]bool)
	var dirs []string
	for _, dir := range candidates {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(env.workDir, dir)
		}
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
