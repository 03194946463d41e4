package native

// Strategy names how the artifact directory was obtained.
type Strategy string

const (
	// StrategySource means libui was compiled from the source tree.
	StrategySource Strategy = "source"
	// StrategyPrebuilt means a caller-provided library directory is used.
	StrategyPrebuilt Strategy = "prebuilt"
)

// Result is the output of a native build step.
type Result struct {
	// ArtifactDir contains the compiled libui library. It is absolute when
	// the invoker was given an absolute WorkDir.
	ArtifactDir string
	Strategy    Strategy
}

// Progress is notified around long running native build commands.
type Progress interface {
	Start(description string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop()        {}
