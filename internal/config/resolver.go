package config

import (
	"fmt"
	"regexp"

	"github.com/dosanma1/uisys/internal/platform"
)

// Environment variables consulted by the resolver.
const (
	EnvFeatures = "UISYS_FEATURES"
	EnvOutDir   = "UISYS_OUT_DIR"
)

var packagePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Overrides carries values given on the command line. Nil pointers and
// empty strings mean "not given".
type Overrides struct {
	Fetch  *bool
	Build  *bool
	Static *bool
	OutDir string
}

// Resolver handles configuration precedence: CLI flags > environment > uisys.yaml.
type Resolver struct {
	config *Config
	env    platform.Env
}

// NewResolver creates a new configuration resolver.
func NewResolver(config *Config, env platform.Env) *Resolver {
	return &Resolver{
		config: config,
		env:    env,
	}
}

// ResolveFeatures resolves the build strategy.
// Precedence per flag: CLI flag > UISYS_FEATURES > features in uisys.yaml.
func (r *Resolver) ResolveFeatures(o Overrides) (Features, error) {
	f := r.config.Features

	if list, ok := r.env(EnvFeatures); ok {
		parsed, err := ParseFeatures(list)
		if err != nil {
			return Features{}, fmt.Errorf("%s: %w", EnvFeatures, err)
		}
		f = parsed
	}

	if o.Fetch != nil {
		f.Fetch = *o.Fetch
	}
	if o.Build != nil {
		f.Build = *o.Build
	}
	if o.Static != nil {
		f.Static = *o.Static
	}
	return f, nil
}

// ResolveOutDir resolves the run-scoped output directory.
// Precedence: CLI flag > UISYS_OUT_DIR > native.out_dir.
func (r *Resolver) ResolveOutDir(o Overrides) string {
	if o.OutDir != "" {
		return o.OutDir
	}
	if dir, ok := r.env(EnvOutDir); ok && dir != "" {
		return dir
	}
	return r.config.Native.OutDir
}

// ResolveTarget resolves the target triple. A triple given on the command
// line wins over UISYS_TARGET, which wins over the host triple. A missing
// target OS tag is inferred from the triple.
func (r *Resolver) ResolveTarget(triple, osTag string) platform.Triple {
	raw := triple
	if raw == "" {
		raw, _ = r.env(platform.EnvTarget)
	}
	if raw == "" {
		raw = platform.DefaultTriple()
	}

	tag := osTag
	if tag == "" {
		tag, _ = r.env(platform.EnvTargetOS)
	}
	if tag == "" {
		tag = platform.InferOS(raw)
	}

	return platform.Detect(platform.MapEnv(map[string]string{
		platform.EnvTarget:   raw,
		platform.EnvTargetOS: tag,
	}))
}
