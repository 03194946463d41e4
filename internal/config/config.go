package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dosanma1/uisys/pkg/xos"
)

// FileName is the default configuration file name.
const FileName = "uisys.yaml"

// Config represents the uisys.yaml configuration file.
type Config struct {
	// Features are the default build strategy flags.
	Features Features `yaml:"features"`

	Source   SourceConfig   `yaml:"source"`
	Native   NativeConfig   `yaml:"native"`
	Link     LinkConfig     `yaml:"link"`
	Resource ResourceConfig `yaml:"resource"`
	Bindings BindingsConfig `yaml:"bindings"`
	Tools    ToolsConfig    `yaml:"tools"`
}

// SourceConfig locates the libui checkout.
type SourceConfig struct {
	Path string `yaml:"path"`
	// Marker is the file whose presence under Path means the submodule is initialized.
	Marker string `yaml:"marker"`
}

// NativeConfig holds native build settings.
type NativeConfig struct {
	// OutDir is where CMake builds. UISYS_OUT_DIR and --out-dir override it.
	OutDir string `yaml:"out_dir"`
	// PrebuiltDir is used instead of building when the build feature is off.
	PrebuiltDir string `yaml:"prebuilt_dir"`
	// Generator is passed to cmake -G when set.
	Generator string `yaml:"generator,omitempty"`
}

// LinkConfig holds link planning settings.
type LinkConfig struct {
	ToolkitPackage string   `yaml:"toolkit_package"`
	WindowsLibs    []string `yaml:"windows_libs"`
	// CgoPackage is the package clause of the generated cgo flags file.
	CgoPackage string `yaml:"cgo_package"`
}

// ResourceConfig holds Windows resource script settings.
type ResourceConfig struct {
	Script string `yaml:"script"`
	Prefix string `yaml:"prefix"`
}

// BindingsConfig holds binding generation settings.
type BindingsConfig struct {
	Header      string   `yaml:"header"`
	OpaqueTypes []string `yaml:"opaque_types"`
	IncludeDirs []string `yaml:"include_dirs,omitempty"`
	Package     string   `yaml:"package"`
}

// ToolsConfig names the external executables.
type ToolsConfig struct {
	Git          string `yaml:"git"`
	CMake        string `yaml:"cmake"`
	PkgConfig    string `yaml:"pkg_config"`
	Preprocessor string `yaml:"preprocessor"`
}

// DefaultWindowsLibs are the system libraries a static libui needs on Windows.
var DefaultWindowsLibs = []string{
	"comctl32", "ole32", "oleaut32", "d2d1", "uxtheme", "dwrite", "stdc++",
}

// Load reads and parses a uisys.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDefaultConfig(), nil
	}
	return Load(path)
}

// Save writes the config to a file atomically.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := xos.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if filepath.IsAbs(c.Source.Marker) {
		return fmt.Errorf("source.marker must be relative to source.path")
	}
	if c.Native.PrebuiltDir == "" {
		return fmt.Errorf("native.prebuilt_dir is required")
	}
	if c.Link.ToolkitPackage == "" {
		return fmt.Errorf("link.toolkit_package is required")
	}
	for _, lib := range c.Link.WindowsLibs {
		if lib == "" || strings.ContainsAny(lib, " \t") {
			return fmt.Errorf("link.windows_libs: invalid library name %q", lib)
		}
	}
	if c.Resource.Prefix == "" || strings.ContainsAny(c.Resource.Prefix, `/\ `) {
		return fmt.Errorf("resource.prefix must be a bare library name, got %q", c.Resource.Prefix)
	}
	if c.Bindings.Header == "" {
		return fmt.Errorf("bindings.header is required")
	}
	if err := ValidatePackageName(c.Bindings.Package); err != nil {
		return fmt.Errorf("bindings.package: %w", err)
	}
	if err := ValidatePackageName(c.Link.CgoPackage); err != nil {
		return fmt.Errorf("link.cgo_package: %w", err)
	}
	seen := make(map[string]bool)
	for _, name := range c.Bindings.OpaqueTypes {
		if name == "" {
			return fmt.Errorf("bindings.opaque_types: empty type name")
		}
		if seen[name] {
			return fmt.Errorf("bindings.opaque_types: duplicate type %s", name)
		}
		seen[name] = true
	}

	return nil
}

// applyDefaults sets default values for missing fields.
func (c *Config) applyDefaults() {
	d := NewDefaultConfig()
	if c.Source.Path == "" {
		c.Source.Path = d.Source.Path
	}
	if c.Source.Marker == "" {
		c.Source.Marker = d.Source.Marker
	}
	if c.Native.OutDir == "" {
		c.Native.OutDir = d.Native.OutDir
	}
	if c.Native.PrebuiltDir == "" {
		c.Native.PrebuiltDir = d.Native.PrebuiltDir
	}
	if c.Link.ToolkitPackage == "" {
		c.Link.ToolkitPackage = d.Link.ToolkitPackage
	}
	if c.Link.WindowsLibs == nil {
		c.Link.WindowsLibs = d.Link.WindowsLibs
	}
	if c.Link.CgoPackage == "" {
		c.Link.CgoPackage = d.Link.CgoPackage
	}
	if c.Resource.Script == "" {
		c.Resource.Script = d.Resource.Script
	}
	if c.Resource.Prefix == "" {
		c.Resource.Prefix = d.Resource.Prefix
	}
	if c.Bindings.Header == "" {
		c.Bindings.Header = d.Bindings.Header
	}
	if c.Bindings.OpaqueTypes == nil {
		c.Bindings.OpaqueTypes = d.Bindings.OpaqueTypes
	}
	if c.Bindings.Package == "" {
		c.Bindings.Package = d.Bindings.Package
	}
	if c.Tools.Git == "" {
		c.Tools.Git = d.Tools.Git
	}
	if c.Tools.CMake == "" {
		c.Tools.CMake = d.Tools.CMake
	}
	if c.Tools.PkgConfig == "" {
		c.Tools.PkgConfig = d.Tools.PkgConfig
	}
	if c.Tools.Preprocessor == "" {
		c.Tools.Preprocessor = d.Tools.Preprocessor
	}
}

// NewDefaultConfig creates a config matching the libui submodule layout.
func NewDefaultConfig() *Config {
	return &Config{
		Features: Features{Fetch: true, Build: true},
		Source: SourceConfig{
			Path:   "libui",
			Marker: ".git",
		},
		Native: NativeConfig{
			OutDir:      filepath.Join("target", "uisys"),
			PrebuiltDir: "lib",
		},
		Link: LinkConfig{
			ToolkitPackage: "gtk+-3.0",
			WindowsLibs:    append([]string(nil), DefaultWindowsLibs...),
			CgoPackage:     "ui",
		},
		Resource: ResourceConfig{
			Script: "resource.rc",
			Prefix: "resource",
		},
		Bindings: BindingsConfig{
			Header:      "wrapper.h",
			OpaqueTypes: []string{"max_align_t"},
			Package:     "ui",
		},
		Tools: ToolsConfig{
			Git:          "git",
			CMake:        "cmake",
			PkgConfig:    "pkg-config",
			Preprocessor: "cc",
		},
	}
}

// ValidatePackageName checks that name is a usable Go package clause.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name is required")
	}
	if !packagePattern.MatchString(name) {
		return fmt.Errorf("package name %q must be a lowercase Go identifier", name)
	}
	return nil
}
