// Package config parses tsconfig-style project files: compiler options, the
// vueCompilerOptions block, root file discovery via files/include/exclude,
// project references and extends chains.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CompilerOptions holds the host compiler settings this module inspects. Any
// other keys found under compilerOptions are kept in Raw.
type CompilerOptions struct {
	NoEmit              bool   `mapstructure:"noEmit"`
	EmitDeclarationOnly bool   `mapstructure:"emitDeclarationOnly"`
	NoEmitOnError       bool   `mapstructure:"noEmitOnError"`
	ExtendedDiagnostics bool   `mapstructure:"extendedDiagnostics"`
	GenerateTrace       string `mapstructure:"generateTrace"`
	Declaration         bool   `mapstructure:"declaration"`
	OutDir              string `mapstructure:"outDir"`
	RootDir             string `mapstructure:"rootDir"`
	Strict              bool   `mapstructure:"strict"`
	Target              string `mapstructure:"target"`

	// ConfigFilePath is the file these options were read from, empty when
	// they came from the command line alone.
	ConfigFilePath string `mapstructure:"-"`

	Raw map[string]any `mapstructure:"-"`
}

// VueCompilerOptions is the vueCompilerOptions block.
type VueCompilerOptions struct {
	// Target is the framework version the templates are checked against.
	Target float64 `mapstructure:"target"`
	// Extensions lists extra file extensions treated as components.
	Extensions      []string `mapstructure:"extensions"`
	StrictTemplates bool     `mapstructure:"strictTemplates"`
	// Hooks are references to extension hooks run, in order, before each
	// compilation pass.
	Hooks []string `mapstructure:"hooks"`
}

// ComponentExtensions returns ".vue" plus any configured extensions.
func (o *VueCompilerOptions) ComponentExtensions() []string {
	exts := []string{".vue"}
	if o == nil {
		return exts
	}
	for _, ext := range o.Extensions {
		if ext == "" || ext == ".vue" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// ProjectReference points at another project config.
type ProjectReference struct {
	Path string `mapstructure:"path"`
}

// ParsedCommandLine is the result of Parse.
type ParsedCommandLine struct {
	Options           *CompilerOptions
	VueOptions        *VueCompilerOptions
	FileNames         []string
	ProjectReferences []ProjectReference
}

// ConfigNames are the project file names Find looks for, in order.
var ConfigNames = []string{"tsconfig.json", "jsconfig.json"}

// maxExtendsDepth bounds extends chains.
const maxExtendsDepth = 16

// Parse reads the project file at path and discovers its root files.
func Parse(path string) (*ParsedCommandLine, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	settings, err := loadSettings(abs, 0)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("config: merge %s: %w", abs, err)
	}

	opts := &CompilerOptions{}
	if err := v.UnmarshalKey("compilerOptions", opts); err != nil {
		return nil, fmt.Errorf("config: compilerOptions in %s: %w", abs, err)
	}
	opts.ConfigFilePath = abs
	opts.Raw = v.GetStringMap("compilerOptions")

	vueOpts := &VueCompilerOptions{}
	if err := v.UnmarshalKey("vueCompilerOptions", vueOpts); err != nil {
		return nil, fmt.Errorf("config: vueCompilerOptions in %s: %w", abs, err)
	}

	var refs []ProjectReference
	if err := v.UnmarshalKey("references", &refs); err != nil {
		return nil, fmt.Errorf("config: references in %s: %w", abs, err)
	}
	dir := filepath.Dir(abs)
	for i := range refs {
		if !filepath.IsAbs(refs[i].Path) {
			refs[i].Path = filepath.Join(dir, refs[i].Path)
		}
	}

	files, err := discoverFiles(dir, fileSpec{
		files:    v.GetStringSlice("files"),
		include:  v.GetStringSlice("include"),
		exclude:  v.GetStringSlice("exclude"),
		hasFiles: v.IsSet("files"),
	}, supportedExtensions(vueOpts))
	if err != nil {
		return nil, fmt.Errorf("config: discover files for %s: %w", abs, err)
	}

	return &ParsedCommandLine{
		Options:           opts,
		VueOptions:        vueOpts,
		FileNames:         files,
		ProjectReferences: refs,
	}, nil
}

// VueOptions returns only the vueCompilerOptions of the project at path. An
// empty path yields empty options.
func VueOptions(path string) (*VueCompilerOptions, error) {
	if path == "" {
		return &VueCompilerOptions{}, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	settings, err := loadSettings(abs, 0)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("config: merge %s: %w", abs, err)
	}
	vueOpts := &VueCompilerOptions{}
	if err := v.UnmarshalKey("vueCompilerOptions", vueOpts); err != nil {
		return nil, fmt.Errorf("config: vueCompilerOptions in %s: %w", abs, err)
	}
	return vueOpts, nil
}

// Find walks up from dir looking for one of ConfigNames. Returns "" if none
// is found.
func Find(dir string) string {
	for {
		for _, name := range ConfigNames {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadSettings reads one config file and folds its extends chain underneath
// it. Keys come back lower-cased, as viper stores them.
func loadSettings(path string, depth int) (map[string]any, error) {
	if depth > maxExtendsDepth {
		return nil, fmt.Errorf("config: extends chain deeper than %d at %s", maxExtendsDepth, path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	settings := v.AllSettings()

	base := v.GetString("extends")
	if base == "" {
		return settings, nil
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(filepath.Dir(path), base)
	}
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		base += ".json"
	}
	parent, err := loadSettings(base, depth+1)
	if err != nil {
		return nil, fmt.Errorf("config: extends of %s: %w", path, err)
	}
	// files/include/exclude are relative to the file that declares them, so
	// they are never inherited.
	for _, key := range []string{"files", "include", "exclude", "references", "extends"} {
		delete(parent, key)
	}
	return mergeSettings(parent, settings), nil
}

// mergeSettings overlays child onto parent. Nested maps merge key by key;
// any other child value replaces the parent's.
func mergeSettings(parent, child map[string]any) map[string]any {
	out := make(map[string]any, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, cv := range child {
		pm, pok := out[k].(map[string]any)
		cm, cok := cv.(map[string]any)
		if pok && cok {
			out[k] = mergeSettings(pm, cm)
			continue
		}
		out[k] = cv
	}
	return out
}
