// Package project loads and generates diannex project files: the YAML
// document that names the source files to compile and every compiler/CLI
// option that isn't a per-invocation flag.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options is every project-level compiler/output setting, matching
// spec.md §6's recognized option set.
type Options struct {
	CompileFinishMessage string `yaml:"compileFinishMessage"`

	Files []string `yaml:"files"`

	InterpolationEnabled bool `yaml:"interpolationEnabled"`

	BinaryOutputDir string `yaml:"binaryOutputDir"`
	BinaryName      string `yaml:"binaryName"`

	TranslationPrivate       bool   `yaml:"translationPrivate"`
	TranslationPrivateName   string `yaml:"translationPrivateName"`
	TranslationPrivateOutDir string `yaml:"translationPrivateOutDir"`
	TranslationPublic        bool   `yaml:"translationPublic"`
	TranslationPublicName    string `yaml:"translationPublicName"`

	Compression  bool `yaml:"compression"`
	AddStringIDs bool `yaml:"addStringIds"`
	UseStringIDs bool `yaml:"useStringIds"`

	Macros map[string]string `yaml:"macros"`
}

// CompilerOptions adapts Options to lang/compiler.Options without that
// package needing to import this one (it would invert the dependency
// direction the rest of lang/ keeps - lang/* never imports internal/*).
type CompilerOptions struct{ *Options }

func (o CompilerOptions) AddStringIDs() bool { return o.Options.AddStringIDs }
func (o CompilerOptions) HasMacro(name string) bool {
	_, ok := o.Options.Macros[name]
	return ok
}

// Format is the top-level project file document.
type Format struct {
	Name    string   `yaml:"name"`
	Authors []string `yaml:"authors"`
	Options Options  `yaml:"options"`
}

// defaults mirrors the reference compiler's ProjectOptions default values.
func defaults(projectName string) Format {
	return Format{
		Name: projectName,
		Options: Options{
			InterpolationEnabled:     true,
			BinaryOutputDir:          "./out/",
			BinaryName:               projectName,
			TranslationPrivateOutDir: "./translations/",
			TranslationPrivateName:   projectName,
			TranslationPublicName:    projectName,
			Compression:              true,
		},
	}
}

// Load reads and decodes the project file at path, filling in any field the
// document omits with the reference defaults.
func Load(path string) (*Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}

	name := projectNameFromPath(path)
	format := defaults(name)
	if err := yaml.Unmarshal(data, &format); err != nil {
		return nil, fmt.Errorf("project: parse %s: %w", path, err)
	}
	if format.Name == "" {
		format.Name = name
	}
	return &format, nil
}

// Generate writes a fresh project file template named name to path.
func Generate(path, name string) error {
	format := defaults(name)
	format.Options.Files = []string{"main.dx"}

	data, err := yaml.Marshal(&format)
	if err != nil {
		return fmt.Errorf("project: generate %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	return nil
}

func projectNameFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if name := base[:len(base)-len(ext)]; name != "" {
		return name
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return "out"
	}
	return filepath.Base(dir)
}
