// Package driver hosts the project-level tooling around the interpreter:
// the package.yml manifest, the package.lock lockfile, and dependency
// installation into the local cache.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the manifest's fixed file name.
const ManifestFileName = "package.yml"

// ErrManifestNotFound reports that no package.yml exists in or above a
// starting directory.
var ErrManifestNotFound = errors.New("package.yml not found")

// Manifest represents the parsed contents of package.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Targets      map[string]*TargetSpec
	TargetOrder  []string
	Dependencies map[string]*DependencySpec
}

// TargetSpec describes one runnable or loadable target from the manifest.
type TargetSpec struct {
	Name string
	Type TargetType
	Main string
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeExecutable TargetType = "executable"
	TargetTypeLibrary    TargetType = "library"
)

// IsValid reports whether the target type is recognised.
func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeExecutable, TargetTypeLibrary:
		return true
	default:
		return false
	}
}

// DependencySpec describes a dependency source: a git repository pinned by
// tag, branch, or revision, or a local path override.
type DependencySpec struct {
	Git    string `yaml:"git"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
	Rev    string `yaml:"rev"`
	Path   string `yaml:"path"`
}

func (d *DependencySpec) normalize() {
	d.Git = strings.TrimSpace(d.Git)
	d.Tag = strings.TrimSpace(d.Tag)
	d.Branch = strings.TrimSpace(d.Branch)
	d.Rev = strings.TrimSpace(d.Rev)
	d.Path = strings.TrimSpace(d.Path)
}

func (d *DependencySpec) validate() []string {
	var issues []string
	if d.Path != "" && d.Git != "" {
		issues = append(issues, "path overrides cannot also specify a git source")
	}
	if d.Path == "" && d.Git == "" {
		issues = append(issues, "must specify git or path")
	}
	pins := 0
	for _, pin := range []string{d.Tag, d.Branch, d.Rev} {
		if pin != "" {
			pins++
		}
	}
	if pins > 1 {
		issues = append(issues, "tag, branch, and rev are mutually exclusive")
	}
	if d.Path != "" && pins > 0 {
		issues = append(issues, "path overrides cannot be pinned")
	}
	return issues
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses package.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks upward from dir looking for package.yml.
func FindManifest(dir string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("manifest: resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(current, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrManifestNotFound
		}
		current = parent
	}
}

// Dir returns the directory containing the manifest file.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

var ErrNoExecutableTarget = errors.New("manifest: no executable targets defined")

// DefaultExecutableTarget returns the first executable target in manifest
// order.
func (m *Manifest) DefaultExecutableTarget() (*TargetSpec, error) {
	if m == nil {
		return nil, ErrNoExecutableTarget
	}
	for _, name := range m.TargetOrder {
		if target := m.Targets[name]; target != nil && target.Type == TargetTypeExecutable {
			return target, nil
		}
	}
	return nil, ErrNoExecutableTarget
}

// FindTarget looks a target up by name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	target, ok := m.Targets[strings.TrimSpace(name)]
	return target, ok && target != nil
}

// LibraryEntry resolves the manifest's library target entry script, used
// when this package is loaded as a dependency. A manifest with no library
// target defaults to lib.rox beside the manifest.
func (m *Manifest) LibraryEntry() string {
	for _, name := range m.TargetOrder {
		if target := m.Targets[name]; target != nil && target.Type == TargetTypeLibrary && target.Main != "" {
			return filepath.Join(m.Dir(), filepath.FromSlash(target.Main))
		}
	}
	return filepath.Join(m.Dir(), "lib.rox")
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if strings.TrimSpace(author) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}
	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if target == nil {
			continue
		}
		if target.Type == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q missing type", name))
		} else if !target.Type.IsValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", name, target.Type))
		}
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", name))
		}
	}
	for depName, dep := range m.Dependencies {
		if dep == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: must specify git or path", depName))
			continue
		}
		dep.normalize()
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", depName, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

//-----------------------------------------------------------------------------
// Raw YAML layer
//-----------------------------------------------------------------------------

type manifestFile struct {
	Name         string                     `yaml:"name"`
	Version      string                     `yaml:"version"`
	Authors      []string                   `yaml:"authors"`
	Targets      targetMap                  `yaml:"targets"`
	Dependencies map[string]*DependencySpec `yaml:"dependencies"`
}

type targetYAML struct {
	Type TargetType `yaml:"type"`
	Main string     `yaml:"main"`
}

// targetMap preserves declaration order, which plain map decoding loses.
type targetMap struct {
	names []string
	specs map[string]*targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	tm.specs = make(map[string]*targetYAML, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		spec := new(targetYAML)
		if err := value.Content[i+1].Decode(spec); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		tm.names = append(tm.names, key)
		tm.specs[key] = spec
	}
	return nil
}

func (mf manifestFile) toManifest(path string) *Manifest {
	manifest := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Authors:      append([]string(nil), mf.Authors...),
		Targets:      make(map[string]*TargetSpec, len(mf.Targets.names)),
		TargetOrder:  append([]string(nil), mf.Targets.names...),
		Dependencies: mf.Dependencies,
	}
	if manifest.Dependencies == nil {
		manifest.Dependencies = make(map[string]*DependencySpec)
	}
	for _, name := range mf.Targets.names {
		raw := mf.Targets.specs[name]
		manifest.Targets[name] = &TargetSpec{
			Name: name,
			Type: raw.Type,
			Main: strings.TrimSpace(raw.Main),
		}
	}
	return manifest
}
