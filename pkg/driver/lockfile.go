package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LockFileName is the lockfile's fixed file name, written beside package.yml.
const LockFileName = "package.lock"

// Lockfile records the exact dependency sources a package was last
// installed against, so later installs reproduce the same tree.
type Lockfile struct {
	Package   string          `yaml:"package"`
	Generator string          `yaml:"generator"`
	Packages  []LockedPackage `yaml:"packages"`
}

// LockedPackage pins one dependency. Source is "git:<url>" or
// "path:<path>"; Rev is the resolved commit hash for git sources.
type LockedPackage struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Rev    string `yaml:"rev,omitempty"`
}

// NewLockfile creates an empty lockfile for the named package.
func NewLockfile(packageName, generator string) *Lockfile {
	return &Lockfile{Package: packageName, Generator: generator}
}

// Find returns the locked entry for a dependency name.
func (l *Lockfile) Find(name string) (LockedPackage, bool) {
	if l == nil {
		return LockedPackage{}, false
	}
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return LockedPackage{}, false
}

// Put inserts or replaces a locked entry, reporting whether anything
// changed. Entries stay sorted by name so the written file is stable.
func (l *Lockfile) Put(pkg LockedPackage) bool {
	for i, existing := range l.Packages {
		if existing.Name == pkg.Name {
			if existing == pkg {
				return false
			}
			l.Packages[i] = pkg
			return true
		}
	}
	l.Packages = append(l.Packages, pkg)
	sort.Slice(l.Packages, func(i, j int) bool {
		return l.Packages[i].Name < l.Packages[j].Name
	})
	return true
}

// Prune drops locked entries whose names are no longer declared, reporting
// whether anything was removed.
func (l *Lockfile) Prune(declared map[string]*DependencySpec) bool {
	kept := l.Packages[:0]
	changed := false
	for _, pkg := range l.Packages {
		if _, ok := declared[pkg.Name]; ok {
			kept = append(kept, pkg)
		} else {
			changed = true
		}
	}
	l.Packages = kept
	return changed
}

// LoadLockfile reads package.lock. A missing file yields a fresh lockfile
// rather than an error.
func LoadLockfile(path, packageName, generator string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLockfile(packageName, generator), nil
		}
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	return &lock, nil
}

// WriteLockfile writes the lockfile atomically beside its final path.
func WriteLockfile(lock *Lockfile, path string) error {
	data, err := yaml.Marshal(lock)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".package.lock.*")
	if err != nil {
		return fmt.Errorf("lockfile: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("lockfile: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("lockfile: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("lockfile: rename to %s: %w", path, err)
	}
	return nil
}

// LockfilePathFor returns the lockfile path for a manifest.
func LockfilePathFor(m *Manifest) string {
	return filepath.Join(m.Dir(), LockFileName)
}
