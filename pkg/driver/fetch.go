package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// cacheDirEnv overrides where cloned dependencies live.
const cacheDirEnv = "ROX_HOME"

// DefaultCacheDir resolves the dependency cache root: $ROX_HOME/cache when
// set, otherwise ~/.rox/cache.
func DefaultCacheDir() (string, error) {
	if root := os.Getenv(cacheDirEnv); root != "" {
		return filepath.Join(root, "cache"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("fetch: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rox", "cache"), nil
}

// Installer materializes a manifest's dependencies on disk and keeps the
// lockfile in sync.
type Installer struct {
	manifest *Manifest
	cacheDir string
}

// NewInstaller creates an installer cloning into cacheDir.
func NewInstaller(manifest *Manifest, cacheDir string) *Installer {
	return &Installer{manifest: manifest, cacheDir: cacheDir}
}

// Install ensures every declared dependency is present, recording each
// resolved source in the lockfile. With update set, git dependencies are
// re-cloned even when a cached copy exists; otherwise locked revisions are
// reused. It reports whether the lockfile changed, plus a human-readable
// log line per dependency.
func (in *Installer) Install(lock *Lockfile, update bool) (bool, []string, error) {
	changed := lock.Prune(in.manifest.Dependencies)
	var logs []string

	names := make([]string, 0, len(in.manifest.Dependencies))
	for name := range in.manifest.Dependencies {
		names = append(names, name)
	}
	// Stable order keeps logs and lockfile writes deterministic.
	sort.Strings(names)

	for _, name := range names {
		dep := in.manifest.Dependencies[name]
		var (
			entry LockedPackage
			err   error
		)
		if dep.Path != "" {
			entry, err = in.installPath(name, dep)
		} else {
			entry, err = in.installGit(name, dep, lock, update)
		}
		if err != nil {
			return changed, logs, fmt.Errorf("fetch: dependency %s: %w", name, err)
		}
		if lock.Put(entry) {
			changed = true
		}
		logs = append(logs, fmt.Sprintf("resolved %s (%s)", name, entry.Source))
	}
	return changed, logs, nil
}

// DependencyDir returns where an installed dependency's sources live.
func (in *Installer) DependencyDir(name string) string {
	if dep, ok := in.manifest.Dependencies[name]; ok && dep.Path != "" {
		return in.resolvePath(dep.Path)
	}
	return filepath.Join(in.cacheDir, name)
}

func (in *Installer) installPath(name string, dep *DependencySpec) (LockedPackage, error) {
	dir := in.resolvePath(dep.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return LockedPackage{}, fmt.Errorf("path %s: %w", dep.Path, err)
	}
	if !info.IsDir() {
		return LockedPackage{}, fmt.Errorf("path %s is not a directory", dep.Path)
	}
	return LockedPackage{Name: name, Source: "path:" + dep.Path}, nil
}

func (in *Installer) installGit(name string, dep *DependencySpec, lock *Lockfile, update bool) (LockedPackage, error) {
	dest := filepath.Join(in.cacheDir, name)

	if update {
		if err := os.RemoveAll(dest); err != nil {
			return LockedPackage{}, fmt.Errorf("clear cache %s: %w", dest, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		// Cached clone; trust the locked revision when present.
		if locked, ok := lock.Find(name); ok && locked.Rev != "" {
			return locked, nil
		}
		rev, err := headRevision(dest)
		if err != nil {
			return LockedPackage{}, err
		}
		return LockedPackage{Name: name, Source: "git:" + dep.Git, Rev: rev}, nil
	}

	if err := os.MkdirAll(in.cacheDir, 0o755); err != nil {
		return LockedPackage{}, fmt.Errorf("create cache %s: %w", in.cacheDir, err)
	}

	options := &git.CloneOptions{URL: dep.Git}
	switch {
	case dep.Tag != "":
		options.ReferenceName = plumbing.NewTagReferenceName(dep.Tag)
		options.SingleBranch = true
	case dep.Branch != "":
		options.ReferenceName = plumbing.NewBranchReferenceName(dep.Branch)
		options.SingleBranch = true
	}

	repo, err := git.PlainClone(dest, false, options)
	if err != nil {
		os.RemoveAll(dest)
		return LockedPackage{}, fmt.Errorf("clone %s: %w", dep.Git, err)
	}

	// A requested revision (or a previously locked one, absent update)
	// overrides whatever the clone checked out.
	rev := dep.Rev
	if rev == "" && !update {
		if locked, ok := lock.Find(name); ok {
			rev = locked.Rev
		}
	}
	if rev != "" {
		worktree, err := repo.Worktree()
		if err != nil {
			return LockedPackage{}, fmt.Errorf("worktree %s: %w", dest, err)
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(rev)}); err != nil {
			return LockedPackage{}, fmt.Errorf("checkout %s at %s: %w", dep.Git, rev, err)
		}
		return LockedPackage{Name: name, Source: "git:" + dep.Git, Rev: rev}, nil
	}

	head, err := repo.Head()
	if err != nil {
		return LockedPackage{}, fmt.Errorf("resolve head of %s: %w", dep.Git, err)
	}
	return LockedPackage{Name: name, Source: "git:" + dep.Git, Rev: head.Hash().String()}, nil
}

func (in *Installer) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(in.manifest.Dir(), filepath.FromSlash(path))
}

func headRevision(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("open cached clone %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve head of %s: %w", dir, err)
	}
	return head.Hash().String(), nil
}

// EntryScript resolves the script to preload when a directory is consumed
// as a dependency: the library target of its manifest when one exists,
// lib.rox otherwise.
func EntryScript(dir string) (string, error) {
	manifestPath := filepath.Join(dir, ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return "", err
		}
		return manifest.LibraryEntry(), nil
	}
	return filepath.Join(dir, "lib.rox"), nil
}
