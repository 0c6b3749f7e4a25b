package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockFileName)

	lock := NewLockfile("demo", "rox-cli test")
	lock.Put(LockedPackage{Name: "mathlib", Source: "git:https://example.com/mathlib.git", Rev: "abc123"})
	lock.Put(LockedPackage{Name: "local", Source: "path:../local"})

	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path, "demo", "rox-cli test")
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Package != "demo" || len(loaded.Packages) != 2 {
		t.Fatalf("unexpected lockfile %#v", loaded)
	}
	pkg, ok := loaded.Find("mathlib")
	if !ok || pkg.Rev != "abc123" {
		t.Fatalf("unexpected entry %#v", pkg)
	}
}

func TestLoadLockfileMissingYieldsFresh(t *testing.T) {
	lock, err := LoadLockfile(filepath.Join(t.TempDir(), LockFileName), "demo", "gen")
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if lock.Package != "demo" || len(lock.Packages) != 0 {
		t.Fatalf("expected a fresh lockfile, got %#v", lock)
	}
}

func TestLockfilePutReportsChange(t *testing.T) {
	lock := NewLockfile("demo", "gen")
	entry := LockedPackage{Name: "dep", Source: "path:../dep"}
	if !lock.Put(entry) {
		t.Fatalf("first insert must report a change")
	}
	if lock.Put(entry) {
		t.Fatalf("identical re-insert must not report a change")
	}
	entry.Rev = "def456"
	if !lock.Put(entry) {
		t.Fatalf("updated entry must report a change")
	}
}

func TestLockfilePutKeepsSortedOrder(t *testing.T) {
	lock := NewLockfile("demo", "gen")
	lock.Put(LockedPackage{Name: "zeta", Source: "path:z"})
	lock.Put(LockedPackage{Name: "alpha", Source: "path:a"})
	if lock.Packages[0].Name != "alpha" || lock.Packages[1].Name != "zeta" {
		t.Fatalf("entries must stay sorted: %#v", lock.Packages)
	}
}

func TestLockfilePrune(t *testing.T) {
	lock := NewLockfile("demo", "gen")
	lock.Put(LockedPackage{Name: "keep", Source: "path:k"})
	lock.Put(LockedPackage{Name: "drop", Source: "path:d"})

	declared := map[string]*DependencySpec{"keep": {Path: "k"}}
	if !lock.Prune(declared) {
		t.Fatalf("prune must report the dropped entry")
	}
	if len(lock.Packages) != 1 || lock.Packages[0].Name != "keep" {
		t.Fatalf("unexpected entries %#v", lock.Packages)
	}
	if lock.Prune(declared) {
		t.Fatalf("second prune must be a no-op")
	}
}

func TestInstallPathDependency(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	depDir := filepath.Join(root, "dep")
	for _, dir := range []string{appDir, depDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	manifestPath := writeManifest(t, appDir, `
name: app
dependencies:
  dep:
    path: ../dep
`)
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	lock := NewLockfile(manifest.Name, "gen")
	installer := NewInstaller(manifest, filepath.Join(root, "cache"))
	changed, logs, err := installer.Install(lock, false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed {
		t.Fatalf("expected the lockfile to change")
	}
	if len(logs) != 1 {
		t.Fatalf("expected one log line, got %v", logs)
	}
	pkg, ok := lock.Find("dep")
	if !ok || pkg.Source != "path:../dep" || pkg.Rev != "" {
		t.Fatalf("unexpected entry %#v", pkg)
	}
	if got := installer.DependencyDir("dep"); got != depDir {
		t.Fatalf("expected %s, got %s", depDir, got)
	}
}

func TestInstallPathDependencyMissingDirectory(t *testing.T) {
	appDir := t.TempDir()
	manifestPath := writeManifest(t, appDir, `
name: app
dependencies:
  ghost:
    path: ../nowhere
`)
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(appDir, "cache"))
	if _, _, err := installer.Install(NewLockfile("app", "gen"), false); err == nil {
		t.Fatalf("expected an error for a missing path dependency")
	}
}

func TestEntryScript(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
name: dep
targets:
  lib:
    type: library
    main: src/entry.rox
`)
	entry, err := EntryScript(dir)
	if err != nil {
		t.Fatalf("EntryScript: %v", err)
	}
	if entry != filepath.Join(dir, "src", "entry.rox") {
		t.Fatalf("unexpected entry %q", entry)
	}

	plain := t.TempDir()
	entry, err = EntryScript(plain)
	if err != nil {
		t.Fatalf("EntryScript: %v", err)
	}
	if entry != filepath.Join(plain, "lib.rox") {
		t.Fatalf("expected lib.rox fallback, got %q", entry)
	}
}
