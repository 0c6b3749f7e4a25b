package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rox/interpreter-go/pkg/driver"
	"rox/interpreter-go/pkg/interpreter"
	"rox/interpreter-go/pkg/parser"
	"rox/interpreter-go/pkg/resolver"
	"rox/interpreter-go/pkg/scanner"
)

const cliVersion = "rox-cli 0.1.0"

// Exit codes. 65 and 70 follow the BSD sysexits convention for bad source
// and runtime failure respectively.
const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 2
	exitSourceError  = 65
	exitRuntimeError = 70
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliVersion)
		return exitOK
	case "run":
		return runEntry(args[1:], stdout, stderr)
	case "repl":
		return runRepl(args[1:], stdout, stderr)
	case "deps":
		return runDeps(args[1:], stdout, stderr)
	default:
		// Bare `rox script.rox` works like `rox run script.rox`.
		if strings.HasSuffix(args[0], ".rox") {
			return runEntry(args, stdout, stderr)
		}
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return exitUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `usage: rox <command> [arguments]

commands:
  run [target|file.rox]  run a manifest target or a source file
  repl                   start an interactive session
  deps install           fetch dependencies and write package.lock
  deps update            re-fetch dependencies and refresh package.lock
  version                print the CLI version
  help                   print this message
`)
}

func runEntry(args []string, stdout, stderr io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return exitUsage
	}

	manifest := discoverManifest(".", stderr)

	var entry string
	switch {
	case len(args) == 0:
		if manifest == nil {
			fmt.Fprintln(stderr, "rox run requires a manifest target or source file (package.yml not found)")
			return exitFailure
		}
		target, err := manifest.DefaultExecutableTarget()
		if err != nil {
			fmt.Fprintf(stderr, "manifest error: %v\n", err)
			return exitFailure
		}
		entry = filepath.Join(manifest.Dir(), filepath.FromSlash(target.Main))
	case manifest != nil && targetExists(manifest, args[0]):
		target, _ := manifest.FindTarget(args[0])
		entry = filepath.Join(manifest.Dir(), filepath.FromSlash(target.Main))
	default:
		entry = args[0]
		// A script inside another package runs with that package's
		// dependencies.
		if abs, err := filepath.Abs(entry); err == nil {
			if path, err := driver.FindManifest(filepath.Dir(abs)); err == nil {
				if m, err := driver.LoadManifest(path); err == nil {
					manifest = m
				}
			}
		}
	}

	session := interpreter.New()
	session.SetStdout(stdout)

	if manifest != nil {
		if code := preloadDependencies(session, manifest, stderr); code != exitOK {
			return code
		}
	}
	return executeScript(session, entry, stderr)
}

func targetExists(manifest *driver.Manifest, name string) bool {
	_, ok := manifest.FindTarget(name)
	return ok
}

func discoverManifest(dir string, stderr io.Writer) *driver.Manifest {
	path, err := driver.FindManifest(dir)
	if err != nil {
		return nil
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		fmt.Fprintf(stderr, "warning: unable to load manifest (%v)\n", err)
		return nil
	}
	return manifest
}

// preloadDependencies runs each installed dependency's entry script in the
// session, so the main script sees its declarations as globals.
func preloadDependencies(session *interpreter.Interpreter, manifest *driver.Manifest, stderr io.Writer) int {
	if len(manifest.Dependencies) == 0 {
		return exitOK
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	installer := driver.NewInstaller(manifest, cacheDir)
	lock, err := driver.LoadLockfile(driver.LockfilePathFor(manifest), manifest.Name, cliVersion)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	for _, name := range dependencyNames(manifest) {
		if _, ok := lock.Find(name); !ok {
			fmt.Fprintf(stderr, "dependency %s is not installed (run `rox deps install`)\n", name)
			return exitFailure
		}
		entry, err := driver.EntryScript(installer.DependencyDir(name))
		if err != nil {
			fmt.Fprintf(stderr, "dependency %s: %v\n", name, err)
			return exitFailure
		}
		if code := executeScript(session, entry, stderr); code != exitOK {
			return code
		}
	}
	return exitOK
}

func dependencyNames(manifest *driver.Manifest) []string {
	names := make([]string, 0, len(manifest.Dependencies))
	for name := range manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// executeScript runs one source file in the session, reporting scan, parse,
// and resolve failures as source errors and evaluation failures as runtime
// errors.
func executeScript(session *interpreter.Interpreter, path string, stderr io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "cannot read %s: %v\n", path, err)
		return exitFailure
	}
	prog, code := compile(string(source), stderr)
	if code != exitOK {
		return code
	}
	if err := session.Interpret(prog); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitRuntimeError
	}
	return exitOK
}

// compile takes source through the scan, parse, and resolve phases.
func compile(source string, stderr io.Writer) (*resolver.Program, int) {
	tokens, err := scanner.Scan(source)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return nil, exitSourceError
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return nil, exitSourceError
	}
	prog, err := resolver.Resolve(stmts)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return nil, exitSourceError
	}
	return prog, exitOK
}

func runDeps(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 || (args[0] != "install" && args[0] != "update") {
		fmt.Fprintln(stderr, "usage: rox deps <install|update>")
		return exitUsage
	}
	update := args[0] == "update"

	path, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}

	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	lockPath := driver.LockfilePathFor(manifest)
	lock, err := driver.LoadLockfile(lockPath, manifest.Name, cliVersion)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}

	installer := driver.NewInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock, update)
	for _, line := range logs {
		fmt.Fprintln(stdout, line)
	}
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	if changed {
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
		fmt.Fprintf(stdout, "wrote %s\n", filepath.Base(lockPath))
	} else {
		fmt.Fprintln(stdout, "dependencies up to date")
	}
	return exitOK
}

