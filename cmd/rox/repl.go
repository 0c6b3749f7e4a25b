package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"rox/interpreter-go/pkg/interpreter"
	"rox/interpreter-go/pkg/parser"
	"rox/interpreter-go/pkg/scanner"
)

const (
	historyFileName = ".rox_history"
	promptMain      = "rox> "
	promptCont      = "...> "
)

func runRepl(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(args, " "))
		return exitUsage
	}
	fmt.Fprintf(stdout, "%s\nCtrl+C cancels input, Ctrl+D exits.\n", cliVersion)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	session := interpreter.New()
	session.SetStdout(stdout)

	for {
		chunk, ok := readChunk(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		ln.AppendHistory(chunk)

		prog, code := compile(chunk, stderr)
		if code != exitOK {
			// Report and keep the session alive.
			continue
		}
		if err := session.Interpret(prog); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
		}
	}
}

// readChunk collects lines until they form a syntactically complete chunk,
// probing the parser after every line. Genuinely malformed input is
// returned as-is so evaluation reports the error.
func readChunk(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !needsContinuation(b.String()) {
			return b.String(), true
		}
	}
}

// needsContinuation reports whether the source so far ends mid-construct.
func needsContinuation(source string) bool {
	tokens, err := scanner.Scan(source)
	if err != nil {
		// An unterminated string is a multi-line literal still being typed.
		return scanner.IsIncomplete(err)
	}
	_, err = parser.Parse(tokens)
	return parser.IsIncomplete(err)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}
