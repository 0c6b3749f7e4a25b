package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"rox/interpreter-go/pkg/runtime"
)

func TestUndefinedVariableError(t *testing.T) {
	rerr := expectRuntimeError(t, `print missing;`, runtime.ErrUndefinedVariable)
	if !strings.Contains(rerr.Message, "missing") {
		t.Fatalf("error should name the variable: %v", rerr)
	}
}

func TestUndefinedAssignTargetError(t *testing.T) {
	expectRuntimeError(t, `missing = 1;`, runtime.ErrUndefinedVariable)
}

func TestNotCallableError(t *testing.T) {
	expectRuntimeError(t, `var x = 1; x();`, runtime.ErrNotCallable)
	expectRuntimeError(t, `"text"();`, runtime.ErrNotCallable)
}

func TestArityMismatchError(t *testing.T) {
	expectRuntimeError(t, `
fun pair(a, b) { return a; }
pair(1);
`, runtime.ErrArityMismatch)
	expectRuntimeError(t, `
class P { init(x) {} }
P(1, 2);
`, runtime.ErrArityMismatch)
	expectRuntimeError(t, `mod(1);`, runtime.ErrArityMismatch)
}

func TestInvalidSuperclassError(t *testing.T) {
	expectRuntimeError(t, `
var NotAClass = "oops";
class Sub < NotAClass {}
`, runtime.ErrInvalidSuperclass)
}

func TestUndefinedPropertyError(t *testing.T) {
	expectRuntimeError(t, `
class Empty {}
print Empty().anything;
`, runtime.ErrUndefinedProperty)
	expectRuntimeError(t, `
class Base {}
class Sub < Base {
  method() { return super.nothing(); }
}
Sub().method();
`, runtime.ErrUndefinedProperty)
}

func TestTypeMismatchErrors(t *testing.T) {
	expectRuntimeError(t, `print -"text";`, runtime.ErrTypeMismatch)
	expectRuntimeError(t, `print 1 + "text";`, runtime.ErrTypeMismatch)
	expectRuntimeError(t, `print true * 2;`, runtime.ErrTypeMismatch)
	expectRuntimeError(t, `print 1 < "a";`, runtime.ErrTypeMismatch)
	expectRuntimeError(t, `var x = 1; print x.field;`, runtime.ErrTypeMismatch)
	expectRuntimeError(t, `var x = 1; x.field = 2;`, runtime.ErrTypeMismatch)
}

func TestStackOverflowError(t *testing.T) {
	expectRuntimeError(t, `
fun loop() { return loop(); }
loop();
`, runtime.ErrStackOverflow)
}

func TestErrorCarriesSourceLine(t *testing.T) {
	rerr := expectRuntimeError(t, `var ok = 1;

print broken;
`, runtime.ErrUndefinedVariable)
	if rerr.Line != 3 {
		t.Fatalf("expected error on line 3, got %d (%v)", rerr.Line, rerr)
	}
	if !strings.Contains(rerr.Error(), "[line 3]") {
		t.Fatalf("rendered error should show the line: %q", rerr.Error())
	}
}

func TestErrorHaltsExecutionAtFailurePoint(t *testing.T) {
	prog := resolveSource(t, `
print "before";
print missing;
print "after";
`)
	var out bytes.Buffer
	interp := New()
	interp.SetStdout(&out)
	if err := interp.Interpret(prog); err == nil {
		t.Fatalf("expected a runtime error")
	}
	got := strings.TrimSpace(out.String())
	if got != "before" {
		t.Fatalf("output past the failure point: %q", got)
	}
}

func TestSessionUsableAfterError(t *testing.T) {
	interp := New()
	var out bytes.Buffer
	interp.SetStdout(&out)

	if err := interp.Interpret(resolveSource(t, `var n = 41;`)); err != nil {
		t.Fatalf("setup chunk failed: %v", err)
	}
	if err := interp.Interpret(resolveSource(t, `print missing;`)); err == nil {
		t.Fatalf("expected a runtime error")
	}
	if err := interp.Interpret(resolveSource(t, `print n + 1;`)); err != nil {
		t.Fatalf("session should survive an error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "42" {
		t.Fatalf("expected 42, got %q", got)
	}
}
