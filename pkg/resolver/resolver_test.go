package resolver

import (
	"strings"
	"testing"

	"rox/interpreter-go/pkg/ast"
	"rox/interpreter-go/pkg/parser"
	"rox/interpreter-go/pkg/scanner"
)

func resolveSource(t *testing.T, source string) *Program {
	t.Helper()
	prog, err := tryResolve(t, source)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	return prog
}

func tryResolve(t *testing.T, source string) (*Program, error) {
	t.Helper()
	tokens, err := scanner.Scan(source)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	stmts, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return Resolve(stmts)
}

func expectResolveError(t *testing.T, source, fragment string) *Error {
	t.Helper()
	_, err := tryResolve(t, source)
	if err == nil {
		t.Fatalf("expected a resolve error for %q", source)
	}
	rerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if !strings.Contains(rerr.Message, fragment) {
		t.Fatalf("error %q does not mention %q", rerr.Message, fragment)
	}
	return rerr
}

// depthsByName collects resolved depths keyed by the referenced name, for
// programs where each name is referenced once.
func depthsByName(prog *Program) map[string]int {
	out := make(map[string]int)
	for expr, depth := range prog.Depths {
		switch n := expr.(type) {
		case *ast.VariableExpression:
			out[n.Name] = depth
		case *ast.AssignExpression:
			out[n.Name] = depth
		case *ast.ThisExpression:
			out["this"] = depth
		case *ast.SuperExpression:
			out["super"] = depth
		}
	}
	return out
}

func TestGlobalReferencesHaveNoDepth(t *testing.T) {
	prog := resolveSource(t, `
var a = 1;
print a;
a = 2;
`)
	if len(prog.Depths) != 0 {
		t.Fatalf("globals must defer to runtime lookup, got depths %v", prog.Depths)
	}
}

func TestLocalDepthCounting(t *testing.T) {
	prog := resolveSource(t, `
{
  var a = 1;
  {
    var b = 2;
    print a;
    print b;
  }
}
`)
	depths := depthsByName(prog)
	if depths["a"] != 1 {
		t.Fatalf("expected a at depth 1, got %d", depths["a"])
	}
	if depths["b"] != 0 {
		t.Fatalf("expected b at depth 0, got %d", depths["b"])
	}
}

func TestFunctionParametersResolveAtDepthZero(t *testing.T) {
	prog := resolveSource(t, `
fun id(x) {
  return x;
}
`)
	depths := depthsByName(prog)
	if depths["x"] != 0 {
		t.Fatalf("expected parameter at depth 0, got %d", depths["x"])
	}
}

func TestClosureResolvesThroughFunctionBoundary(t *testing.T) {
	prog := resolveSource(t, `
fun outer() {
  var captured = 1;
  fun inner() {
    return captured;
  }
}
`)
	depths := depthsByName(prog)
	if depths["captured"] != 1 {
		t.Fatalf("expected capture at depth 1, got %d", depths["captured"])
	}
}

func TestShadowedReferencesResolveIndependently(t *testing.T) {
	// Both print statements reference the name "a"; node-identity keying
	// must give them different depths.
	prog := resolveSource(t, `
{
  var a = 1;
  print a;
  {
    var a = 2;
    print a;
  }
}
`)
	seen := map[int]bool{}
	for expr, depth := range prog.Depths {
		if v, ok := expr.(*ast.VariableExpression); ok && v.Name == "a" {
			seen[depth] = true
		}
	}
	if !seen[0] || len(seen) != 1 {
		t.Fatalf("both shadowed references should land at depth 0 of their own scope, got %v", seen)
	}
}

func TestThisAndSuperDepths(t *testing.T) {
	prog := resolveSource(t, `
class Base {
  m() {}
}
class Sub < Base {
  m() {
    print this;
    return super.m;
  }
}
`)
	depths := depthsByName(prog)
	if depths["this"] != 1 {
		t.Fatalf("expected this at depth 1, got %d", depths["this"])
	}
	if depths["super"] != 2 {
		t.Fatalf("expected super at depth 2, got %d", depths["super"])
	}
}

func TestOwnInitializerReferenceIsError(t *testing.T) {
	expectResolveError(t, `
{
  var a = a;
}
`, "its own initializer")
}

func TestDuplicateLocalDeclarationIsError(t *testing.T) {
	expectResolveError(t, `
{
  var a = 1;
  var a = 2;
}
`, "already been declared")
}

func TestGlobalRedeclarationIsAllowed(t *testing.T) {
	resolveSource(t, `
var a = 1;
var a = 2;
`)
}

func TestReturnOutsideFunctionIsError(t *testing.T) {
	expectResolveError(t, `return 1;`, "outside of a function")
}

func TestReturnValueFromInitializerIsError(t *testing.T) {
	expectResolveError(t, `
class C {
  init() {
    return 1;
  }
}
`, "initializer")

	// A bare return in an initializer is allowed.
	resolveSource(t, `
class C {
  init() {
    return;
  }
}
`)
}

func TestThisOutsideClassIsError(t *testing.T) {
	expectResolveError(t, `print this;`, "'this' outside of a class")
	expectResolveError(t, `
fun f() {
  return this;
}
`, "'this' outside of a class")
}

func TestSuperContextErrors(t *testing.T) {
	expectResolveError(t, `
fun f() {
  return super.m();
}
`, "'super' outside of a class")
	expectResolveError(t, `
class NoParent {
  m() {
    return super.m();
  }
}
`, "no superclass")
}

func TestSelfInheritanceIsError(t *testing.T) {
	rerr := expectResolveError(t, `
print "unreachable";
class Loop < Loop {}
`, "cannot inherit from itself")
	if rerr.Line != 3 {
		t.Fatalf("expected error on line 3, got %d", rerr.Line)
	}
}

func TestBreakAndContinueOutsideLoopAreErrors(t *testing.T) {
	expectResolveError(t, `break;`, "'break' outside of a loop")
	expectResolveError(t, `continue;`, "'continue' outside of a loop")

	// A function body resets loop context even inside a loop.
	expectResolveError(t, `
while (true) {
  var f = fun () { break; };
}
`, "'break' outside of a loop")

	resolveSource(t, `
while (true) {
  break;
}
for (;;) {
  continue;
}
`)
}
