package interpreter

import (
	"io"
	"os"

	"rox/interpreter-go/pkg/ast"
	"rox/interpreter-go/pkg/resolver"
	"rox/interpreter-go/pkg/runtime"
)

// maxCallDepth bounds language-level call nesting so runaway recursion
// surfaces as a StackOverflow runtime error instead of exhausting the host
// stack.
const maxCallDepth = 1024

// Interpreter is one evaluation session: a global frame pre-populated with
// native functions, plus the depth annotations accumulated from every
// resolved chunk fed to Interpret. Separate sessions never share bindings.
type Interpreter struct {
	globals   *runtime.Environment
	depths    map[ast.Expression]int
	stdout    io.Writer
	callDepth int
}

// New returns an interpreter session with the standard natives registered.
func New() *Interpreter {
	i := &Interpreter{
		globals: runtime.NewEnvironment(nil),
		depths:  make(map[ast.Expression]int),
		stdout:  os.Stdout,
	}
	registerGlobals(i)
	return i
}

// GlobalEnvironment returns the session's global frame.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.globals
}

// SetStdout redirects `print` output (tests and embedding hosts).
func (i *Interpreter) SetStdout(w io.Writer) {
	i.stdout = w
}

// RegisterNative binds a host function into the global frame before (or
// between) interpretation runs. The only contract is fixed arity in, one
// runtime value out.
func (i *Interpreter) RegisterNative(name string, arity int, impl runtime.NativeFunc) {
	i.globals.Define(name, &runtime.NativeFunctionValue{Name: name, NumArgs: arity, Impl: impl})
}

// Interpret executes a resolved program's top-level statements in order
// against the session's global frame. The first runtime error halts the run
// and is returned as the single reported failure; the session itself stays
// usable (REPL hosts keep feeding it resolved chunks).
func (i *Interpreter) Interpret(prog *resolver.Program) error {
	for expr, depth := range prog.Depths {
		i.depths[expr] = depth
	}
	for _, stmt := range prog.Statements {
		if err := i.executeStatement(stmt, i.globals); err != nil {
			return signalToError(err)
		}
	}
	return nil
}

// signalToError converts a stray control signal into a reported failure.
// The resolver rejects return/break/continue outside their contexts, so
// these paths guard against internal inconsistencies only.
func signalToError(err error) error {
	switch err.(type) {
	case returnSignal:
		return runtime.NewError(runtime.ErrInternal, "return outside function")
	case breakSignal, continueSignal:
		return runtime.NewError(runtime.ErrInternal, "loop exit outside loop")
	default:
		return err
	}
}

//-----------------------------------------------------------------------------
// Control-flow signals
//-----------------------------------------------------------------------------

// Non-local control transfer is modeled as error values that unwind to the
// nearest function call (return) or enclosing loop (break/continue). They
// are invisible to everything but that boundary.

type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

//-----------------------------------------------------------------------------
// Variable addressing
//-----------------------------------------------------------------------------

// lookupVariable uses the resolver's depth annotation when one exists and
// falls back to the global frame otherwise. Globals stay late-bound:
// mutually recursive top-level functions may reference names defined after
// them.
func (i *Interpreter) lookupVariable(expr ast.Expression, name string, line int, env *runtime.Environment) (runtime.Value, error) {
	if depth, ok := i.depths[expr]; ok {
		val, err := env.GetAt(depth, name)
		if err != nil {
			return nil, attribute(err, line)
		}
		return val, nil
	}
	val, err := i.globals.Get(name)
	if err != nil {
		return nil, attribute(err, line)
	}
	return val, nil
}

func (i *Interpreter) assignVariable(expr ast.Expression, name string, value runtime.Value, line int, env *runtime.Environment) error {
	if depth, ok := i.depths[expr]; ok {
		if err := env.AssignAt(depth, name, value); err != nil {
			return attribute(err, line)
		}
		return nil
	}
	if err := i.globals.Assign(name, value); err != nil {
		return attribute(err, line)
	}
	return nil
}

// attribute pins a runtime error to the source line of the node that
// triggered it, leaving already-attributed errors untouched.
func attribute(err error, line int) error {
	if rerr, ok := err.(*runtime.Error); ok {
		return rerr.At(line)
	}
	return err
}

func errorAt(line int, code runtime.ErrorCode, format string, args ...any) error {
	return runtime.NewError(code, format, args...).At(line)
}
