// Package resolver performs the static scope-resolution pass between
// parsing and evaluation. For every variable, `this`, and `super` reference
// it computes how many lexical scopes outward the binding lives, and it
// validates the scope rules that are cheaper to check once than per
// evaluation. Depths are keyed by node identity, so distinct references to
// the same name (including shadowed ones) resolve independently.
package resolver

import (
	"fmt"

	"rox/interpreter-go/pkg/ast"
)

// Error is a declaration-time failure. Resolution aborts on the first one;
// the program never partially executes.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] resolve error: %s", e.Line, e.Message)
}

// Program is a resolved program: the statements plus the depth annotation
// for every reference that landed in a local scope. References absent from
// Depths resolve against the global frame at run time.
type Program struct {
	Statements []ast.Statement
	Depths     map[ast.Expression]int
}

type functionKind int

const (
	funcNone functionKind = iota
	funcFunction
	funcInitializer
	funcMethod
)

type classKind int

const (
	classNone classKind = iota
	classClass
	classSubclass
)

// Resolver mirrors, at resolution time, the frame nesting the interpreter
// realizes at run time: one scope per block/function, each tracking whether
// a name's initializer has finished resolving.
type Resolver struct {
	scopes      []map[string]bool
	depths      map[ast.Expression]int
	currentFunc functionKind
	currentClas classKind
	loopDepth   int
}

// New returns a resolver with an empty scope stack (the global scope is
// deliberately unmodeled: unresolved names defer to runtime global lookup).
func New() *Resolver {
	return &Resolver{depths: make(map[ast.Expression]int)}
}

// Resolve runs the pass over a whole program.
func Resolve(stmts []ast.Statement) (*Program, error) {
	r := New()
	if err := r.resolveStatements(stmts); err != nil {
		return nil, err
	}
	return &Program{Statements: stmts, Depths: r.depths}, nil
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := r.resolveStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveStatement(node ast.Statement) error {
	switch n := node.(type) {
	case *ast.PrintStatement:
		return r.resolveExpression(n.Expression)
	case *ast.ExpressionStatement:
		return r.resolveExpression(n.Expression)
	case *ast.VarStatement:
		return r.resolveVarStatement(n)
	case *ast.BlockStatement:
		r.beginScope()
		defer r.endScope()
		return r.resolveStatements(n.Statements)
	case *ast.IfStatement:
		if err := r.resolveExpression(n.Condition); err != nil {
			return err
		}
		if err := r.resolveStatement(n.Then); err != nil {
			return err
		}
		if n.Else != nil {
			return r.resolveStatement(n.Else)
		}
		return nil
	case *ast.WhileStatement:
		if err := r.resolveExpression(n.Condition); err != nil {
			return err
		}
		r.loopDepth++
		defer func() { r.loopDepth-- }()
		return r.resolveStatement(n.Body)
	case *ast.ForStatement:
		return r.resolveForStatement(n)
	case *ast.FunctionDeclaration:
		if err := r.declare(n.Name, n.Line); err != nil {
			return err
		}
		// Defined before the body resolves, so the function can call
		// itself recursively.
		r.define(n.Name)
		return r.resolveFunction(n.Params, n.Body, funcFunction)
	case *ast.ReturnStatement:
		return r.resolveReturnStatement(n)
	case *ast.BreakStatement:
		if r.loopDepth == 0 {
			return &Error{Line: n.Line, Message: "cannot use 'break' outside of a loop"}
		}
		return nil
	case *ast.ContinueStatement:
		if r.loopDepth == 0 {
			return &Error{Line: n.Line, Message: "cannot use 'continue' outside of a loop"}
		}
		return nil
	case *ast.ClassDeclaration:
		return r.resolveClassDeclaration(n)
	default:
		return &Error{Message: fmt.Sprintf("unsupported statement type: %s", n.NodeType())}
	}
}

func (r *Resolver) resolveVarStatement(stmt *ast.VarStatement) error {
	// Declared but not yet ready: a reference to the name inside its own
	// initializer is a declaration-time error rather than a silent
	// resolution to the half-initialized slot.
	if err := r.declare(stmt.Name, stmt.Line); err != nil {
		return err
	}
	if stmt.Initializer != nil {
		if err := r.resolveExpression(stmt.Initializer); err != nil {
			return err
		}
	}
	r.define(stmt.Name)
	return nil
}

func (r *Resolver) resolveForStatement(stmt *ast.ForStatement) error {
	// The initializer's scope wraps the whole loop.
	r.beginScope()
	defer r.endScope()
	if stmt.Initializer != nil {
		if err := r.resolveStatement(stmt.Initializer); err != nil {
			return err
		}
	}
	if stmt.Condition != nil {
		if err := r.resolveExpression(stmt.Condition); err != nil {
			return err
		}
	}
	if stmt.Increment != nil {
		if err := r.resolveExpression(stmt.Increment); err != nil {
			return err
		}
	}
	r.loopDepth++
	defer func() { r.loopDepth-- }()
	return r.resolveStatement(stmt.Body)
}

func (r *Resolver) resolveReturnStatement(stmt *ast.ReturnStatement) error {
	if r.currentFunc == funcNone {
		return &Error{Line: stmt.Line, Message: "cannot return from outside of a function or method"}
	}
	if stmt.Value != nil {
		if r.currentFunc == funcInitializer {
			return &Error{Line: stmt.Line, Message: "cannot return a value from an initializer"}
		}
		return r.resolveExpression(stmt.Value)
	}
	return nil
}

func (r *Resolver) resolveClassDeclaration(stmt *ast.ClassDeclaration) error {
	enclosing := r.currentClas
	r.currentClas = classClass
	defer func() { r.currentClas = enclosing }()

	if err := r.declare(stmt.Name, stmt.Line); err != nil {
		return err
	}
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name == stmt.Name {
			return &Error{Line: stmt.Superclass.Line, Message: fmt.Sprintf("class %s cannot inherit from itself", stmt.Name)}
		}
		r.currentClas = classSubclass
		if err := r.resolveExpression(stmt.Superclass); err != nil {
			return err
		}
		// Synthetic scope binding `super` around every method body.
		r.beginScope()
		defer r.endScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	// Synthetic scope binding `this`; methods resolve it via the same
	// depth mechanism as ordinary names.
	r.beginScope()
	defer r.endScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range stmt.Methods {
		kind := funcMethod
		if method.Name == "init" {
			kind = funcInitializer
		}
		if err := r.resolveFunction(method.Params, method.Body, kind); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveFunction(params []string, body []ast.Statement, kind functionKind) error {
	enclosingFunc := r.currentFunc
	enclosingLoops := r.loopDepth
	r.currentFunc = kind
	r.loopDepth = 0
	defer func() {
		r.currentFunc = enclosingFunc
		r.loopDepth = enclosingLoops
	}()

	r.beginScope()
	defer r.endScope()
	for _, param := range params {
		if err := r.declare(param, 0); err != nil {
			return err
		}
		r.define(param)
	}
	return r.resolveStatements(body)
}

func (r *Resolver) resolveExpression(node ast.Expression) error {
	switch n := node.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral, *ast.NilLiteral:
		return nil
	case *ast.Grouping:
		return r.resolveExpression(n.Expression)
	case *ast.UnaryExpression:
		return r.resolveExpression(n.Operand)
	case *ast.BinaryExpression:
		if err := r.resolveExpression(n.Left); err != nil {
			return err
		}
		return r.resolveExpression(n.Right)
	case *ast.LogicalExpression:
		if err := r.resolveExpression(n.Left); err != nil {
			return err
		}
		return r.resolveExpression(n.Right)
	case *ast.VariableExpression:
		if len(r.scopes) > 0 {
			if ready, declared := r.scopes[len(r.scopes)-1][n.Name]; declared && !ready {
				return &Error{Line: n.Line, Message: fmt.Sprintf("cannot read local variable '%s' in its own initializer", n.Name)}
			}
		}
		r.resolveLocal(n, n.Name)
		return nil
	case *ast.AssignExpression:
		if err := r.resolveExpression(n.Value); err != nil {
			return err
		}
		r.resolveLocal(n, n.Name)
		return nil
	case *ast.CallExpression:
		if err := r.resolveExpression(n.Callee); err != nil {
			return err
		}
		for _, arg := range n.Arguments {
			if err := r.resolveExpression(arg); err != nil {
				return err
			}
		}
		return nil
	case *ast.GetExpression:
		// Properties are dynamic; only the object resolves statically.
		return r.resolveExpression(n.Object)
	case *ast.SetExpression:
		if err := r.resolveExpression(n.Value); err != nil {
			return err
		}
		return r.resolveExpression(n.Object)
	case *ast.ThisExpression:
		if r.currentClas == classNone {
			return &Error{Line: n.Line, Message: "cannot use 'this' outside of a class"}
		}
		r.resolveLocal(n, "this")
		return nil
	case *ast.SuperExpression:
		switch r.currentClas {
		case classNone:
			return &Error{Line: n.Line, Message: "cannot use 'super' outside of a class"}
		case classClass:
			return &Error{Line: n.Line, Message: "cannot use 'super' in a class with no superclass"}
		}
		r.resolveLocal(n, "super")
		return nil
	case *ast.FunctionLiteral:
		return r.resolveFunction(n.Params, n.Body, funcFunction)
	default:
		return &Error{Message: fmt.Sprintf("unsupported expression type: %s", n.NodeType())}
	}
}

//-----------------------------------------------------------------------------
// Scope bookkeeping
//-----------------------------------------------------------------------------

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare marks a name as present but not yet ready in the innermost scope.
// At global depth there is no resolution scope: globals are late-bound and
// may be freely re-declared.
func (r *Resolver) declare(name string, line int) error {
	if len(r.scopes) == 0 {
		return nil
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name]; exists {
		return &Error{Line: line, Message: fmt.Sprintf("'%s' has already been declared in this scope", name)}
	}
	scope[name] = false
	return nil
}

// define marks a declared name as ready for reference.
func (r *Resolver) define(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// resolveLocal records the depth of the innermost scope containing the
// name. No hit means the reference is left for runtime global lookup.
func (r *Resolver) resolveLocal(expr ast.Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.depths[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}
