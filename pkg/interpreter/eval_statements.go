package interpreter

import (
	"fmt"

	"rox/interpreter-go/pkg/ast"
	"rox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) executeStatement(node ast.Statement, env *runtime.Environment) error {
	switch n := node.(type) {
	case *ast.PrintStatement:
		val, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, runtime.Stringify(val))
		return nil
	case *ast.ExpressionStatement:
		_, err := i.evaluateExpression(n.Expression, env)
		return err
	case *ast.VarStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Initializer != nil {
			val, err := i.evaluateExpression(n.Initializer, env)
			if err != nil {
				return err
			}
			value = val
		}
		env.Define(n.Name, value)
		return nil
	case *ast.BlockStatement:
		return i.executeBlock(n.Statements, runtime.NewEnvironment(env))
	case *ast.IfStatement:
		cond, err := i.evaluateExpression(n.Condition, env)
		if err != nil {
			return err
		}
		if runtime.IsTruthy(cond) {
			return i.executeStatement(n.Then, env)
		}
		if n.Else != nil {
			return i.executeStatement(n.Else, env)
		}
		return nil
	case *ast.WhileStatement:
		return i.executeWhile(n, env)
	case *ast.ForStatement:
		return i.executeFor(n, env)
	case *ast.FunctionDeclaration:
		fn := &runtime.FunctionValue{Name: n.Name, Params: n.Params, Body: n.Body, Closure: env}
		env.Define(n.Name, fn)
		return nil
	case *ast.ReturnStatement:
		var value runtime.Value = runtime.NilValue{}
		if n.Value != nil {
			val, err := i.evaluateExpression(n.Value, env)
			if err != nil {
				return err
			}
			value = val
		}
		return returnSignal{value: value}
	case *ast.BreakStatement:
		return breakSignal{}
	case *ast.ContinueStatement:
		return continueSignal{}
	case *ast.ClassDeclaration:
		return i.executeClassDeclaration(n, env)
	default:
		return runtime.NewError(runtime.ErrInternal, "unsupported statement type: %s", n.NodeType())
	}
}

// executeBlock runs statements against an already-created frame. Callers
// own the frame so functions can pre-bind parameters.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if err := i.executeStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) executeWhile(loop *ast.WhileStatement, env *runtime.Environment) error {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return err
		}
		if !runtime.IsTruthy(cond) {
			return nil
		}
		if err := i.executeStatement(loop.Body, env); err != nil {
			switch err.(type) {
			case breakSignal:
				return nil
			case continueSignal:
				continue
			default:
				return err
			}
		}
	}
}

func (i *Interpreter) executeFor(loop *ast.ForStatement, env *runtime.Environment) error {
	// The initializer's frame wraps the whole loop, mirroring the
	// resolver's scope layout.
	loopEnv := runtime.NewEnvironment(env)
	if loop.Initializer != nil {
		if err := i.executeStatement(loop.Initializer, loopEnv); err != nil {
			return err
		}
	}
	for {
		if loop.Condition != nil {
			cond, err := i.evaluateExpression(loop.Condition, loopEnv)
			if err != nil {
				return err
			}
			if !runtime.IsTruthy(cond) {
				return nil
			}
		}
		if err := i.executeStatement(loop.Body, loopEnv); err != nil {
			switch err.(type) {
			case breakSignal:
				return nil
			case continueSignal:
				// fall through to the increment clause
			default:
				return err
			}
		}
		if loop.Increment != nil {
			if _, err := i.evaluateExpression(loop.Increment, loopEnv); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) executeClassDeclaration(decl *ast.ClassDeclaration, env *runtime.Environment) error {
	var superclass *runtime.ClassValue
	if decl.Superclass != nil {
		val, err := i.lookupVariable(decl.Superclass, decl.Superclass.Name, decl.Superclass.Line, env)
		if err != nil {
			return err
		}
		sc, ok := val.(*runtime.ClassValue)
		if !ok {
			return errorAt(decl.Superclass.Line, runtime.ErrInvalidSuperclass, "superclass of %s must be a class, got %s", decl.Name, val.Kind())
		}
		superclass = sc
	}

	// Two-step define/assign lets method bodies reference the class by
	// name through their closure.
	env.Define(decl.Name, runtime.NilValue{})

	// Method closures capture the class's defining environment, wrapped
	// with a `super` frame when a superclass exists. `this` is never in
	// here; it is injected per bind.
	methodEnv := env
	if superclass != nil {
		methodEnv = runtime.NewEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(decl.Methods))
	for _, method := range decl.Methods {
		methods[method.Name] = &runtime.FunctionValue{
			Name:          method.Name,
			Params:        method.Params,
			Body:          method.Body,
			Closure:       methodEnv,
			IsInitializer: method.Name == runtime.InitializerName,
		}
	}

	class := &runtime.ClassValue{Name: decl.Name, Superclass: superclass, Methods: methods}
	if err := env.Assign(decl.Name, class); err != nil {
		return attribute(err, decl.Line)
	}
	return nil
}
