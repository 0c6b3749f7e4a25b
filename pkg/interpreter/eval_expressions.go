package interpreter

import (
	"rox/interpreter-go/pkg/ast"
	"rox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Val: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: n.Value}, nil
	case *ast.NilLiteral:
		return runtime.NilValue{}, nil
	case *ast.Grouping:
		return i.evaluateExpression(n.Expression, env)
	case *ast.VariableExpression:
		return i.lookupVariable(n, n.Name, n.Line, env)
	case *ast.AssignExpression:
		value, err := i.evaluateExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := i.assignVariable(n, n.Name, value, n.Line, env); err != nil {
			return nil, err
		}
		return value, nil
	case *ast.UnaryExpression:
		return i.evaluateUnary(n, env)
	case *ast.BinaryExpression:
		return i.evaluateBinary(n, env)
	case *ast.LogicalExpression:
		return i.evaluateLogical(n, env)
	case *ast.CallExpression:
		return i.evaluateCall(n, env)
	case *ast.GetExpression:
		return i.evaluateGet(n, env)
	case *ast.SetExpression:
		return i.evaluateSet(n, env)
	case *ast.ThisExpression:
		return i.lookupVariable(n, "this", n.Line, env)
	case *ast.SuperExpression:
		return i.evaluateSuper(n, env)
	case *ast.FunctionLiteral:
		// Captures the current frame by shared reference, never a copy.
		return &runtime.FunctionValue{Params: n.Params, Body: n.Body, Closure: env}, nil
	default:
		return nil, runtime.NewError(runtime.ErrInternal, "unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) evaluateUnary(expr *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Operand, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, errorAt(expr.Line, runtime.ErrTypeMismatch, "operand of unary '-' must be a number, got %s", operand.Kind())
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case "!":
		return runtime.BoolValue{Val: !runtime.IsTruthy(operand)}, nil
	default:
		return nil, runtime.NewError(runtime.ErrInternal, "unsupported unary operator %q", expr.Operator)
	}
}

func (i *Interpreter) evaluateBinary(expr *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}

	switch expr.Operator {
	case "==":
		return runtime.BoolValue{Val: runtime.Equals(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !runtime.Equals(left, right)}, nil
	case "+":
		// `+` adds numbers or concatenates strings; anything else is a
		// type error at evaluation time.
		if l, ok := left.(runtime.NumberValue); ok {
			if r, ok := right.(runtime.NumberValue); ok {
				return runtime.NumberValue{Val: l.Val + r.Val}, nil
			}
		}
		if l, ok := left.(runtime.StringValue); ok {
			if r, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: l.Val + r.Val}, nil
			}
		}
		return nil, errorAt(expr.Line, runtime.ErrTypeMismatch, "operands of '+' must be two numbers or two strings, got %s and %s", left.Kind(), right.Kind())
	}

	l, r, err := numericOperands(expr, left, right)
	if err != nil {
		return nil, err
	}
	switch expr.Operator {
	case "-":
		return runtime.NumberValue{Val: l - r}, nil
	case "*":
		return runtime.NumberValue{Val: l * r}, nil
	case "/":
		return runtime.NumberValue{Val: l / r}, nil
	case ">":
		return runtime.BoolValue{Val: l > r}, nil
	case ">=":
		return runtime.BoolValue{Val: l >= r}, nil
	case "<":
		return runtime.BoolValue{Val: l < r}, nil
	case "<=":
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, runtime.NewError(runtime.ErrInternal, "unsupported binary operator %q", expr.Operator)
	}
}

func numericOperands(expr *ast.BinaryExpression, left, right runtime.Value) (float64, float64, error) {
	l, lok := left.(runtime.NumberValue)
	r, rok := right.(runtime.NumberValue)
	if !lok || !rok {
		return 0, 0, errorAt(expr.Line, runtime.ErrTypeMismatch, "operands of %q must be numbers, got %s and %s", expr.Operator, left.Kind(), right.Kind())
	}
	return l.Val, r.Val, nil
}

func (i *Interpreter) evaluateLogical(expr *ast.LogicalExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator == "or" {
		if runtime.IsTruthy(left) {
			return left, nil
		}
	} else {
		if !runtime.IsTruthy(left) {
			return left, nil
		}
	}
	return i.evaluateExpression(expr.Right, env)
}

func (i *Interpreter) evaluateCall(call *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		val, err := i.evaluateExpression(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callFunction(fn, args, call.Line)
	case *runtime.NativeFunctionValue:
		if len(args) != fn.Arity() {
			return nil, errorAt(call.Line, runtime.ErrArityMismatch, "%s expects %d arguments, got %d", fn.Name, fn.Arity(), len(args))
		}
		val, err := fn.Impl(args)
		if err != nil {
			return nil, attribute(err, call.Line)
		}
		if val == nil {
			val = runtime.NilValue{}
		}
		return val, nil
	case *runtime.ClassValue:
		return i.instantiate(fn, args, call.Line)
	default:
		return nil, errorAt(call.Line, runtime.ErrNotCallable, "value of type %s is not callable", callee.Kind())
	}
}

// callFunction runs a user closure. The frame chains to the closure's
// captured environment (the definition site, not the call site, which is
// what keeps scoping lexical), binds parameters positionally, and executes
// the body until completion or a return signal.
func (i *Interpreter) callFunction(fn *runtime.FunctionValue, args []runtime.Value, line int) (runtime.Value, error) {
	if len(args) != fn.Arity() {
		name := fn.Name
		if name == "" {
			name = "anonymous function"
		}
		return nil, errorAt(line, runtime.ErrArityMismatch, "%s expects %d arguments, got %d", name, fn.Arity(), len(args))
	}
	if i.callDepth >= maxCallDepth {
		return nil, errorAt(line, runtime.ErrStackOverflow, "call depth exceeded %d frames", maxCallDepth)
	}
	i.callDepth++
	defer func() { i.callDepth-- }()

	frame := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Params {
		frame.Define(param, args[idx])
	}

	err := i.executeBlock(fn.Body, frame)
	if err != nil {
		ret, ok := err.(returnSignal)
		if !ok {
			return nil, err
		}
		if fn.IsInitializer {
			return i.boundThis(fn, line)
		}
		return ret.value, nil
	}
	if fn.IsInitializer {
		return i.boundThis(fn, line)
	}
	return runtime.NilValue{}, nil
}

// boundThis fetches the receiver from an initializer's binding frame;
// initializers always evaluate to their instance, even when invoked again
// through a bound reference.
func (i *Interpreter) boundThis(fn *runtime.FunctionValue, line int) (runtime.Value, error) {
	val, err := fn.Closure.GetAt(0, "this")
	if err != nil {
		return nil, attribute(err, line)
	}
	return val, nil
}

// instantiate allocates an instance and runs the initializer chain when one
// exists. The expression's value is always the new instance.
func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value, line int) (runtime.Value, error) {
	if len(args) != class.Arity() {
		return nil, errorAt(line, runtime.ErrArityMismatch, "%s expects %d arguments, got %d", class.Name, class.Arity(), len(args))
	}
	instance := runtime.NewInstance(class)
	if init := class.FindMethod(runtime.InitializerName); init != nil {
		if _, err := i.callFunction(init.Bind(instance), args, line); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (i *Interpreter) evaluateGet(expr *ast.GetExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, errorAt(expr.Line, runtime.ErrTypeMismatch, "only instances have properties, got %s", obj.Kind())
	}
	val, err := instance.Get(expr.Name)
	if err != nil {
		return nil, attribute(err, expr.Line)
	}
	return val, nil
}

func (i *Interpreter) evaluateSet(expr *ast.SetExpression, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	instance, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, errorAt(expr.Line, runtime.ErrTypeMismatch, "only instances have fields, got %s", obj.Kind())
	}
	value, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	instance.Set(expr.Name, value)
	return value, nil
}

// evaluateSuper resolves the method starting one level above the class that
// defines the surrounding method (the `super` frame's class), then binds
// the current instance. Dispatch goes a single level up even when the
// instance's dynamic class overrides further down.
func (i *Interpreter) evaluateSuper(expr *ast.SuperExpression, env *runtime.Environment) (runtime.Value, error) {
	depth, ok := i.depths[expr]
	if !ok {
		return nil, errorAt(expr.Line, runtime.ErrInternal, "unresolved 'super' reference")
	}
	superVal, err := env.GetAt(depth, "super")
	if err != nil {
		return nil, attribute(err, expr.Line)
	}
	superclass, ok := superVal.(*runtime.ClassValue)
	if !ok {
		return nil, errorAt(expr.Line, runtime.ErrInternal, "'super' bound to non-class value")
	}
	// The `this` frame sits one link inside the `super` frame.
	thisVal, err := env.GetAt(depth-1, "this")
	if err != nil {
		return nil, attribute(err, expr.Line)
	}
	instance, ok := thisVal.(*runtime.InstanceValue)
	if !ok {
		return nil, errorAt(expr.Line, runtime.ErrInternal, "'this' bound to non-instance value")
	}
	method := superclass.FindMethod(expr.Method)
	if method == nil {
		return nil, errorAt(expr.Line, runtime.ErrUndefinedProperty, "undefined method '%s' on superclass %s", expr.Method, superclass.Name)
	}
	return method.Bind(instance), nil
}
