package runtime

import (
	"fmt"
	"strconv"

	"rox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBool
	KindNil
	KindFunction
	KindNativeFunction
	KindClass
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNil:
		return "nil"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// Callable is a value that can appear as a call's callee: user closures,
// native functions, and classes (whose call is instantiation).
type Callable interface {
	Value
	Arity() int
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

//-----------------------------------------------------------------------------
// Functions & closures
//-----------------------------------------------------------------------------

// FunctionValue is a user-defined closure: parameter names, body, and the
// environment frame that was live at its definition site. The frame is held
// by reference; closures created at different times from the same frame see
// each other's mutations.
type FunctionValue struct {
	Name          string // empty for anonymous functions
	Params        []string
	Body          []ast.Statement
	Closure       *Environment
	IsInitializer bool
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int { return len(v.Params) }

// Bind wraps this function's closure with a fresh frame defining `this` as
// the receiver. One frame per bind: concurrent or recursive calls to the
// same method never share a receiver binding, and a method extracted as a
// plain value keeps resolving `this` to the instance it came from.
func (v *FunctionValue) Bind(receiver *InstanceValue) *FunctionValue {
	env := NewEnvironment(v.Closure)
	env.Define("this", receiver)
	return &FunctionValue{
		Name:          v.Name,
		Params:        v.Params,
		Body:          v.Body,
		Closure:       env,
		IsInitializer: v.IsInitializer,
	}
}

// NativeFunc is the host side of a native function: fixed arity, takes and
// returns values of the runtime model.
type NativeFunc func(args []Value) (Value, error)

// NativeFunctionValue is always handled through a pointer: like closures,
// two natives are equal only when they are the same binding.
type NativeFunctionValue struct {
	Name    string
	NumArgs int
	Impl    NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

func (v *NativeFunctionValue) Arity() int { return v.NumArgs }

//-----------------------------------------------------------------------------
// Classes & instances
//-----------------------------------------------------------------------------

// InitializerName is the method name a class's constructor must use.
const InitializerName = "init"

// ClassValue holds the method table and an optional single parent. Methods
// live on the class; instances only store fields.
type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (v *ClassValue) Kind() Kind { return KindClass }

// Arity follows the initializer's parameter count; a class without an
// initializer is called with zero arguments.
func (v *ClassValue) Arity() int {
	if init := v.FindMethod(InitializerName); init != nil {
		return init.Arity()
	}
	return 0
}

// FindMethod walks the superclass chain outward from this class.
func (v *ClassValue) FindMethod(name string) *FunctionValue {
	for class := v; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method
		}
	}
	return nil
}

// InstanceValue is one object: a class pointer plus its own mutable fields.
// Fields are dynamic and independent of the method table.
type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (v *InstanceValue) Kind() Kind { return KindInstance }

// Get resolves a property: the instance's own fields shadow methods; a
// method hit is bound to this instance before being returned.
func (v *InstanceValue) Get(name string) (Value, error) {
	if val, ok := v.Fields[name]; ok {
		return val, nil
	}
	if method := v.Class.FindMethod(name); method != nil {
		return method.Bind(v), nil
	}
	return nil, NewError(ErrUndefinedProperty, "undefined property '%s' on %s instance", name, v.Class.Name)
}

// Set always writes the instance's own field mapping, regardless of any
// method with the same name.
func (v *InstanceValue) Set(name string, value Value) {
	v.Fields[name] = value
}

//-----------------------------------------------------------------------------
// Stringification & predicates
//-----------------------------------------------------------------------------

// Stringify renders a value the way `print` shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case NilValue:
		return "nil"
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case NumberValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case StringValue:
		return val.Val
	case *FunctionValue:
		if val.Name == "" {
			return "[fn]"
		}
		return fmt.Sprintf("[fn %s]", val.Name)
	case *NativeFunctionValue:
		return fmt.Sprintf("[native fn %s]", val.Name)
	case *ClassValue:
		return fmt.Sprintf("[ctor %s]", val.Name)
	case *InstanceValue:
		return fmt.Sprintf("[instance %s]", val.Class.Name)
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}

// IsTruthy follows the language's truthiness rule: nil and false are falsey,
// everything else is truthy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return val.Val
	default:
		return true
	}
}

// Equals compares scalars by value and everything else by identity.
func Equals(a, b Value) bool {
	switch left := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case NumberValue:
		right, ok := b.(NumberValue)
		return ok && left.Val == right.Val
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	default:
		return a == b
	}
}
