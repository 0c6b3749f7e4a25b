package interpreter

import (
	"math"
	"time"

	"rox/interpreter-go/pkg/runtime"
)

// registerGlobals installs the built-in native functions into a fresh
// session's global frame.
func registerGlobals(i *Interpreter) {
	// clock returns milliseconds since the Unix epoch.
	i.RegisterNative("clock", 0, func(args []runtime.Value) (runtime.Value, error) {
		return runtime.NumberValue{Val: float64(time.Now().UnixMilli())}, nil
	})

	// mod is floating-point remainder with the sign of the dividend.
	i.RegisterNative("mod", 2, func(args []runtime.Value) (runtime.Value, error) {
		a, aok := args[0].(runtime.NumberValue)
		b, bok := args[1].(runtime.NumberValue)
		if !aok || !bok {
			return nil, runtime.NewError(runtime.ErrTypeMismatch, "mod expects two numbers, got %s and %s", args[0].Kind(), args[1].Kind())
		}
		return runtime.NumberValue{Val: math.Mod(a.Val, b.Val)}, nil
	})
}
