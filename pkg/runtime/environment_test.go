package runtime

import (
	"reflect"
	"testing"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("a", NumberValue{Val: 1})

	val, err := env.Get("a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if num, ok := val.(NumberValue); !ok || num.Val != 1 {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestGetWalksParentChain(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", StringValue{Val: "global"})
	inner := NewEnvironment(NewEnvironment(global))

	val, err := inner.Get("a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if str := val.(StringValue); str.Val != "global" {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestGetUndefinedVariable(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Get("nope")
	rerr, ok := err.(*Error)
	if !ok || rerr.Code != ErrUndefinedVariable {
		t.Fatalf("expected UndefinedVariable, got %v", err)
	}
}

func TestDefineShadowsWithoutTouchingParent(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NumberValue{Val: 1})
	inner := NewEnvironment(outer)
	inner.Define("a", NumberValue{Val: 2})

	val, _ := inner.Get("a")
	if val.(NumberValue).Val != 2 {
		t.Fatalf("inner binding should shadow, got %#v", val)
	}
	val, _ = outer.Get("a")
	if val.(NumberValue).Val != 1 {
		t.Fatalf("outer binding should be untouched, got %#v", val)
	}
}

func TestAssignWritesNearestEnclosingBinding(t *testing.T) {
	outer := NewEnvironment(nil)
	outer.Define("a", NumberValue{Val: 1})
	inner := NewEnvironment(outer)

	if err := inner.Assign("a", NumberValue{Val: 9}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	val, _ := outer.Get("a")
	if val.(NumberValue).Val != 9 {
		t.Fatalf("assignment should hit the outer frame, got %#v", val)
	}
	if _, own := inner.values["a"]; own {
		t.Fatalf("assignment must not create a binding in the inner frame")
	}
}

func TestAssignUndefinedVariable(t *testing.T) {
	env := NewEnvironment(nil)
	err := env.Assign("nope", NilValue{})
	rerr, ok := err.(*Error)
	if !ok || rerr.Code != ErrUndefinedVariable {
		t.Fatalf("expected UndefinedVariable, got %v", err)
	}
}

func TestGetAtAndAssignAtTargetExactFrame(t *testing.T) {
	depth2 := NewEnvironment(nil)
	depth2.Define("a", StringValue{Val: "far"})
	depth1 := NewEnvironment(depth2)
	depth1.Define("a", StringValue{Val: "near"})
	depth0 := NewEnvironment(depth1)

	val, err := depth0.GetAt(2, "a")
	if err != nil {
		t.Fatalf("getAt failed: %v", err)
	}
	if val.(StringValue).Val != "far" {
		t.Fatalf("depth addressing must skip nearer shadows, got %#v", val)
	}

	if err := depth0.AssignAt(1, "a", StringValue{Val: "updated"}); err != nil {
		t.Fatalf("assignAt failed: %v", err)
	}
	val, _ = depth1.Get("a")
	if val.(StringValue).Val != "updated" {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestGetAtMissIsInternalError(t *testing.T) {
	env := NewEnvironment(NewEnvironment(nil))
	_, err := env.GetAt(1, "ghost")
	rerr, ok := err.(*Error)
	if !ok || rerr.Code != ErrInternal {
		t.Fatalf("expected Internal, got %v", err)
	}
	_, err = env.GetAt(5, "ghost")
	rerr, ok = err.(*Error)
	if !ok || rerr.Code != ErrInternal {
		t.Fatalf("expected Internal for over-deep walk, got %v", err)
	}
}

func TestSharedFrameVisibleThroughBothReferences(t *testing.T) {
	shared := NewEnvironment(nil)
	shared.Define("count", NumberValue{Val: 0})
	viewA := NewEnvironment(shared)
	viewB := NewEnvironment(shared)

	if err := viewA.Assign("count", NumberValue{Val: 5}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	val, _ := viewB.Get("count")
	if val.(NumberValue).Val != 5 {
		t.Fatalf("frames are shared by reference, got %#v", val)
	}
}

func TestKeysAreSorted(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("zebra", NilValue{})
	env.Define("apple", NilValue{})
	env.Define("mango", NilValue{})
	if got := env.Keys(); !reflect.DeepEqual(got, []string{"apple", "mango", "zebra"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}
