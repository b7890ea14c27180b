package value

import "testing"

func TestStructuralEquality(t *testing.T) {
	a := RecordVal("Model", []Value{IntVal(1), StringVal("x")})
	b := RecordVal("Model", []Value{IntVal(1), StringVal("x")})
	if !Equal(a, b) {
		t.Error("identical records not equal")
	}

	c := RecordVal("Model", []Value{IntVal(2), StringVal("x")})
	if Equal(a, c) {
		t.Error("records with different fields equal")
	}

	if Equal(SomeVal(IntVal(1)), NoneVal()) {
		t.Error("Some equals None")
	}
	if !Equal(SomeVal(IntVal(1)), SomeVal(IntVal(1))) {
		t.Error("equal Some payloads not equal")
	}

	inc := VariantVal("Msg", "Increment", 0, nil)
	dec := VariantVal("Msg", "Decrement", 1, nil)
	if Equal(inc, dec) {
		t.Error("distinct variants equal")
	}
}

func TestWithFieldsCopies(t *testing.T) {
	base := RecordVal("Model", []Value{IntVal(1), StringVal("x")})
	next := base.WithFields(map[int]Value{0: IntVal(5)})

	if next.Field(0).Int != 5 {
		t.Errorf("overlay not applied: %v", next)
	}
	if !Equal(next.Field(1), base.Field(1)) {
		t.Error("untouched field changed")
	}
	if base.Field(0).Int != 1 {
		t.Error("base mutated by update")
	}
}

func TestDisplay(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{IntVal(-3), "-3"},
		{BoolVal(true), "true"},
		{StringVal("hi"), "hi"},
	}
	for _, c := range cases {
		if got := c.v.Display(); got != c.want {
			t.Errorf("Display(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}
