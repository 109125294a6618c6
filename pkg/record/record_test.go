package record

import "testing"

func TestAccessorsAndTypeWidening(t *testing.T) {
	r := New().
		Set("f", 2.5).
		Set("i", 42).
		Set("jsonNumber", float64(7)).
		Set("s", "tube").
		Set("b", true).
		Set("list", []any{1.0, 2.0}).
		Set("child", New().Set("k", "v"))

	if f, ok := r.Float("f"); !ok || f != 2.5 {
		t.Fatalf("expected float 2.5, got %v (%v)", f, ok)
	}
	if i, ok := r.Int("i"); !ok || i != 42 {
		t.Fatalf("expected int 42, got %v (%v)", i, ok)
	}
	if i, ok := r.Int("jsonNumber"); !ok || i != 7 {
		t.Fatalf("expected float-backed int 7, got %v (%v)", i, ok)
	}
	if _, ok := r.Int("f"); ok {
		t.Fatalf("fractional value must not decode as int")
	}
	if s, ok := r.String("s"); !ok || s != "tube" {
		t.Fatalf("expected string tube, got %q (%v)", s, ok)
	}
	if b, ok := r.Bool("b"); !ok || !b {
		t.Fatalf("expected bool true")
	}
	if l, ok := r.List("list"); !ok || len(l) != 2 {
		t.Fatalf("expected two-element list, got %v (%v)", l, ok)
	}
	if c, ok := r.Child("child"); !ok || c["k"] != "v" {
		t.Fatalf("expected nested record, got %v (%v)", c, ok)
	}
	if _, ok := r.Float("missing"); ok {
		t.Fatalf("missing key must report absence")
	}
}

func TestCloneIsolatesNestedNodes(t *testing.T) {
	r := New().Set("nested", New().Set("k", "v")).Set("list", []any{New().Set("x", 1.0)})
	clone := r.Clone()

	nested, _ := r.Child("nested")
	nested["k"] = "mutated"
	list, _ := r.List("list")
	list[0].(Record)["x"] = 99.0

	cloneNested, _ := clone.Child("nested")
	if cloneNested["k"] != "v" {
		t.Fatalf("clone shares nested record with original")
	}
	cloneList, _ := clone.List("list")
	if cloneList[0].(Record)["x"] != 1.0 {
		t.Fatalf("clone shares list element with original")
	}
}

func TestJSONRoundTripNormalizesShape(t *testing.T) {
	original := New().
		Set(FieldTypeID, 101).
		Set(FieldName, "panel").
		Set("data", []any{[]any{0.0, 0.0}, []any{10.0, 1.0}}).
		Set("child", New().Set(FieldTypeID, 1))

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Equal(original, decoded) {
		t.Fatalf("round trip changed record: %#v vs %#v", original, decoded)
	}
	if id, ok := decoded.TypeID(); !ok || id != 101 {
		t.Fatalf("expected type-id 101 after round trip, got %v (%v)", id, ok)
	}
	child, ok := decoded.Child("child")
	if !ok {
		t.Fatalf("expected nested node to decode as Record")
	}
	if id, ok := child.TypeID(); !ok || id != 1 {
		t.Fatalf("expected nested type-id 1, got %v (%v)", id, ok)
	}
}

func TestUnmarshalRejectsNonObject(t *testing.T) {
	if _, err := Unmarshal([]byte(`[1,2,3]`)); err == nil {
		t.Fatalf("expected error for non-object payload")
	}
}
