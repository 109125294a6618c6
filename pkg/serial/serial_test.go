package serial

import (
	"testing"

	"ctcore/pkg/record"
)

type fakePart struct {
	tag   Tag
	label string
}

func (f *fakePart) Tag() Tag { return f.tag }

func (f *fakePart) ToRecord() record.Record {
	return record.New().
		Set(record.FieldTypeID, int(f.tag)).
		Set(record.FieldElemental, 1).
		Set("label", f.label)
}

func (f *fakePart) FromRecord(rec record.Record) error {
	if err := ValidateTag(rec, FamilyComponent, f.tag); err != nil {
		return err
	}
	if label, ok := rec.String("label"); ok {
		f.label = label
	}
	return nil
}

type coarsePart struct {
	label string
}

func (c *coarsePart) Tag() Tag { return 0 }

func (c *coarsePart) ToRecord() record.Record {
	return record.New().Set(record.FieldTypeID, 0).Set("label", c.label)
}

// FromRecord accepts any tag; the coarse tier keeps only generic fields.
func (c *coarsePart) FromRecord(rec record.Record) error {
	if label, ok := rec.String("label"); ok {
		c.label = label
	}
	return nil
}

func TestDecodeExact(t *testing.T) {
	reg := NewRegistry()
	reg.Register(FamilyComponent, 101, func() Serializable { return &fakePart{tag: 101} })

	src := &fakePart{tag: 101, label: "panel"}
	obj, outcome, err := reg.Decode(FamilyComponent, src.ToRecord())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome != DecodeExact {
		t.Fatalf("expected exact decode, got %v", outcome)
	}
	got, ok := obj.(*fakePart)
	if !ok || got.label != "panel" {
		t.Fatalf("unexpected decode result %#v", obj)
	}
	if got == src {
		t.Fatalf("decode must construct a new object")
	}
}

func TestDecodeFallsBackToCoarseTier(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFallback(FamilyComponent, 1, func() Serializable { return &coarsePart{} })

	rec := (&fakePart{tag: 999, label: "exotic"}).ToRecord()
	obj, outcome, err := reg.Decode(FamilyComponent, rec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome != DecodeFallback {
		t.Fatalf("expected fallback decode, got %v", outcome)
	}
	if got := obj.(*coarsePart); got.label != "exotic" {
		t.Fatalf("fallback should keep generic fields, got %#v", got)
	}
}

func TestDecodeMissIsNotAnError(t *testing.T) {
	reg := NewRegistry()
	rec := record.New().Set(record.FieldTypeID, 777)
	obj, outcome, err := reg.Decode(FamilyComponent, rec)
	if err != nil || obj != nil || outcome != DecodeMiss {
		t.Fatalf("expected silent miss, got obj=%v outcome=%v err=%v", obj, outcome, err)
	}

	// Records without a type-id at all are also a miss.
	obj, outcome, err = reg.Decode(FamilyComponent, record.New())
	if err != nil || obj != nil || outcome != DecodeMiss {
		t.Fatalf("expected miss for untagged record, got obj=%v outcome=%v err=%v", obj, outcome, err)
	}
}

func TestTagMismatchLeavesObjectUnmutated(t *testing.T) {
	part := &fakePart{tag: 101, label: "original"}
	rec := record.New().Set(record.FieldTypeID, 202).Set("label", "intruder")
	err := part.FromRecord(rec)
	if err == nil {
		t.Fatalf("expected tag mismatch error")
	}
	mismatch, ok := err.(TagMismatchError)
	if !ok {
		t.Fatalf("expected TagMismatchError, got %T", err)
	}
	if mismatch.Want != 101 || mismatch.Got != 202 {
		t.Fatalf("unexpected mismatch detail %+v", mismatch)
	}
	if part.label != "original" {
		t.Fatalf("mismatch must not mutate the target object")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(FamilyModel, 10, func() Serializable { return &fakePart{tag: 10} })

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate tag registration")
		}
	}()
	reg.Register(FamilyModel, 10, func() Serializable { return &fakePart{tag: 10} })
}

func TestSameTagAcrossFamiliesIsAllowed(t *testing.T) {
	reg := NewRegistry()
	reg.Register(FamilyComponent, 10, func() Serializable { return &fakePart{tag: 10} })
	reg.Register(FamilyModel, 10, func() Serializable { return &fakePart{tag: 10} })
	if !reg.Registered(FamilyComponent, 10) || !reg.Registered(FamilyModel, 10) {
		t.Fatalf("tags are namespaced per family")
	}
}
