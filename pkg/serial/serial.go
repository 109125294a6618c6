// Package serial implements the tag-based serialization protocol that lets
// any registered concrete subtype be reconstructed from its exchange record
// without the reading code knowing all subtypes in advance. Registration is
// an explicit startup pass; the registry is then treated as read only.
package serial

import (
	"fmt"

	"ctcore/pkg/record"
)

// Family partitions type tags into independent registration namespaces.
type Family int

// Registration families. A tag is unique within its family only.
const (
	FamilyComponent Family = iota
	FamilyModel
	FamilyPrepareStep
	FamilyMisc
)

// String returns the family name used in diagnostics.
func (f Family) String() string {
	switch f {
	case FamilyComponent:
		return "component"
	case FamilyModel:
		return "model"
	case FamilyPrepareStep:
		return "prepare-step"
	case FamilyMisc:
		return "misc"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Tag identifies a concrete type within its family. Component tags are
// partitioned by numeric range: detectors 100-199, gantries 200-299,
// sources 300-399, beam modifiers 400-499.
type Tag int

// Component tag range bases.
const (
	TagRangeDetector = 100
	TagRangeGantry   = 200
	TagRangeSource   = 300
	TagRangeModifier = 400
)

// Serializable is implemented by every type participating in the exchange
// protocol. ToRecord must accumulate the fields of every hierarchy level
// plus the concrete type's own "type-id"; FromRecord must validate the
// record's declared tag against its own at the concrete (leaf) level and
// leave the receiver unmutated on any failure.
type Serializable interface {
	Tag() Tag
	ToRecord() record.Record
	FromRecord(record.Record) error
}

// Factory default-constructs a registered type ahead of deserialization.
type Factory func() Serializable

// TagMismatchError reports a record whose declared type tag does not match
// the deserializing type. The target object is left unmutated.
type TagMismatchError struct {
	Family Family
	Want   Tag
	Got    Tag
}

func (e TagMismatchError) Error() string {
	return fmt.Sprintf("serial: %s record declares type-id %d, expected %d", e.Family, e.Got, e.Want)
}

// ValidateTag checks the record's declared type tag against want. Types call
// this once, at the concrete leaf level of their FromRecord implementation.
func ValidateTag(rec record.Record, family Family, want Tag) error {
	got, ok := rec.TypeID()
	if !ok {
		return TagMismatchError{Family: family, Want: want, Got: -1}
	}
	if Tag(got) != want {
		return TagMismatchError{Family: family, Want: want, Got: Tag(got)}
	}
	return nil
}

// Registry maps type tags to reconstruction factories, one namespace per
// family, with a secondary coarse tier consulted only on primary miss.
// It is populated during an explicit startup phase and not synchronized;
// concurrent registration is unsupported by construction.
type Registry struct {
	primary  map[Family]map[Tag]Factory
	fallback map[Family]map[int]Factory
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		primary:  make(map[Family]map[Tag]Factory),
		fallback: make(map[Family]map[int]Factory),
	}
}

// Register binds a tag to a factory within a family. Re-registering a tag
// already used in that family is a programming error and panics.
func (r *Registry) Register(family Family, tag Tag, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("serial: nil factory for %s tag %d", family, tag))
	}
	byTag, ok := r.primary[family]
	if !ok {
		byTag = make(map[Tag]Factory)
		r.primary[family] = byTag
	}
	if _, exists := byTag[tag]; exists {
		panic(fmt.Sprintf("serial: duplicate registration of %s tag %d", family, tag))
	}
	byTag[tag] = factory
}

// RegisterFallback binds a coarse elemental code to a generic-placeholder
// factory. The fallback tier is consulted only when the exact tag is
// unregistered, providing graceful degradation distinct from total failure.
func (r *Registry) RegisterFallback(family Family, coarse int, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("serial: nil fallback factory for %s code %d", family, coarse))
	}
	byCode, ok := r.fallback[family]
	if !ok {
		byCode = make(map[int]Factory)
		r.fallback[family] = byCode
	}
	if _, exists := byCode[coarse]; exists {
		panic(fmt.Sprintf("serial: duplicate fallback registration of %s code %d", family, coarse))
	}
	byCode[coarse] = factory
}

// Registered reports whether a tag has a primary factory in the family.
func (r *Registry) Registered(family Family, tag Tag) bool {
	byTag, ok := r.primary[family]
	if !ok {
		return false
	}
	_, ok = byTag[tag]
	return ok
}

// DecodeOutcome classifies how Decode resolved a record.
type DecodeOutcome int

const (
	// DecodeMiss means neither tier recognized the record.
	DecodeMiss DecodeOutcome = iota
	// DecodeExact means the primary tier produced the concrete type.
	DecodeExact
	// DecodeFallback means only the coarse tier matched; the result is a
	// generic placeholder that discards subtype-specific fields.
	DecodeFallback
)

// Decode reconstructs an object from its record. An unregistered tag is a
// discoverable, non-fatal outcome: the coarse tier is consulted when the
// record carries an elemental code, and a total miss returns DecodeMiss
// rather than an error. A tag mismatch or malformed payload inside the
// type's own FromRecord is returned as an error with the object discarded.
func (r *Registry) Decode(family Family, rec record.Record) (Serializable, DecodeOutcome, error) {
	id, ok := rec.TypeID()
	if !ok {
		return nil, DecodeMiss, nil
	}
	if byTag, ok := r.primary[family]; ok {
		if factory, ok := byTag[Tag(id)]; ok {
			obj := factory()
			if err := obj.FromRecord(rec); err != nil {
				return nil, DecodeExact, err
			}
			return obj, DecodeExact, nil
		}
	}
	coarse, ok := rec.Int(record.FieldElemental)
	if !ok {
		return nil, DecodeMiss, nil
	}
	byCode, ok := r.fallback[family]
	if !ok {
		return nil, DecodeMiss, nil
	}
	factory, ok := byCode[coarse]
	if !ok {
		return nil, DecodeMiss, nil
	}
	obj := factory()
	if err := obj.FromRecord(rec); err != nil {
		return nil, DecodeFallback, err
	}
	return obj, DecodeFallback, nil
}

// Default is the process-wide registry populated by the explicit
// RegisterBuiltins startup passes in pkg/model, pkg/rig and internal/parts.
var Default = NewRegistry()
