// Package model defines the polymorphic scalar data models used to describe
// spectra, attenuation curves and detector responses: a common DataModel
// contract, arithmetic composition nodes, and the tabulated lookup engine.
package model

import (
	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// Model type tags registered in serial.FamilyModel.
const (
	TagConstant   serial.Tag = 10
	TagTabulated  serial.Tag = 20
	TagSum        serial.Tag = 30
	TagDifference serial.Tag = 31
	TagProduct    serial.Tag = 32
	TagQuotient   serial.Tag = 33
)

// DataModel is a polymorphic scalar function of one variable.
type DataModel interface {
	serial.Serializable
	// Value evaluates the model at position x.
	Value(x float64) float64
	// Clone returns an independent deep copy.
	Clone() DataModel
}

// Integrable is the optional capability of models that can integrate
// themselves over a bin. Callers query it with a type assertion,
// independent of the concrete model type.
type Integrable interface {
	DataModel
	// BinIntegral integrates the model over [x-width/2, x+width/2].
	BinIntegral(x, width float64) float64
}

// BinValue integrates m over the bin centered at x when the model supports
// it, falling back to the midpoint approximation value(x)*width otherwise.
func BinValue(m DataModel, x, width float64) float64 {
	if integrable, ok := m.(Integrable); ok {
		return integrable.BinIntegral(x, width)
	}
	return m.Value(x) * width
}

// Decode reconstructs a data model from its record through the process-wide
// registry. The boolean mirrors the registry miss semantics: false means the
// tag is unknown, which callers may treat as a discoverable absence.
func Decode(rec record.Record) (DataModel, bool, error) {
	obj, outcome, err := serial.Default.Decode(serial.FamilyModel, rec)
	if err != nil {
		return nil, outcome != serial.DecodeMiss, err
	}
	if outcome == serial.DecodeMiss {
		return nil, false, nil
	}
	m, ok := obj.(DataModel)
	if !ok {
		return nil, false, nil
	}
	return m, true, nil
}

// RegisterBuiltins binds the built-in model types to the process-wide
// registry. It is part of the explicit startup registration pass and must
// run exactly once before any model deserialization.
func RegisterBuiltins() {
	serial.Default.Register(serial.FamilyModel, TagConstant, func() serial.Serializable { return &Constant{} })
	serial.Default.Register(serial.FamilyModel, TagTabulated, func() serial.Serializable { return &Tabulated{} })
	serial.Default.Register(serial.FamilyModel, TagSum, func() serial.Serializable { return &binaryModel{tag: TagSum} })
	serial.Default.Register(serial.FamilyModel, TagDifference, func() serial.Serializable { return &binaryModel{tag: TagDifference} })
	serial.Default.Register(serial.FamilyModel, TagProduct, func() serial.Serializable { return &binaryModel{tag: TagProduct} })
	serial.Default.Register(serial.FamilyModel, TagQuotient, func() serial.Serializable { return &binaryModel{tag: TagQuotient} })
}
