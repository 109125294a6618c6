package model

import (
	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// Constant is a data model with the same value everywhere. It serves as the
// neutral element for spectral responses and transmission curves.
type Constant struct {
	level float64
}

// NewConstant returns a model evaluating to level at every position.
func NewConstant(level float64) *Constant {
	return &Constant{level: level}
}

// Tag implements serial.Serializable.
func (c *Constant) Tag() serial.Tag { return TagConstant }

// Value implements DataModel.
func (c *Constant) Value(float64) float64 { return c.level }

// BinIntegral implements Integrable; the integral is width-proportional.
func (c *Constant) BinIntegral(_, width float64) float64 {
	return c.level * width
}

// Clone implements DataModel.
func (c *Constant) Clone() DataModel {
	clone := *c
	return &clone
}

// ToRecord implements serial.Serializable.
func (c *Constant) ToRecord() record.Record {
	return record.New().
		Set(record.FieldTypeID, int(TagConstant)).
		Set("value", c.level)
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on tag mismatch.
func (c *Constant) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyModel, TagConstant); err != nil {
		return err
	}
	if level, ok := rec.Float("value"); ok {
		c.level = level
	}
	return nil
}
