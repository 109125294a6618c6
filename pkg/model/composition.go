package model

import (
	"errors"
	"fmt"

	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// ErrNilOperand is returned when a composition is constructed with a missing
// operand. Construction fails immediately rather than silently defaulting.
var ErrNilOperand = errors.New("model: composition operand must not be nil")

// Record fields holding the operand sub-records of a composition node.
const (
	fieldLHS = "LHS model"
	fieldRHS = "RHS model"
)

// binaryModel combines two operand models point-wise. Operands are held by
// pointer, so the same leaf model may safely be aliased by multiple
// composites; mutations of a shared leaf are observed by all of them.
type binaryModel struct {
	tag serial.Tag
	lhs DataModel
	rhs DataModel
}

func newBinary(tag serial.Tag, lhs, rhs DataModel) (*binaryModel, error) {
	if lhs == nil || rhs == nil {
		return nil, ErrNilOperand
	}
	return &binaryModel{tag: tag, lhs: lhs, rhs: rhs}, nil
}

// Sum returns a model evaluating to lhs(x) + rhs(x).
func Sum(lhs, rhs DataModel) (DataModel, error) { return newBinary(TagSum, lhs, rhs) }

// Difference returns a model evaluating to lhs(x) - rhs(x).
func Difference(lhs, rhs DataModel) (DataModel, error) { return newBinary(TagDifference, lhs, rhs) }

// Product returns a model evaluating to lhs(x) * rhs(x).
func Product(lhs, rhs DataModel) (DataModel, error) { return newBinary(TagProduct, lhs, rhs) }

// Quotient returns a model evaluating to lhs(x) / rhs(x).
func Quotient(lhs, rhs DataModel) (DataModel, error) { return newBinary(TagQuotient, lhs, rhs) }

// Tag implements serial.Serializable.
func (b *binaryModel) Tag() serial.Tag { return b.tag }

// Value implements DataModel by combining both operands at the same point.
func (b *binaryModel) Value(x float64) float64 {
	switch b.tag {
	case TagSum:
		return b.lhs.Value(x) + b.rhs.Value(x)
	case TagDifference:
		return b.lhs.Value(x) - b.rhs.Value(x)
	case TagProduct:
		return b.lhs.Value(x) * b.rhs.Value(x)
	case TagQuotient:
		return b.lhs.Value(x) / b.rhs.Value(x)
	default:
		return 0
	}
}

// Clone implements DataModel. Cloning is deep: the copy no longer aliases
// the original operands.
func (b *binaryModel) Clone() DataModel {
	return &binaryModel{tag: b.tag, lhs: b.lhs.Clone(), rhs: b.rhs.Clone()}
}

// ToRecord implements serial.Serializable, embedding both operand records.
func (b *binaryModel) ToRecord() record.Record {
	return record.New().
		Set(record.FieldTypeID, int(b.tag)).
		Set(fieldLHS, b.lhs.ToRecord()).
		Set(fieldRHS, b.rhs.ToRecord())
}

// FromRecord implements serial.Serializable. Both operands are decoded into
// temporaries first so a failure leaves the receiver unmutated.
func (b *binaryModel) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyModel, b.tag); err != nil {
		return err
	}
	lhs, err := decodeOperand(rec, fieldLHS)
	if err != nil {
		return err
	}
	rhs, err := decodeOperand(rec, fieldRHS)
	if err != nil {
		return err
	}
	b.lhs = lhs
	b.rhs = rhs
	return nil
}

func decodeOperand(rec record.Record, field string) (DataModel, error) {
	child, ok := rec.Child(field)
	if !ok {
		return nil, fmt.Errorf("model: composition record missing %q: %w", field, ErrNilOperand)
	}
	operand, known, err := Decode(child)
	if err != nil {
		return nil, fmt.Errorf("model: decode %q: %w", field, err)
	}
	if !known {
		id, _ := child.TypeID()
		return nil, fmt.Errorf("model: %q carries unregistered model tag %d", field, id)
	}
	return operand, nil
}
