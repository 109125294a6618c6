package model

import (
	"fmt"
	"sort"

	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// Tabulated is a data model backed by a sparse sample table with unique,
// ascending keys. It is defined only within [min key, max key]: exact keys
// return the stored value, positions between keys are linearly interpolated,
// and positions outside the range evaluate to zero.
type Tabulated struct {
	keys   []float64
	values []float64
}

// NewTabulated builds a table from parallel key/value slices. Samples are
// sorted by key; duplicate keys are rejected.
func NewTabulated(keys, values []float64) (*Tabulated, error) {
	if len(keys) != len(values) {
		return nil, fmt.Errorf("model: tabulated needs matching key/value counts, got %d/%d", len(keys), len(values))
	}
	t := &Tabulated{}
	for i := range keys {
		if err := t.Insert(keys[i], values[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Insert adds a sample, keeping keys unique and ascending.
func (t *Tabulated) Insert(key, value float64) error {
	idx := sort.SearchFloat64s(t.keys, key)
	if idx < len(t.keys) && t.keys[idx] == key {
		return fmt.Errorf("model: duplicate table key %g", key)
	}
	t.keys = append(t.keys, 0)
	t.values = append(t.values, 0)
	copy(t.keys[idx+1:], t.keys[idx:])
	copy(t.values[idx+1:], t.values[idx:])
	t.keys[idx] = key
	t.values[idx] = value
	return nil
}

// Len returns the number of stored samples.
func (t *Tabulated) Len() int { return len(t.keys) }

// Domain returns the [min key, max key] interval the table is defined on.
func (t *Tabulated) Domain() (min, max float64) {
	if len(t.keys) == 0 {
		return 0, 0
	}
	return t.keys[0], t.keys[len(t.keys)-1]
}

// Tag implements serial.Serializable.
func (t *Tabulated) Tag() serial.Tag { return TagTabulated }

// Value implements DataModel: exact stored value on a key, linear
// interpolation between the bracketing keys, zero outside the key range.
func (t *Tabulated) Value(x float64) float64 {
	if len(t.keys) == 0 {
		return 0
	}
	if x < t.keys[0] || x > t.keys[len(t.keys)-1] {
		return 0
	}
	idx := sort.SearchFloat64s(t.keys, x)
	if idx < len(t.keys) && t.keys[idx] == x {
		return t.values[idx]
	}
	lo, hi := idx-1, idx
	frac := (x - t.keys[lo]) / (t.keys[hi] - t.keys[lo])
	return t.values[lo] + frac*(t.values[hi]-t.values[lo])
}

// BinIntegral implements Integrable with the trapezoidal rule over
// [x-width/2, x+width/2]. Boundary segments use the interpolated value at
// the bin edge; zero-width segments arising from a boundary that coincides
// with a key are skipped. Portions of the bin outside the key range
// contribute nothing.
func (t *Tabulated) BinIntegral(x, width float64) float64 {
	if len(t.keys) == 0 || width <= 0 {
		return 0
	}
	from := x - width/2
	to := x + width/2
	min, max := t.Domain()
	lo := from
	if lo < min {
		lo = min
	}
	hi := to
	if hi > max {
		hi = max
	}
	if hi <= lo {
		return 0
	}

	first := sort.SearchFloat64s(t.keys, lo)
	last := sort.SearchFloat64s(t.keys, hi)
	if last < len(t.keys) && t.keys[last] == hi {
		last++
	}
	// Keys in [lo, hi] occupy t.keys[first:last].
	if first == last {
		// No key inside the bin: the whole bin lies in one inter-key gap,
		// where the model is linear and the midpoint value is exact.
		return t.Value(x) * width
	}

	var total float64
	if t.keys[first] > lo {
		total += (t.Value(lo) + t.values[first]) / 2 * (t.keys[first] - lo)
	}
	for i := first; i < last-1; i++ {
		total += (t.values[i] + t.values[i+1]) / 2 * (t.keys[i+1] - t.keys[i])
	}
	if hi > t.keys[last-1] {
		total += (t.values[last-1] + t.Value(hi)) / 2 * (hi - t.keys[last-1])
	}
	return total
}

// Clone implements DataModel.
func (t *Tabulated) Clone() DataModel {
	clone := &Tabulated{
		keys:   append([]float64(nil), t.keys...),
		values: append([]float64(nil), t.values...),
	}
	return clone
}

// ToRecord implements serial.Serializable. Samples serialize as an ordered
// list of [key, value] pairs under "data".
func (t *Tabulated) ToRecord() record.Record {
	data := make([]any, len(t.keys))
	for i := range t.keys {
		data[i] = []any{t.keys[i], t.values[i]}
	}
	return record.New().
		Set(record.FieldTypeID, int(TagTabulated)).
		Set("data", data)
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on tag mismatch or malformed sample data.
func (t *Tabulated) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyModel, TagTabulated); err != nil {
		return err
	}
	data, ok := rec.List("data")
	if !ok {
		return fmt.Errorf("model: tabulated record missing data field")
	}
	decoded := &Tabulated{}
	for i, item := range data {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return fmt.Errorf("model: tabulated data entry %d is not a [key,value] pair", i)
		}
		key, okKey := record.AsFloat(pair[0])
		value, okValue := record.AsFloat(pair[1])
		if !okKey || !okValue {
			return fmt.Errorf("model: tabulated data entry %d is not numeric", i)
		}
		if err := decoded.Insert(key, value); err != nil {
			return err
		}
	}
	*t = *decoded
	return nil
}
