package parts

import (
	"fmt"

	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/rig"
	"ctcore/pkg/serial"
)

// FlatPanelDetector is a single-module flat-panel detector with a uniform
// pixel grid and an optional spectral response curve.
type FlatPanelDetector struct {
	rig.Base
	rows        int
	cols        int
	pixelWidth  float64 // mm
	pixelHeight float64 // mm
	distance    float64 // mm, source-to-panel distance
	response    model.DataModel
}

// NewFlatPanelDetector constructs a panel of rows×cols pixels with the given
// pixel pitch in mm and source distance in mm. The response model may be nil,
// in which case the panel registers every photon.
func NewFlatPanelDetector(name string, rows, cols int, pixelWidth, pixelHeight, distance float64, response model.DataModel) *FlatPanelDetector {
	return &FlatPanelDetector{
		Base:        rig.NewBase(name, TagFlatPanelDetector, rig.ElementalDetector),
		rows:        rows,
		cols:        cols,
		pixelWidth:  pixelWidth,
		pixelHeight: pixelHeight,
		distance:    distance,
		response:    response,
	}
}

// Rows returns the pixel row count.
func (d *FlatPanelDetector) Rows() int { return d.rows }

// Cols returns the pixel column count.
func (d *FlatPanelDetector) Cols() int { return d.cols }

// SpectralResponse implements rig.Detector.
func (d *FlatPanelDetector) SpectralResponse() model.DataModel { return d.response }

// Modules implements rig.Detector. A flat panel is one module.
func (d *FlatPanelDetector) Modules() []rig.DetectorModule {
	return []rig.DetectorModule{{
		PixelWidth:  d.pixelWidth,
		PixelHeight: d.pixelHeight,
		Distance:    d.distance,
	}}
}

// Clone implements rig.Component.
func (d *FlatPanelDetector) Clone() rig.Component {
	clone := *d
	if d.response != nil {
		clone.response = d.response.Clone()
	}
	return &clone
}

// ToRecord implements serial.Serializable.
func (d *FlatPanelDetector) ToRecord() record.Record {
	rec := d.BaseRecord().
		Set("rows", d.rows).
		Set("cols", d.cols).
		Set("pixel width", d.pixelWidth).
		Set("pixel height", d.pixelHeight).
		Set("distance", d.distance)
	if d.response != nil {
		rec.Set("response model", d.response.ToRecord())
	}
	return rec
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on any failure.
func (d *FlatPanelDetector) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyComponent, TagFlatPanelDetector); err != nil {
		return err
	}
	rows, ok := rec.Int("rows")
	if !ok {
		return fmt.Errorf("parts: flat panel record lacks rows")
	}
	cols, ok := rec.Int("cols")
	if !ok {
		return fmt.Errorf("parts: flat panel record lacks cols")
	}
	pixelWidth, ok := rec.Float("pixel width")
	if !ok {
		return fmt.Errorf("parts: flat panel record lacks pixel width")
	}
	pixelHeight, ok := rec.Float("pixel height")
	if !ok {
		return fmt.Errorf("parts: flat panel record lacks pixel height")
	}
	distance, ok := rec.Float("distance")
	if !ok {
		return fmt.Errorf("parts: flat panel record lacks distance")
	}
	var response model.DataModel
	if child, ok := rec.Child("response model"); ok {
		decoded, known, err := model.Decode(child)
		if err != nil {
			return fmt.Errorf("parts: flat panel response model: %w", err)
		}
		if !known {
			return fmt.Errorf("parts: flat panel response model has unknown type")
		}
		response = decoded
	}
	d.DecodeBase(rec)
	d.rows = rows
	d.cols = cols
	d.pixelWidth = pixelWidth
	d.pixelHeight = pixelHeight
	d.distance = distance
	d.response = response
	return nil
}

var _ rig.Detector = (*FlatPanelDetector)(nil)
