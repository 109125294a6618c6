package parts

import (
	"ctcore/pkg/model"
	"ctcore/pkg/rig"
)

// TableTopBlueprint is the canned single-source, single-detector bench
// configuration: a 120 kVp tube, a thin aluminum filter, a tubular gantry
// and one flat panel.
type TableTopBlueprint struct{}

// Name implements rig.Blueprint.
func (TableTopBlueprint) Name() string { return "table-top" }

// Components implements rig.Blueprint. Each call builds fresh instances
// since the assembled system takes exclusive ownership.
func (TableTopBlueprint) Components() []rig.Component {
	return []rig.Component{
		NewXRayTube("tube", 120, 100, defaultEmissionModel()),
		NewSpectralFilter("aluminum filter", 2.5, defaultAttenuationModel()),
		NewTubularGantry("gantry", 600, 400),
		NewFlatPanelDetector("flat panel", 2048, 2048, 0.2, 0.2, 1000, defaultResponseModel()),
	}
}

// defaultEmissionModel approximates a bremsstrahlung spectrum for a 120 kVp
// tube: linear rise to a broad peak near a third of the peak voltage, then a
// linear falloff to zero at the voltage endpoint.
func defaultEmissionModel() model.DataModel {
	t, err := model.NewTabulated(
		[]float64{0, 15, 40, 120},
		[]float64{0, 0, 1, 0},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// defaultAttenuationModel is a coarse aluminum linear attenuation curve in
// 1/mm over the diagnostic energy range.
func defaultAttenuationModel() model.DataModel {
	t, err := model.NewTabulated(
		[]float64{10, 20, 40, 60, 80, 100, 120, 150},
		[]float64{7.05, 0.925, 0.153, 0.0750, 0.0545, 0.0460, 0.0412, 0.0370},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// defaultResponseModel is a flat-panel scintillator response that falls off
// toward high energies.
func defaultResponseModel() model.DataModel {
	t, err := model.NewTabulated(
		[]float64{0, 30, 60, 100, 150},
		[]float64{0.95, 0.90, 0.75, 0.55, 0.40},
	)
	if err != nil {
		panic(err)
	}
	return t
}

var _ rig.Blueprint = TableTopBlueprint{}
