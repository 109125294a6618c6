// Package projector defines the forward-projection boundary: the contract
// through which a configured acquisition system produces projection data
// from a volume. Concrete projection algorithms live behind this interface;
// the package itself only fixes the protocol and the composition rule.
package projector

import (
	"errors"
	"fmt"

	"ctcore/pkg/rig"
)

// Volume is an opaque handle to projectable volume data. Concrete projectors
// define what volume representations they accept.
type Volume interface {
	// Dimensions returns the voxel counts along x, y and z.
	Dimensions() (x, y, z int)
}

// ProjectionView is one projection image: row-major pixel intensities for
// one view of the acquisition.
type ProjectionView struct {
	Rows   int
	Cols   int
	Pixels []float64
}

// ErrNotConfigured is returned by Project when Configure has not succeeded
// yet.
var ErrNotConfigured = errors.New("projector: not configured")

// Projector produces projection data for a configured acquisition system.
// Configure must succeed before Project is called; a projector may be
// re-configured with a different system between projections.
type Projector interface {
	// Configure binds the projector to a system snapshot. The projector
	// must not mutate the system.
	Configure(system *rig.System) error
	// Project computes all projection views of the volume.
	Project(volume Volume) ([]ProjectionView, error)
}

// NonLinear is the optional marker capability of projectors whose output is
// not additive in the volume, such as ones modeling scatter.
type NonLinear interface {
	NonLinear()
}

// CompositeProject projects each sub-volume separately and sums the views
// pixel by pixel. Linear projectors compose this way exactly; a projector
// declaring the NonLinear capability is rejected since its views cannot be
// summed.
func CompositeProject(p Projector, volumes ...Volume) ([]ProjectionView, error) {
	if _, ok := p.(NonLinear); ok {
		return nil, errors.New("projector: composite projection requires a linear projector")
	}
	if len(volumes) == 0 {
		return nil, nil
	}
	total, err := p.Project(volumes[0])
	if err != nil {
		return nil, err
	}
	for _, volume := range volumes[1:] {
		views, err := p.Project(volume)
		if err != nil {
			return nil, err
		}
		if err := addViews(total, views); err != nil {
			return nil, err
		}
	}
	return total, nil
}

func addViews(dst, src []ProjectionView) error {
	if len(dst) != len(src) {
		return fmt.Errorf("projector: view count mismatch %d vs %d", len(dst), len(src))
	}
	for i := range dst {
		if dst[i].Rows != src[i].Rows || dst[i].Cols != src[i].Cols || len(dst[i].Pixels) != len(src[i].Pixels) {
			return fmt.Errorf("projector: view %d geometry mismatch", i)
		}
		for j := range dst[i].Pixels {
			dst[i].Pixels[j] += src[i].Pixels[j]
		}
	}
	return nil
}
