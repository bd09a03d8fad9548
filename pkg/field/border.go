package field

import (
	"log"
	"math"

	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
)

// ellipseSegments controls how finely an elliptic build plate is
// approximated by a polygon.
const ellipseSegments = 128

// BuildMachineVolumeBorder builds the once-per-run forbidden-region
// border: a band of width 1m around the build-plate shape, minus the
// adhesion-inflated usable build area. The inner ring comes out of
// Difference already reversed relative to the outer one, which is
// exactly the "everything outside the usable area is forbidden"
// convention the rest of this package relies on.
//
// An unrecognised AdhesionType is logged and treated as zero margin,
// per the documented policy for unknown configuration values — it
// never aborts construction.
func BuildMachineVolumeBorder(cfg slicedata.Config, machMin, machMax geom.Point, logger *log.Logger) geom.Polygons {
	if logger == nil {
		logger = log.Default()
	}
	margin := adhesionMargin(cfg, logger)

	var outer, inner geom.Polygon
	switch cfg.MachineShape {
	case slicedata.ShapeElliptic:
		cx := float64(machMin.X+machMax.X) / 2
		cy := float64(machMin.Y+machMax.Y) / 2
		rx := float64(machMax.X-machMin.X) / 2
		ry := float64(machMax.Y-machMin.Y) / 2
		outer = ellipseRing(cx, cy, rx+float64(oneMeter), ry+float64(oneMeter))
		inner = ellipseRing(cx, cy, rx-float64(margin), ry-float64(margin))
	default:
		outer = rectRing(
			geom.Point{X: machMin.X - oneMeter, Y: machMin.Y - oneMeter},
			geom.Point{X: machMax.X + oneMeter, Y: machMax.Y + oneMeter},
		)
		inner = rectRing(
			geom.Point{X: machMin.X + margin, Y: machMin.Y + margin},
			geom.Point{X: machMax.X - margin, Y: machMax.Y - margin},
		)
	}

	return geom.Difference(geom.Polygons{outer}, geom.Polygons{inner})
}

// adhesionMargin returns the extra clearance adhesion geometry needs
// around the model's own footprint.
func adhesionMargin(cfg slicedata.Config, logger *log.Logger) slicedata.Microns {
	switch cfg.AdhesionType {
	case slicedata.AdhesionNone:
		return 0
	case slicedata.AdhesionSkirt, slicedata.AdhesionBrim:
		return cfg.AdhesionMargin + cfg.AdhesionLineWidth*slicedata.Microns(cfg.AdhesionLineCount)
	case slicedata.AdhesionRaft:
		return cfg.AdhesionMargin
	default:
		logger.Printf("field: unknown adhesion type %v, treating as zero margin", cfg.AdhesionType)
		return 0
	}
}

func rectRing(min, max geom.Point) geom.Polygon {
	return geom.Polygon{
		{X: min.X, Y: min.Y},
		{X: max.X, Y: min.Y},
		{X: max.X, Y: max.Y},
		{X: min.X, Y: max.Y},
	}
}

func ellipseRing(cx, cy, rx, ry float64) geom.Polygon {
	if rx < 0 {
		rx = 0
	}
	if ry < 0 {
		ry = 0
	}
	ring := make(geom.Polygon, ellipseSegments)
	for i := 0; i < ellipseSegments; i++ {
		t := 2 * math.Pi * float64(i) / float64(ellipseSegments)
		ring[i] = geom.Point{
			X: int64(math.Round(cx + rx*math.Cos(t))),
			Y: int64(math.Round(cy + ry*math.Sin(t))),
		}
	}
	return ring
}
