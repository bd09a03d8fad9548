// Package seed places the initial branch tips: one Node per surviving
// grid candidate under each connected overhang region, on every layer
// that needs support.
package seed

import (
	"math"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

// gridAngle is the fixed empirical rotation applied to the candidate
// grid so that it supports diagonal overhangs as well as axis-aligned
// ones.
const gridAngle = 22 * math.Pi / 180

// OverhangAreasFunc returns the overhang polygons of a given layer.
type OverhangAreasFunc func(layer int) geom.Polygons

// Collision0Func returns the sample-0 collision set of a given layer.
type Collision0Func func(layer int) geom.Polygons

// Contact places tip nodes under overhangs for one mesh. zDistanceTopLayers
// is the number of layers between an overhang and the branch tips
// placed beneath it; layerCount is the model's total layer count.
// The returned slice has one *treenode.Layer per model layer (nil
// where no tips were seeded).
func Contact(p field.Params, cfg slicedata.Config, bboxMin, bboxMax geom.Point, layerCount, zDistanceTopLayers int, overhangAt OverhangAreasFunc, collision0At Collision0Func) []*treenode.Layer {
	layers := make([]*treenode.Layer, layerCount)

	candidates := candidateGrid(bboxMin, bboxMax, cfg.SupportTreeBranchDistance)
	halfOverhangDistance := slicedata.Microns(float64(cfg.LayerHeight) * math.Tan(float64(cfg.SupportAngle)) / 2)

	roofLayers := 0
	if cfg.SupportRoofEnable && cfg.LayerHeight > 0 {
		roofLayers = int(cfg.SupportRoofHeight / cfg.LayerHeight)
	}

	top := layerCount - zDistanceTopLayers - 1
	for l := 1; l <= top; l++ {
		overhang := overhangAt(l + zDistanceTopLayers)
		if overhang.Empty() {
			continue
		}
		col0 := collision0At(l)

		for _, part := range geom.SplitIntoParts(overhang) {
			seeded := seedOverhangPart(part, col0, candidates, halfOverhangDistance)
			if len(seeded) == 0 {
				continue
			}
			if layers[l] == nil {
				layers[l] = treenode.NewLayer()
			}
			skinDirection := (l+zDistanceTopLayers)%2 != 0
			for _, pos := range seeded {
				layers[l].Upsert(treenode.Node{
					Position:               pos,
					DistanceToTop:          0,
					SkinDirection:          skinDirection,
					SupportRoofLayersBelow: roofLayers,
					ToBuildplate:           true,
				})
			}
		}
	}

	return layers
}

// seedOverhangPart returns every successful candidate position for
// one connected overhang polygon, falling back to the moved-inside
// bounding-box centre if no grid candidate survives.
func seedOverhangPart(part geom.Polygons, collision0 geom.Polygons, candidates []geom.Point, halfOverhangDistance slicedata.Microns) []geom.Point {
	min, max, ok := part.BoundingBox()
	if !ok {
		return nil
	}
	min.X -= halfOverhangDistance
	min.Y -= halfOverhangDistance
	max.X += halfOverhangDistance
	max.Y += halfOverhangDistance

	var out []geom.Point
	maxStepSq := halfOverhangDistance * halfOverhangDistance
	for _, c := range candidates {
		if c.X < min.X || c.X > max.X || c.Y < min.Y || c.Y > max.Y {
			continue
		}
		moved := geom.MoveInside(part, c, halfOverhangDistance, maxStepSq)
		if !geom.Inside(moved, part, false) {
			continue
		}
		if geom.Inside(moved, collision0, true) {
			continue
		}
		out = append(out, moved)
	}
	if len(out) > 0 {
		return out
	}

	// No grid candidate survived: fall back to the part's moved-inside
	// bounding-box centre so the overhang is not silently dropped.
	unexpandedMin, unexpandedMax, _ := part.BoundingBox()
	center := geom.Point{
		X: (unexpandedMin.X + unexpandedMax.X) / 2,
		Y: (unexpandedMin.Y + unexpandedMax.Y) / 2,
	}
	moved := geom.MoveInside(part, center, halfOverhangDistance, maxStepSq)
	return []geom.Point{moved}
}

// candidateGrid generates points spaced `spacing` apart covering
// bboxMin..bboxMax, on a grid rotated by gridAngle about bboxMin.
func candidateGrid(bboxMin, bboxMax geom.Point, spacing slicedata.Microns) []geom.Point {
	if spacing <= 0 {
		spacing = 1
	}
	corners := []geom.Point{
		bboxMin,
		{X: bboxMax.X, Y: bboxMin.Y},
		bboxMax,
		{X: bboxMin.X, Y: bboxMax.Y},
	}
	var rMin, rMax geom.Point
	for i, c := range corners {
		rotated := c.Sub(bboxMin).Rotate(-gridAngle)
		if i == 0 {
			rMin, rMax = rotated, rotated
			continue
		}
		if rotated.X < rMin.X {
			rMin.X = rotated.X
		}
		if rotated.Y < rMin.Y {
			rMin.Y = rotated.Y
		}
		if rotated.X > rMax.X {
			rMax.X = rotated.X
		}
		if rotated.Y > rMax.Y {
			rMax.Y = rotated.Y
		}
	}

	var points []geom.Point
	for x := rMin.X; x <= rMax.X; x += spacing {
		for y := rMin.Y; y <= rMax.Y; y += spacing {
			p := geom.Point{X: x, Y: y}.Rotate(gridAngle).Add(bboxMin)
			points = append(points, p)
		}
	}
	return points
}
