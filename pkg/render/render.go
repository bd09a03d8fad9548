// Package render turns a layer's node set into the filled polygons a
// slicer actually prints: tapered branch tips, rooted bases, and the
// roof/floor interface layers that sit between support and model.
package render

import (
	"math"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

// CircleResolution is the vertex count of the regular polygon every
// branch cross-section is built from.
const CircleResolution = 10

// floorInflate is the fixed inflation applied to the floor region
// before it is cut out of the support channel.
const floorInflate slicedata.Microns = 10

// BranchCircle returns the CircleResolution-gon of radius baseRadius
// centred at the origin that every node's shape is derived from.
func BranchCircle(baseRadius slicedata.Microns) geom.Polygon {
	circle := make(geom.Polygon, CircleResolution)
	for i := 0; i < CircleResolution; i++ {
		t := 2 * math.Pi * float64(i) / float64(CircleResolution)
		circle[i] = geom.Point{
			X: int64(math.Round(float64(baseRadius) * math.Cos(t))),
			Y: int64(math.Round(float64(baseRadius) * math.Sin(t))),
		}
	}
	return circle
}

// CircleSideLength is the edge length of BranchCircle, used to scale
// the simplification tolerance applied to the finished support layer.
func CircleSideLength(baseRadius slicedata.Microns) float64 {
	return 2 * float64(baseRadius) * math.Sin(math.Pi/CircleResolution)
}

// Layer is the rendered output of one model layer.
type Layer struct {
	Support geom.Polygons
	Roof    geom.Polygons
	Floor   geom.Polygons
}

// ModelOutlineFunc returns a layer's model outline, used both for
// the z-distance collision cut and for floor sampling.
type ModelOutlineFunc func(layer int) geom.Polygons

// RenderLayer composes the filled polygons for layer l from its node
// set, following §4.6: tip/circle shapes per node, roof split out of
// support, a cut against the model below at the bottom z-distance,
// simplification, and (if enabled) the floor interface.
func RenderLayer(p field.Params, cfg slicedata.Config, l int, nodes []treenode.Node, circle geom.Polygon, collision0At ModelOutlineFunc, modelOutlineAt ModelOutlineFunc) Layer {
	var supportShapes, roofShapes geom.Polygons
	for _, n := range nodes {
		shape := nodeShape(n, p, circle)
		if len(shape) < 3 {
			continue
		}
		if n.SupportRoofLayersBelow >= 0 {
			roofShapes = append(roofShapes, shape)
		} else {
			supportShapes = append(supportShapes, shape)
		}
	}

	support := unionRings(supportShapes)
	roof := unionRings(roofShapes)
	support = geom.Difference(support, roof)

	zCollision := l - p.BottomDistanceLayers + 1
	if zCollision < 0 {
		zCollision = 0
	}
	col := collision0At(zCollision)
	support = geom.Difference(support, col)
	roof = geom.Difference(roof, col)

	sideLen := CircleSideLength(p.BaseRadius)
	maxScale := maxScaleForLayer(l, p)
	support = support.Simplify(int64(sideLen*(1+maxScale)), cfg.SupportLineWidth/4)

	var floor geom.Polygons
	if cfg.SupportBottomEnable {
		floor = computeFloor(p, l, support, modelOutlineAt)
		support = geom.Difference(support, geom.Offset(floor, floorInflate, geom.JoinRound))
	}

	return Layer{Support: support, Roof: roof, Floor: floor}
}

// computeFloor samples model outlines beneath layer l at strides of
// InterfaceSkipLayers across BottomHeightLayers, plus one extra
// sample at the full bottom offset, intersects each with support, and
// unions the intersections — yielding the floor interface region, per
// §4.6.6. The returned region is the un-inflated exported value
// (storage.SetSupportBottom's argument); RenderLayer inflates a
// transient copy of it by floorInflate only for the subtraction out of
// the support channel, so the inflation margin never leaks into the
// floor geometry a slicer actually prints.
func computeFloor(p field.Params, l int, support geom.Polygons, modelOutlineAt ModelOutlineFunc) geom.Polygons {
	stride := p.InterfaceSkipLayers
	if stride < 1 {
		stride = 1
	}

	var samples []int
	for step := 0; step < p.BottomHeightLayers; step += stride {
		sl := l - p.BottomDistanceLayers - step
		if sl >= 0 {
			samples = append(samples, sl)
		}
	}
	fullBottom := l - p.BottomDistanceLayers - p.BottomHeightLayers
	if fullBottom >= 0 {
		samples = append(samples, fullBottom)
	}

	var acc geom.Polygons
	for _, sl := range samples {
		outline := modelOutlineAt(sl)
		inter := geom.Intersection(outline, support)
		acc = geom.Union(acc, inter)
	}
	return acc
}

// maxScaleForLayer returns the theoretical upper bound on any branch's
// post-tip scale factor that could still occupy layer l: a branch
// seeded at the very top layer and dropped all the way down to l has
// widened by DiameterAngleScale per layer for every layer below its
// tip, so the bound depends only on how many layers remain above l,
// not on the actual nodes occupying it. This widens the simplification
// tolerance enough to never cut into a branch's true radius, even
// though at any given layer the nodes present may all be thinner.
func maxScaleForLayer(l int, p field.Params) float64 {
	layersBelowTip := p.LayerCount - l - p.TipLayers
	if layersBelowTip < 0 {
		layersBelowTip = 0
	}
	return float64(layersBelowTip) * p.DiameterAngleScale
}

// nodeShape builds one node's cross-section: a linear tip transform
// from BranchCircle towards a 45°-rotated square while inside the
// tip, a uniform scale-up of BranchCircle past it, translated onto
// the node's position.
func nodeShape(n treenode.Node, p field.Params, circle geom.Polygon) geom.Polygon {
	shape := make(geom.Polygon, len(circle))
	if n.DistanceToTop < p.TipLayers {
		scale := float64(n.DistanceToTop+1) / float64(p.TipLayers)
		for i, v := range circle {
			x, y := float64(v.X), float64(v.Y)
			var nx, ny float64
			if n.SkinDirection {
				nx = x*(0.5+0.5*scale) + y*(0.5-0.5*scale)
				ny = x*(0.5-0.5*scale) + y*(0.5+0.5*scale)
			} else {
				nx = x*(0.5+0.5*scale) - y*(0.5-0.5*scale)
				ny = x*(-0.5+0.5*scale) + y*(0.5+0.5*scale)
			}
			shape[i] = geom.Point{X: int64(math.Round(nx)), Y: int64(math.Round(ny))}
		}
	} else {
		factor := 1 + float64(n.DistanceToTop-p.TipLayers)*p.DiameterAngleScale
		for i, v := range circle {
			shape[i] = geom.Point{
				X: int64(math.Round(float64(v.X) * factor)),
				Y: int64(math.Round(float64(v.Y) * factor)),
			}
		}
	}
	for i := range shape {
		shape[i] = shape[i].Add(n.Position)
	}
	return shape
}

// unionRings folds a flat list of individually-simple shapes into one
// normalized Polygons value.
func unionRings(rings geom.Polygons) geom.Polygons {
	var acc geom.Polygons
	for _, r := range rings {
		acc = geom.Union(acc, geom.Polygons{r})
	}
	return acc
}
