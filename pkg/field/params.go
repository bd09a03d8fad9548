// Package field builds the three tensors the dropper consults at
// every step: the collision field (forbidden regions per branch
// radius and layer), the avoidance field (its downward reachability
// closure), and the internal guide field (avoidance minus collision,
// steering branches that rest on the model inward). All three are
// indexed by the same (radius sample, layer) pair via Params.
package field

import (
	"math"

	"github.com/latticeforge/treesupport/pkg/slicedata"
)

// MaxMoveDistanceUnbounded is the sentinel used for "no slope limit"
// when support_tree_angle >= 90 degrees. It is deliberately far below
// math.MaxInt64 so that squaring it when comparing against a squared
// distance never overflows int64.
const MaxMoveDistanceUnbounded slicedata.Microns = math.MaxInt32

// oneMeter is the width of the safety border placed around the
// build-plate shape.
const oneMeter slicedata.Microns = 1_000_000

// Params bundles every quantity derived once from a Config that the
// field-construction and dropper code repeatedly needs, so call sites
// pass one value instead of re-deriving sin/tan/division chains.
type Params struct {
	BaseRadius          slicedata.Microns
	DiameterAngleScale  float64
	TipLayers           int
	CollisionResolution slicedata.Microns
	XYDistance          slicedata.Microns
	MaxMoveDistance     slicedata.Microns

	// LayerCount and MaximumRadius/RSamples are fixed once the run's
	// layer count is known; NewParams takes it up front because the
	// collision/avoidance tensors must be sized before construction
	// begins.
	LayerCount    int
	MaximumRadius slicedata.Microns
	RSamples      int

	// TopDistanceLayers and BottomDistanceLayers are the top/bottom
	// z-distance gaps expressed in layer counts, used by seeding (how
	// far below an overhang tips are placed) and rendering (how far
	// below the current layer the model-collision and floor sampling
	// reach).
	TopDistanceLayers    int
	BottomDistanceLayers int
	InterfaceSkipLayers  int
	BottomHeightLayers   int
}

// NewParams derives Params from a mesh or global Config and the
// run's total layer count.
func NewParams(cfg slicedata.Config, layerCount int) Params {
	baseRadius := cfg.SupportTreeBranchDiameter / 2
	if baseRadius <= 0 {
		baseRadius = 1
	}
	tipLayers := 1
	if cfg.LayerHeight > 0 {
		tipLayers = int(baseRadius / cfg.LayerHeight)
		if tipLayers < 1 {
			tipLayers = 1
		}
	}
	diameterAngleScale := math.Sin(cfg.SupportTreeBranchDiameterAngle) * float64(cfg.LayerHeight) / float64(baseRadius)

	maxMove := MaxMoveDistanceUnbounded
	if cfg.SupportTreeAngle < math.Pi/2 {
		maxMove = slicedata.Microns(math.Round(float64(cfg.LayerHeight) * math.Tan(cfg.SupportTreeAngle)))
	}

	resolution := cfg.SupportTreeCollisionResolution
	if resolution <= 0 {
		resolution = 1
	}
	maximumRadius := slicedata.Microns(float64(baseRadius) * (1 + float64(layerCount)*diameterAngleScale))
	rSamples := int(math.Round(float64(maximumRadius)/float64(resolution))) + 1

	// layersOf ceiling-divides a micron distance into a layer count,
	// matching the original's round_up_divide: a support gap of, say,
	// 1.5 layer heights must still keep a full 2 layers clear.
	layersOf := func(distance slicedata.Microns) int {
		if cfg.LayerHeight <= 0 {
			return 0
		}
		return int((distance + cfg.LayerHeight - 1) / cfg.LayerHeight)
	}

	return Params{
		BaseRadius:          baseRadius,
		DiameterAngleScale:  diameterAngleScale,
		TipLayers:           tipLayers,
		CollisionResolution: resolution,
		XYDistance:          cfg.SupportXYDistance,
		MaxMoveDistance:     maxMove,
		LayerCount:          layerCount,
		MaximumRadius:       maximumRadius,
		RSamples:            rSamples,
		// +1 beyond the ceiling-divided gap: support must always end at
		// least one full layer below the overhang it holds up.
		TopDistanceLayers:    layersOf(cfg.SupportTopDistance) + 1,
		BottomDistanceLayers: layersOf(cfg.SupportBottomDistance),
		InterfaceSkipLayers:  layersOf(cfg.SupportInterfaceSkipHeight),
		BottomHeightLayers:   layersOf(cfg.SupportBottomHeight),
	}
}

// SampleForRadius returns the sample index nearest to radius (rounded
// to the nearest multiple of CollisionResolution), clamped to
// [0, RSamples-1] defensively — the reference this is grounded on indexes without a
// clamp, relying on MaximumRadius bookkeeping to keep it in range, but
// nothing here forbids a caller from asking for more.
func (p Params) SampleForRadius(radius slicedata.Microns) int {
	s := int(math.Round(float64(radius) / float64(p.CollisionResolution)))
	if s < 0 {
		return 0
	}
	if s >= p.RSamples {
		return p.RSamples - 1
	}
	return s
}

// RadiusForSample returns the branch radius a sample index represents.
func (p Params) RadiusForSample(s int) slicedata.Microns {
	return slicedata.Microns(s) * p.CollisionResolution
}

// BranchRadiusAt returns the physical radius of the branch that will
// occupy the layer below a node currently d layers below its tip: the
// tip tapers linearly from zero over TipLayers layers, then widens by
// DiameterAngleScale per layer past the tip. This is the formula the
// post-move reconciliation step uses to pick the radius sample for the
// node's descendant, one layer further from the tip than d.
func (p Params) BranchRadiusAt(d int) slicedata.Microns {
	return p.radiusAtDistance(d + 1)
}

// BranchRadiusAtCurrent returns the physical radius of a branch at its
// current layer, d layers below its tip, with no descent applied. The
// pass-2 "fully embedded in the model" check in pkg/drop uses this
// variant: it tests the node's radius where it already stands, not the
// radius of whatever node might occupy the layer below it.
func (p Params) BranchRadiusAtCurrent(d int) slicedata.Microns {
	return p.radiusAtDistance(d)
}

func (p Params) radiusAtDistance(d int) slicedata.Microns {
	if d <= p.TipLayers {
		return slicedata.Microns(float64(p.BaseRadius) * float64(d) / float64(p.TipLayers))
	}
	return slicedata.Microns(float64(p.BaseRadius) * (1 + float64(d)*p.DiameterAngleScale))
}
