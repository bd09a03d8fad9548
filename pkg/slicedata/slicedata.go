// Package slicedata declares the collaborator interfaces the planner
// consumes from an external slicer: per-layer outlines and overhangs,
// machine geometry, per-mesh configuration, and the output slots the
// planner writes its results into. Nothing in this package slices a
// mesh or parses configuration; it only describes the boundary.
package slicedata

import "github.com/latticeforge/treesupport/pkg/geom"

// Microns is an integer length in micrometres, the unit every
// coordinate and distance in this module is expressed in.
type Microns = int64

// Radians is an angle in radians.
type Radians = float64

// BuildPlateShape is the machine's build volume footprint.
type BuildPlateShape int

const (
	ShapeRectangular BuildPlateShape = iota
	ShapeElliptic
)

// AdhesionType is the platform-adhesion aid printed around a model.
type AdhesionType int

const (
	AdhesionNone AdhesionType = iota
	AdhesionSkirt
	AdhesionBrim
	AdhesionRaft
)

// String renders the adhesion type for logging; unrecognised values
// fall back to a placeholder rather than panicking, matching the
// "warn, treat as 0 margin" policy for unknown adhesion types.
func (a AdhesionType) String() string {
	switch a {
	case AdhesionNone:
		return "none"
	case AdhesionSkirt:
		return "skirt"
	case AdhesionBrim:
		return "brim"
	case AdhesionRaft:
		return "raft"
	default:
		return "unknown"
	}
}

// SupportType selects whether support may rest on the model itself or
// must always route to the build plate.
type SupportType int

const (
	SupportBuildplateOnly SupportType = iota
	SupportEverywhere
)

// Config is the per-mesh (or global fallback) configuration surface
// the planner reads. The core never parses configuration; callers
// populate this struct however they obtain values (a slicer's own
// settings database, a JSON file, flags — out of scope here).
type Config struct {
	SupportTreeEnable bool

	SupportTreeBranchDiameter      Microns
	SupportTreeBranchDiameterAngle Radians
	SupportTreeBranchDistance      Microns
	SupportTreeAngle               Radians
	SupportTreeCollisionResolution Microns
	SupportTreeWallCount           int

	SupportXYDistance     Microns
	SupportTopDistance    Microns
	SupportBottomDistance Microns

	SupportLineWidth Microns
	SupportAngle     Radians

	SupportRoofEnable bool
	SupportRoofHeight Microns

	SupportBottomEnable        bool
	SupportBottomHeight        Microns
	SupportInterfaceSkipHeight Microns

	SupportType SupportType

	LayerHeight  Microns
	MachineShape BuildPlateShape

	AdhesionType      AdhesionType
	AdhesionLineWidth Microns
	AdhesionLineCount int
	AdhesionMargin    Microns
}

// InfillPart is one emitted support region on a layer, ready for the
// slicer's own infill generator to fill in.
type InfillPart struct {
	Outline   geom.Polygons
	LineWidth Microns
	WallCount int
}

// SliceDataStorage is everything the planner reads from and writes
// back to the surrounding slicer. Implementations must be safe for
// the read methods to be called concurrently from multiple phase
// workers. The renderer's per-layer workers call SetSupportInfillParts,
// SetSupportRoof and SetSupportBottom concurrently, each worker for
// its own layers only, and SetMaxFilledLayer concurrently as well,
// which must do its own atomic max update; SetGenerated is only
// called from the engine's serial code.
type SliceDataStorage interface {
	LayerCount() int
	MeshCount() int

	MeshSupportTreeEnabled(mesh int) bool
	MeshConfig(mesh int) Config
	GlobalConfig() Config

	MeshBoundingBox(mesh int) (min, max geom.Point)
	MachineBounds() (min, max geom.Point)

	// LayerOutlines returns the closed outline polygons of layer l.
	// includeHelperParts controls whether adhesion/support-interface
	// helper geometry already placed on this layer is included.
	LayerOutlines(l int, includeHelperParts bool) geom.Polygons

	// OverhangAreas returns mesh's overhang regions on layer l.
	OverhangAreas(mesh, l int) geom.Polygons

	SetSupportInfillParts(l int, parts []InfillPart)
	SetSupportRoof(l int, roof geom.Polygons)
	SetSupportBottom(l int, bottom geom.Polygons)

	// SetMaxFilledLayer records that layer l now holds output,
	// advancing the stored maximum atomically; it must never lower
	// the stored value.
	SetMaxFilledLayer(l int)
	MaxFilledLayer() int

	SetGenerated(generated bool)
}
