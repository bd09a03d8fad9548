package field_test

import (
	"testing"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/slicedata"
)

func TestBuildMachineVolumeBorderRectangular(t *testing.T) {
	cfg := slicedata.Config{MachineShape: slicedata.ShapeRectangular, AdhesionType: slicedata.AdhesionNone}
	machMin := geom.Point{X: 0, Y: 0}
	machMax := geom.Point{X: 200000, Y: 200000}

	border := field.BuildMachineVolumeBorder(cfg, machMin, machMax, nil)
	if border.Empty() {
		t.Fatal("BuildMachineVolumeBorder: got an empty border")
	}

	// The usable interior should be excluded from the forbidden region.
	if geom.Inside(geom.Point{X: 100000, Y: 100000}, border, true) {
		t.Error("BuildMachineVolumeBorder: build plate centre should not be inside the forbidden border")
	}
	// Well outside the 1-metre safety band should also be excluded.
	if geom.Inside(geom.Point{X: -2_000_000, Y: -2_000_000}, border, true) {
		t.Error("BuildMachineVolumeBorder: far outside the safety band should not be inside the border")
	}
	// Just outside the usable area, inside the safety band, should be forbidden.
	if !geom.Inside(geom.Point{X: -500, Y: 100000}, border, true) {
		t.Error("BuildMachineVolumeBorder: region just outside the usable area should be inside the border")
	}
}

func TestBuildMachineVolumeBorderEllipticShrinksWithAdhesion(t *testing.T) {
	cfgNone := slicedata.Config{MachineShape: slicedata.ShapeElliptic, AdhesionType: slicedata.AdhesionNone}
	cfgBrim := slicedata.Config{
		MachineShape:      slicedata.ShapeElliptic,
		AdhesionType:      slicedata.AdhesionBrim,
		AdhesionMargin:    1000,
		AdhesionLineWidth: 400,
		AdhesionLineCount: 5,
	}
	machMin := geom.Point{X: 0, Y: 0}
	machMax := geom.Point{X: 200000, Y: 200000}

	borderNone := field.BuildMachineVolumeBorder(cfgNone, machMin, machMax, nil)
	borderBrim := field.BuildMachineVolumeBorder(cfgBrim, machMin, machMax, nil)

	// A point near the usable edge should be free with no adhesion
	// margin but forbidden once brim clearance is carved out of it.
	nearEdge := geom.Point{X: 1000, Y: 100000}
	if geom.Inside(nearEdge, borderNone, true) {
		t.Error("no adhesion margin: point near usable edge should not be in the forbidden border")
	}
	if !geom.Inside(nearEdge, borderBrim, true) {
		t.Error("brim adhesion margin: point near usable edge should now be in the forbidden border")
	}
}

func TestBuildMachineVolumeBorderUnknownAdhesionDoesNotPanic(t *testing.T) {
	cfg := slicedata.Config{MachineShape: slicedata.ShapeRectangular, AdhesionType: slicedata.AdhesionType(99)}
	machMin := geom.Point{X: 0, Y: 0}
	machMax := geom.Point{X: 100000, Y: 100000}

	border := field.BuildMachineVolumeBorder(cfg, machMin, machMax, nil)
	if border.Empty() {
		t.Error("BuildMachineVolumeBorder: unknown adhesion type should still produce a border, not an empty result")
	}
}
