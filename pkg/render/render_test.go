package render_test

import (
	"testing"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/render"
	"github.com/latticeforge/treesupport/pkg/slicedata"
	"github.com/latticeforge/treesupport/pkg/treenode"
)

func TestBranchCircleResolutionAndRadius(t *testing.T) {
	circle := render.BranchCircle(1000)
	if len(circle) != render.CircleResolution {
		t.Fatalf("BranchCircle: got %d vertices, want %d", len(circle), render.CircleResolution)
	}
	for _, v := range circle {
		d := v.Distance(geom.Point{})
		if d < 990 || d > 1010 {
			t.Errorf("BranchCircle: vertex %v at distance %v from centre, want ~1000", v, d)
		}
	}
}

func TestCircleSideLengthIsAShortPositiveChord(t *testing.T) {
	got := render.CircleSideLength(1000)
	if got <= 0 || got > 2000 {
		t.Errorf("CircleSideLength(1000): got %v, want a small positive chord length", got)
	}
}

func testParams() field.Params {
	return field.NewParams(slicedata.Config{
		SupportTreeBranchDiameter:      2000,
		SupportTreeBranchDiameterAngle: 0.1,
		SupportTreeCollisionResolution: 500,
		LayerHeight:                    200,
	}, 10)
}

func TestRenderLayerProducesSupportForLoneTip(t *testing.T) {
	p := testParams()
	circle := render.BranchCircle(p.BaseRadius)
	nodes := []treenode.Node{
		{Position: geom.Point{X: 5000, Y: 5000}, DistanceToTop: 0, SupportRoofLayersBelow: -1},
	}

	layer := render.RenderLayer(p, slicedata.Config{SupportLineWidth: 400}, 5, nodes, circle,
		func(l int) geom.Polygons { return nil },
		func(l int) geom.Polygons { return nil },
	)

	if layer.Support.Empty() {
		t.Error("RenderLayer: expected non-empty support for a lone tip with no collision")
	}
	if !layer.Roof.Empty() {
		t.Error("RenderLayer: a non-roof node should not contribute roof geometry")
	}
}

func TestRenderLayerSeparatesRoofFromSupport(t *testing.T) {
	p := testParams()
	circle := render.BranchCircle(p.BaseRadius)
	nodes := []treenode.Node{
		{Position: geom.Point{X: 5000, Y: 5000}, DistanceToTop: 0, SupportRoofLayersBelow: 2},
	}

	layer := render.RenderLayer(p, slicedata.Config{SupportLineWidth: 400}, 5, nodes, circle,
		func(l int) geom.Polygons { return nil },
		func(l int) geom.Polygons { return nil },
	)

	if layer.Roof.Empty() {
		t.Error("RenderLayer: expected non-empty roof for a node with SupportRoofLayersBelow >= 0")
	}
	if !layer.Support.Empty() {
		t.Error("RenderLayer: a roof-only node should not contribute support geometry")
	}
}

func TestRenderLayerCutsAgainstModelCollision(t *testing.T) {
	p := testParams()
	circle := render.BranchCircle(p.BaseRadius)
	nodes := []treenode.Node{
		{Position: geom.Point{X: 5000, Y: 5000}, DistanceToTop: 0, SupportRoofLayersBelow: -1},
	}
	modelBlock := geom.Polygons{{{X: 0, Y: 0}, {X: 20000, Y: 0}, {X: 20000, Y: 20000}, {X: 0, Y: 20000}}}

	layer := render.RenderLayer(p, slicedata.Config{SupportLineWidth: 400}, 5, nodes, circle,
		func(l int) geom.Polygons { return modelBlock },
		func(l int) geom.Polygons { return nil },
	)

	if !layer.Support.Empty() {
		t.Error("RenderLayer: support fully inside the model-collision cut should end up empty")
	}
}

func TestRenderLayerNoNodesProducesEmptyLayer(t *testing.T) {
	p := testParams()
	circle := render.BranchCircle(p.BaseRadius)

	layer := render.RenderLayer(p, slicedata.Config{SupportLineWidth: 400}, 5, nil, circle,
		func(l int) geom.Polygons { return nil },
		func(l int) geom.Polygons { return nil },
	)

	if !layer.Support.Empty() || !layer.Roof.Empty() || !layer.Floor.Empty() {
		t.Errorf("RenderLayer: empty node set should produce an entirely empty layer, got %+v", layer)
	}
}
