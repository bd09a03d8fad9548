package seed_test

import (
	"testing"

	"github.com/latticeforge/treesupport/pkg/field"
	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/seed"
	"github.com/latticeforge/treesupport/pkg/slicedata"
)

func rectangle(x0, y0, x1, y1 int64) geom.Polygon {
	return geom.Polygon{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func testConfig() slicedata.Config {
	return slicedata.Config{
		SupportTreeBranchDistance: 5000,
		SupportAngle:              0,
		LayerHeight:               200,
		SupportTopDistance:        400,
	}
}

func TestContactSeedsUnderOverhang(t *testing.T) {
	cfg := testConfig()
	p := field.NewParams(cfg, 20)
	overhang := geom.Polygons{rectangle(0, 0, 20000, 20000)}

	layers := seed.Contact(p, cfg, geom.Point{X: 0, Y: 0}, geom.Point{X: 50000, Y: 50000}, 20, p.TopDistanceLayers,
		func(l int) geom.Polygons {
			if l == 10 {
				return overhang
			}
			return nil
		},
		func(l int) geom.Polygons { return nil },
	)

	found := false
	for l, layer := range layers {
		if layer == nil {
			continue
		}
		if layer.Len() > 0 {
			found = true
			if l+p.TopDistanceLayers != 10 {
				t.Errorf("seeded layer %d, want layer %d (overhang layer minus top distance)", l, 10-p.TopDistanceLayers)
			}
		}
	}
	if !found {
		t.Error("Contact: no nodes were seeded for an overhang with no collision")
	}
}

func TestContactSkipsEmptyOverhang(t *testing.T) {
	cfg := testConfig()
	p := field.NewParams(cfg, 20)

	layers := seed.Contact(p, cfg, geom.Point{X: 0, Y: 0}, geom.Point{X: 50000, Y: 50000}, 20, p.TopDistanceLayers,
		func(l int) geom.Polygons { return nil },
		func(l int) geom.Polygons { return nil },
	)

	for l, layer := range layers {
		if layer != nil && layer.Len() > 0 {
			t.Errorf("Contact: layer %d got nodes with no overhang input anywhere", l)
		}
	}
}

func TestContactAvoidsCollision(t *testing.T) {
	cfg := testConfig()
	p := field.NewParams(cfg, 20)
	overhang := geom.Polygons{rectangle(0, 0, 20000, 20000)}
	collision := geom.Polygons{rectangle(-1000, -1000, 21000, 21000)}

	layers := seed.Contact(p, cfg, geom.Point{X: 0, Y: 0}, geom.Point{X: 50000, Y: 50000}, 20, p.TopDistanceLayers,
		func(l int) geom.Polygons {
			if l == 10 {
				return overhang
			}
			return nil
		},
		func(l int) geom.Polygons { return collision },
	)

	// Every candidate in the overhang is also inside the (larger)
	// collision rectangle, so the fallback bounding-box-centre node is
	// the only thing that can be seeded, and even it sits inside the
	// collision region; Contact does not filter the fallback against
	// collision, matching seedOverhangPart's documented behaviour of
	// never silently dropping an overhang entirely.
	var total int
	for _, layer := range layers {
		if layer != nil {
			total += layer.Len()
		}
	}
	if total == 0 {
		t.Error("Contact: expected the fallback centre node even when every grid candidate collides")
	}
}
