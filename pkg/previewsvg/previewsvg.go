// Package previewsvg renders a single layer's collision, avoidance
// and support polygons to an SVG file, so a maintainer can eyeball
// one layer's fields without opening a full slicer UI. This has no
// counterpart in the original implementation; it exists purely as a
// development aid.
package previewsvg

import (
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// Layer is the set of fields one call to WriteLayerPreview renders,
// each on its own coloured layer: collision in red, avoidance in
// orange, support in blue, roof in green.
type Layer struct {
	Collision geom.Polygons
	Avoidance geom.Polygons
	Support   geom.Polygons
	Roof      geom.Polygons
}

// WriteLayerPreview writes an SVG of width x height pixels to w,
// scaling micron coordinates down by scale (microns per pixel) and
// translating so that origin sits at the canvas centre.
func WriteLayerPreview(w io.Writer, width, height int, scale float64, layer Layer) error {
	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")

	drawPolygons(canvas, layer.Avoidance, width, height, scale, "fill:orange;fill-opacity:0.25;stroke:orange")
	drawPolygons(canvas, layer.Collision, width, height, scale, "fill:red;fill-opacity:0.4;stroke:red")
	drawPolygons(canvas, layer.Support, width, height, scale, "fill:steelblue;fill-opacity:0.6;stroke:steelblue")
	drawPolygons(canvas, layer.Roof, width, height, scale, "fill:seagreen;fill-opacity:0.6;stroke:seagreen")

	canvas.End()
	return nil
}

func drawPolygons(canvas *svg.SVG, ps geom.Polygons, width, height int, scale float64, style string) {
	for _, ring := range ps {
		if len(ring) < 3 {
			continue
		}
		xs := make([]int, len(ring))
		ys := make([]int, len(ring))
		for i, p := range ring {
			xs[i] = width/2 + int(float64(p.X)/scale)
			ys[i] = height/2 - int(float64(p.Y)/scale)
		}
		canvas.Polygon(xs, ys, style)
	}
}
