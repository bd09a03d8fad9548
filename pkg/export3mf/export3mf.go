// Package export3mf writes a debug 3MF model extruding every
// rendered support layer into a thin prism, so the result of a run
// can be inspected visually in any slicer that reads the format
// instead of only through this module's own test assertions.
package export3mf

import (
	"io"

	"github.com/hpinc/go3mf"

	"github.com/latticeforge/treesupport/pkg/geom"
	"github.com/latticeforge/treesupport/pkg/render"
	"github.com/latticeforge/treesupport/pkg/slicedata"
)

// micronsPerMM is the conversion factor from this module's integer
// micron coordinates to the millimetre units 3MF expects.
const micronsPerMM = 1000.0

// WriteDebugModel extrudes every layer's support, roof and floor
// polygons into a thin prism spanning that layer's Z extent and
// writes the resulting mesh as a single 3MF object.
func WriteDebugModel(w io.Writer, layerHeight slicedata.Microns, layers []render.Layer) error {
	model := &go3mf.Model{}
	mesh := &go3mf.Mesh{}

	for l, layer := range layers {
		z0 := float64(l) * float64(layerHeight) / micronsPerMM
		z1 := float64(l+1) * float64(layerHeight) / micronsPerMM
		extrudeInto(mesh, layer.Support, z0, z1)
		extrudeInto(mesh, layer.Roof, z0, z1)
		extrudeInto(mesh, layer.Floor, z0, z1)
	}

	obj := &go3mf.Object{
		ID:   1,
		Mesh: mesh,
	}
	model.Resources.Objects = append(model.Resources.Objects, obj)
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: obj.ID})

	enc := go3mf.NewEncoder(w)
	return enc.Encode(model)
}

// extrudeInto appends every ring in ps to mesh as a vertical prism
// between z0 and z1: a bottom cap, a top cap, and one quad (as two
// triangles) per edge for the side wall. Ring triangulation uses a
// simple vertex fan from the first point, which is adequate for the
// near-convex shapes this module renders (circles, squares, and their
// unions/differences after simplification).
func extrudeInto(mesh *go3mf.Mesh, ps geom.Polygons, z0, z1 float64) {
	for _, ring := range ps {
		if len(ring) < 3 {
			continue
		}
		n := len(ring)
		bottom := make([]uint32, n)
		top := make([]uint32, n)
		for i, p := range ring {
			x := float64(p.X) / micronsPerMM
			y := float64(p.Y) / micronsPerMM
			bottom[i] = addVertex(mesh, x, y, z0)
			top[i] = addVertex(mesh, x, y, z1)
		}

		for i := 1; i < n-1; i++ {
			addTriangle(mesh, bottom[0], bottom[i+1], bottom[i])
			addTriangle(mesh, top[0], top[i], top[i+1])
		}

		for i := 0; i < n; i++ {
			j := (i + 1) % n
			addTriangle(mesh, bottom[i], bottom[j], top[j])
			addTriangle(mesh, bottom[i], top[j], top[i])
		}
	}
}

func addVertex(mesh *go3mf.Mesh, x, y, z float64) uint32 {
	mesh.Vertices.Vertex = append(mesh.Vertices.Vertex, go3mf.Point3D{float32(x), float32(y), float32(z)})
	return uint32(len(mesh.Vertices.Vertex) - 1)
}

func addTriangle(mesh *go3mf.Mesh, a, b, c uint32) {
	mesh.Triangles.Triangle = append(mesh.Triangles.Triangle, go3mf.Triangle{V1: a, V2: b, V3: c})
}
