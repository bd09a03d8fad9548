package field

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/latticeforge/treesupport/pkg/geom"
)

// Field is a (radius sample, layer) tensor of polygon sets. Index as
// Field[s][l]. Cells are write-once during construction and read-only
// afterwards.
type Field [][]geom.Polygons

// newField allocates a Field with the given sample and layer counts.
func newField(samples, layers int) Field {
	f := make(Field, samples)
	for s := range f {
		f[s] = make([]geom.Polygons, layers)
	}
	return f
}

// LayerOutlineFunc returns a layer's model outline (helper parts
// excluded), matching slicedata.SliceDataStorage.LayerOutlines(l, false).
type LayerOutlineFunc func(layer int) geom.Polygons

// BuildCollision constructs the collision field: for every radius
// sample s and layer l, the model outline unioned with the machine
// volume border, then offset outward by the XY clearance plus the
// branch radius at that sample. Samples are independent of one
// another, so they are computed concurrently, one goroutine per
// logical CPU, matching the parallel-over-radius-samples scheduling
// model the tensor construction phases share.
// onProgress, if non-nil, is called after each radius sample
// finishes, reporting samples done out of p.RSamples. Callers
// typically weight this phase heavily: collision construction
// dominates total planner runtime.
func BuildCollision(p Params, machineBorder geom.Polygons, outlines LayerOutlineFunc, onProgress func(done, total int)) Field {
	f := newField(p.RSamples, p.LayerCount)

	layerOutline := make([]geom.Polygons, p.LayerCount)
	for l := 0; l < p.LayerCount; l++ {
		layerOutline[l] = geom.Union(outlines(l), machineBorder)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > p.RSamples {
		workers = p.RSamples
	}
	sampleCh := make(chan int, p.RSamples)
	for s := 0; s < p.RSamples; s++ {
		sampleCh <- s
	}
	close(sampleCh)

	var done int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range sampleCh {
				delta := p.XYDistance + p.RadiusForSample(s)
				for l := 0; l < p.LayerCount; l++ {
					f[s][l] = geom.Offset(layerOutline[l], delta, geom.JoinRound)
				}
				if onProgress != nil {
					n := atomic.AddInt64(&done, 1)
					onProgress(int(n), p.RSamples)
				}
			}
		}()
	}
	wg.Wait()

	return f
}
